package picker

import (
	"fmt"

	"roombook/slots"
)

// Views holds the four views of one modal context.
type Views struct {
	StartHour   View
	StartMinute View
	EndHour     View
	EndMinute   View
}

func (v Views) get(f Field) View {
	switch f {
	case StartHour:
		return v.StartHour
	case StartMinute:
		return v.StartMinute
	case EndHour:
		return v.EndHour
	case EndMinute:
		return v.EndMinute
	}
	return nil
}

// Set is the four controls of one modal context ("new" or "edit") sharing one
// TimeRange. Sets never share state with each other.
type Set struct {
	name      string
	state     *TimeRange
	controls  map[Field]*Control
	listeners []SelectFunc
}

// NewSet attaches a control per field. hours feeds the hour controls, the
// minute controls always offer quarter hours.
func NewSet(group *Group, name string, hours []slots.Slot, views Views) (*Set, error) {
	s := &Set{
		name:     name,
		state:    &TimeRange{},
		controls: make(map[Field]*Control, len(Fields)),
	}
	for _, f := range Fields {
		options := slots.Minutes()
		if f.IsHour() {
			options = hours
		}
		c, err := Attach(group, f, options, s.state, views.get(f), s.dispatch)
		if err != nil {
			return nil, fmt.Errorf("%s pickers: %w", name, err)
		}
		s.controls[f] = c
	}
	return s, nil
}

func (s *Set) Name() string {
	return s.name
}

// OnSelect registers fn to run after any control of the set is selected.
func (s *Set) OnSelect(fn SelectFunc) {
	s.listeners = append(s.listeners, fn)
}

func (s *Set) dispatch(field Field, value string) {
	for _, fn := range s.listeners {
		fn(field, value)
	}
}

func (s *Set) Control(f Field) *Control {
	return s.controls[f]
}

// Range returns the live state. Callers that keep it must copy.
func (s *Set) Range() *TimeRange {
	return s.state
}

// Select is shorthand for Control(f).Select(value).
func (s *Set) Select(f Field, value string) error {
	c, ok := s.controls[f]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnbound, f)
	}
	return c.Select(value)
}

// Load replaces the state without firing select listeners and redraws labels.
func (s *Set) Load(r TimeRange) {
	*s.state = r
	s.Sync()
}

func (s *Set) Reset() {
	s.Load(TimeRange{})
	s.MarkAll(StateNone)
}

func (s *Set) Sync(fields ...Field) {
	if len(fields) == 0 {
		fields = Fields
	}
	for _, f := range fields {
		s.controls[f].Sync()
	}
}

func (s *Set) Mark(state VisualState, fields ...Field) {
	for _, f := range fields {
		s.controls[f].SetState(state)
	}
}

func (s *Set) MarkAll(state VisualState) {
	s.Mark(state, Fields...)
}
