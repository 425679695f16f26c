// Package pickertest provides recording views for picker controls.
package pickertest

import (
	"sync"

	"roombook/picker"
	"roombook/slots"
)

// View records the last value of everything a control renders.
type View struct {
	mu      sync.Mutex
	options []slots.Slot
	label   string
	open    bool
	state   picker.VisualState
	states  []picker.VisualState
}

func (v *View) SetOptions(options []slots.Slot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.options = options
}

func (v *View) SetLabel(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = text
}

func (v *View) SetOpen(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = open
}

func (v *View) SetState(state picker.VisualState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
	v.states = append(v.states, state)
}

func (v *View) Label() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.label
}

func (v *View) Open() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

func (v *View) State() picker.VisualState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// States returns every highlight the view was given, oldest first.
func (v *View) States() []picker.VisualState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]picker.VisualState(nil), v.states...)
}

func (v *View) Options() []slots.Slot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.options
}

// Views is one modal context worth of recording views.
type Views struct {
	StartHour   *View
	StartMinute *View
	EndHour     *View
	EndMinute   *View
}

func NewViews() *Views {
	return &Views{
		StartHour:   &View{},
		StartMinute: &View{},
		EndHour:     &View{},
		EndMinute:   &View{},
	}
}

func (v *Views) Picker() picker.Views {
	return picker.Views{
		StartHour:   v.StartHour,
		StartMinute: v.StartMinute,
		EndHour:     v.EndHour,
		EndMinute:   v.EndMinute,
	}
}

func (v *Views) Get(f picker.Field) *View {
	switch f {
	case picker.StartHour:
		return v.StartHour
	case picker.StartMinute:
		return v.StartMinute
	case picker.EndHour:
		return v.EndHour
	default:
		return v.EndMinute
	}
}
