// Package picker implements the dropdown time controls of the booking modals.
//
// A Control is bound to one field of a TimeRange. Controls of every modal
// context register with one Group, which keeps at most one dropdown open.
package picker

import (
	"errors"
	"fmt"
	"sync"

	"roombook/slots"
)

var (
	ErrUnbound     = errors.New("picker: control binding incomplete")
	ErrUnknownSlot = errors.New("picker: value is not a selectable slot")
)

// VisualState is the highlight a control container carries.
type VisualState int

const (
	StateNone VisualState = iota
	StateUpdated
	StateError
	StateValid
)

func (s VisualState) String() string {
	switch s {
	case StateUpdated:
		return "updated"
	case StateError:
		return "error"
	case StateValid:
		return "valid"
	default:
		return "none"
	}
}

// View is the rendering side of a Control: the trigger label, the option list
// and the container highlight.
type View interface {
	SetOptions(options []slots.Slot)
	SetLabel(text string)
	SetOpen(open bool)
	SetState(state VisualState)
}

// SelectFunc is called after the user picks an option.
type SelectFunc func(field Field, value string)

type Control struct {
	group    *Group
	field    Field
	options  []slots.Slot
	state    *TimeRange
	view     View
	onSelect SelectFunc

	// open is guarded by group.mu.
	open bool

	mu     sync.Mutex
	visual VisualState
}

// Attach binds a control to one field of state and registers it with group.
// Every collaborator is required.
func Attach(group *Group, field Field, options []slots.Slot, state *TimeRange, view View, onSelect SelectFunc) (*Control, error) {
	switch {
	case group == nil:
		return nil, fmt.Errorf("%w: %s: missing group", ErrUnbound, field)
	case state == nil:
		return nil, fmt.Errorf("%w: %s: missing state", ErrUnbound, field)
	case view == nil:
		return nil, fmt.Errorf("%w: %s: missing view", ErrUnbound, field)
	case len(options) == 0:
		return nil, fmt.Errorf("%w: %s: no options", ErrUnbound, field)
	}

	c := &Control{
		group:    group,
		field:    field,
		options:  append([]slots.Slot(nil), options...),
		state:    state,
		view:     view,
		onSelect: onSelect,
	}
	view.SetOptions(c.options)
	view.SetOpen(false)
	c.Sync()
	group.register(c)
	return c, nil
}

func (c *Control) Field() Field {
	return c.field
}

func (c *Control) Options() []slots.Slot {
	return append([]slots.Slot(nil), c.options...)
}

// Toggle opens the dropdown, closing every other one in the group, or closes it
// when already open.
func (c *Control) Toggle() {
	c.group.toggle(c)
}

func (c *Control) Close() {
	c.group.close(c)
}

func (c *Control) IsOpen() bool {
	c.group.mu.Lock()
	defer c.group.mu.Unlock()
	return c.open
}

// Select applies the option carrying value: the bound field and the trigger
// label change, the dropdown closes and onSelect fires.
func (c *Control) Select(value string) error {
	label, ok := slots.Label(c.options, value)
	if !ok {
		return fmt.Errorf("%w: %s=%q", ErrUnknownSlot, c.field, value)
	}
	c.state.Set(c.field, value)
	c.view.SetLabel(label)
	c.group.close(c)
	if c.onSelect != nil {
		c.onSelect(c.field, value)
	}
	return nil
}

// Sync redraws the trigger label from the bound state.
func (c *Control) Sync() {
	c.view.SetLabel(c.Label())
}

// Label is the text the trigger shows for the current value.
func (c *Control) Label() string {
	value := c.state.Get(c.field)
	if value == "" {
		return c.field.placeholder()
	}
	if label, ok := slots.Label(c.options, value); ok {
		return label
	}
	return value
}

func (c *Control) SetState(state VisualState) {
	c.mu.Lock()
	c.visual = state
	c.mu.Unlock()
	c.view.SetState(state)
}

// ClearState resets the highlight only if it still equals state.
func (c *Control) ClearState(state VisualState) {
	c.mu.Lock()
	if c.visual != state {
		c.mu.Unlock()
		return
	}
	c.visual = StateNone
	c.mu.Unlock()
	c.view.SetState(StateNone)
}

func (c *Control) State() VisualState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visual
}
