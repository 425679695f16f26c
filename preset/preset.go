// Package preset keeps "end = start + duration" true for as long as the
// relationship was last set by a preset button rather than by hand.
package preset

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook/picker"
	"roombook/slots"
)

var (
	ErrPastClosing     = errors.New("preset: end time is past closing hour")
	ErrInvalidDuration = errors.New("preset: duration must be positive")
)

var DefaultDurations = []int{30, 60, 90, 120}

const (
	DefaultFlashDelay = 800 * time.Millisecond

	// earliestDefaultStart is the floor for a start time derived from the clock.
	earliestDefaultStart = 9
)

// Buttons renders the preset button row. SetActive(0) deactivates every button.
type Buttons interface {
	SetActive(minutes int)
}

// Notifier surfaces a message the user must acknowledge.
type Notifier interface {
	Alert(message string)
}

type Config struct {
	ClosingHour int
	Durations   []int
	FlashDelay  time.Duration
	Now         func() time.Time
	AfterFunc   func(d time.Duration, f func())
}

func (c Config) withDefaults() Config {
	if c.ClosingHour <= 0 {
		c.ClosingHour = slots.DefaultClosingHour
	}
	if len(c.Durations) == 0 {
		c.Durations = DefaultDurations
	}
	if c.FlashDelay <= 0 {
		c.FlashDelay = DefaultFlashDelay
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.AfterFunc == nil {
		c.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return c
}

type Engine struct {
	mu       sync.Mutex
	set      *picker.Set
	buttons  Buttons
	notifier Notifier
	cfg      Config
	selected int
}

// New binds an engine to the pickers of one modal context. Start edits
// recompute the end, end edits drop the preset.
func New(set *picker.Set, buttons Buttons, notifier Notifier, cfg Config) (*Engine, error) {
	switch {
	case set == nil:
		return nil, fmt.Errorf("preset: missing picker set")
	case buttons == nil:
		return nil, fmt.Errorf("preset: missing buttons view")
	case notifier == nil:
		return nil, fmt.Errorf("preset: missing notifier")
	}
	e := &Engine{
		set:      set,
		buttons:  buttons,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
	}
	set.OnSelect(e.handleSelect)
	return e, nil
}

// Durations lists the preset buttons in display order.
func (e *Engine) Durations() []int {
	return append([]int(nil), e.cfg.Durations...)
}

// Selected returns the active preset duration in minutes.
func (e *Engine) Selected() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected > 0
}

// Reset forgets the active preset. Called whenever the modal opens.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

// ApplyPreset sets the end to start plus minutes. Without a start the current
// hour is used, never earlier than 09:00. An end past closing hour is rejected
// with an alert and leaves the state untouched.
func (e *Engine) ApplyPreset(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, minutes)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.set.Range()
	startHour, startMinute := r.StartHour, r.StartMinute
	if startHour == "" {
		hour := e.cfg.Now().Hour()
		if hour < earliestDefaultStart {
			hour = earliestDefaultStart
		}
		startHour, startMinute = slots.Pad2(hour), "00"
	} else if startMinute == "" {
		startMinute = "00"
	}

	candidate := picker.TimeRange{StartHour: startHour, StartMinute: startMinute}
	start, ok := candidate.Start()
	if !ok {
		return fmt.Errorf("preset: invalid start %s:%s", startHour, startMinute)
	}
	end := start + minutes
	if end > e.closingMinutes() {
		e.notifier.Alert(fmt.Sprintf("A %s booking starting at %s:%s would end after %s:00. Choose an earlier start time.",
			FormatDuration(minutes), startHour, startMinute, slots.Pad2(e.cfg.ClosingHour)))
		return fmt.Errorf("%w: %s:%s + %s", ErrPastClosing, startHour, startMinute, FormatDuration(minutes))
	}

	if r.StartHour != startHour || r.StartMinute != startMinute {
		r.StartHour, r.StartMinute = startHour, startMinute
		e.set.Sync(picker.StartHour, picker.StartMinute)
	}
	e.selected = minutes
	e.buttons.SetActive(minutes)
	e.writeEndLocked(end)
	return nil
}

// RecomputeFromStart re-derives the end after a start edit. It reports whether
// the end changed. Past closing hour it does nothing and stays silent.
func (e *Engine) RecomputeFromStart() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked()
}

func (e *Engine) handleSelect(field picker.Field, _ string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case field.IsStart():
		e.recomputeLocked()
	case field.IsEnd():
		e.clearLocked()
	}
}

func (e *Engine) recomputeLocked() bool {
	if e.selected == 0 {
		return false
	}
	start, ok := e.set.Range().Start()
	if !ok {
		return false
	}
	end := start + e.selected
	if end > e.closingMinutes() {
		return false
	}
	e.writeEndLocked(end)
	return true
}

func (e *Engine) clearLocked() {
	e.selected = 0
	e.buttons.SetActive(0)
}

func (e *Engine) writeEndLocked(end int) {
	e.set.Range().SetEnd(end)
	e.set.Sync(picker.EndHour, picker.EndMinute)
	e.set.Mark(picker.StateUpdated, picker.EndHour, picker.EndMinute)

	hour, minute := e.set.Control(picker.EndHour), e.set.Control(picker.EndMinute)
	e.cfg.AfterFunc(e.cfg.FlashDelay, func() {
		hour.ClearState(picker.StateUpdated)
		minute.ClearState(picker.StateUpdated)
	})
}

func (e *Engine) closingMinutes() int {
	return e.cfg.ClosingHour * 60
}

// FormatDuration renders minutes the way preset buttons are labelled.
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0 && h == 1:
		return "1 hour"
	case m == 0:
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
