package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roombook/api"
	"roombook/picker"
	"roombook/slots"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const deletePrompt = "Are you sure you want to delete this booking?"

type DetailsConfig struct {
	// OpeningHour is nil for the default; ClosingHour 0 means the default.
	OpeningHour *int
	ClosingHour int
	Formats     Formats
	Location    *time.Location
}

func (c DetailsConfig) withDefaults() DetailsConfig {
	if c.ClosingHour <= 0 {
		c.ClosingHour = slots.DefaultClosingHour
	}
	c.Formats = c.Formats.withDefaults()
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// DetailsDeps are the collaborators of the booking details modal. All but
// Logger are required.
type DetailsDeps struct {
	Group     *picker.Group
	Pickers   picker.Views
	View      DetailsView
	Backend   Backend
	Calendar  Calendar
	Notifier  Notifier
	Confirmer Confirmer
	Logger    *zap.Logger
}

func (d DetailsDeps) check() error {
	switch {
	case d.Group == nil:
		return fmt.Errorf("booking details: missing picker group")
	case d.View == nil:
		return fmt.Errorf("booking details: missing view")
	case d.Backend == nil:
		return fmt.Errorf("booking details: missing backend")
	case d.Calendar == nil:
		return fmt.Errorf("booking details: missing calendar")
	case d.Notifier == nil:
		return fmt.Errorf("booking details: missing notifier")
	case d.Confirmer == nil:
		return fmt.Errorf("booking details: missing confirmer")
	}
	return nil
}

type DetailsMode int

const (
	DetailsClosed DetailsMode = iota
	DetailsViewing
	DetailsEditing
	DetailsSubmitting
)

func (m DetailsMode) String() string {
	switch m {
	case DetailsViewing:
		return "viewing"
	case DetailsEditing:
		return "editing"
	case DetailsSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// DetailsController shows one existing booking and runs its edit and delete
// flows. It holds the booking only while the modal is open.
type DetailsController struct {
	cfg       DetailsConfig
	group     *picker.Group
	set       *picker.Set
	view      DetailsView
	backend   Backend
	calendar  Calendar
	notifier  Notifier
	confirmer Confirmer
	logger    *zap.Logger

	mu        sync.Mutex
	mode      DetailsMode
	returnTo  DetailsMode
	session   string
	current   *api.Event
	editTitle string
	editDate  CalendarDate
}

func NewDetailsController(deps DetailsDeps, cfg DetailsConfig) (*DetailsController, error) {
	if err := deps.check(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	opening := openingHour(cfg.OpeningHour)
	if err := checkHourWindow(opening, cfg.ClosingHour); err != nil {
		return nil, fmt.Errorf("booking details: %w", err)
	}

	set, err := picker.NewSet(deps.Group, "edit", slots.Hours(opening, cfg.ClosingHour), deps.Pickers)
	if err != nil {
		return nil, fmt.Errorf("booking details: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailsController{
		cfg:       cfg,
		group:     deps.Group,
		set:       set,
		view:      deps.View,
		backend:   deps.Backend,
		calendar:  deps.Calendar,
		notifier:  deps.Notifier,
		confirmer: deps.Confirmer,
		logger:    logger.Named("booking_details"),
	}, nil
}

// Populate opens the modal in read-only mode for event. Edit and delete are
// offered only when the event says so; the backend still authorizes both.
func (c *DetailsController) Populate(event api.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := event
	c.current = &e
	c.session = uuid.NewString()
	c.renderDetailsLocked()
	c.view.SetSubmitting(false)
	c.view.Show()
	c.logger.Debug("details opened", zap.Int("id", event.ID), zap.String("session", c.session))
}

func (c *DetailsController) renderDetailsLocked() {
	e := c.current
	c.mode = DetailsViewing
	c.group.CloseAll()
	c.set.MarkAll(picker.StateNone)
	c.view.ShowDetails(EventDetails{
		Title:     e.Title,
		Time:      FormatEventTime(e.Start.In(c.cfg.Location), e.End.In(c.cfg.Location)),
		Organizer: e.Organizer,
		Room:      e.RoomName,
		CanEdit:   e.CanEdit,
	})
}

func (c *DetailsController) Current() (api.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return api.Event{}, false
	}
	return *c.current, true
}

func (c *DetailsController) Mode() DetailsMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Pickers exposes the edit-context time controls.
func (c *DetailsController) Pickers() *picker.Set {
	return c.set
}

func (c *DetailsController) editableLocked() error {
	if c.current == nil {
		return ErrNoBooking
	}
	if !c.current.CanEdit {
		return ErrNotEditable
	}
	return nil
}

// EnterEditMode copies the booking's title, date and times into a fresh edit
// state.
func (c *DetailsController) EnterEditMode() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	if c.mode != DetailsViewing {
		return fmt.Errorf("enter edit mode: modal is %s", c.mode)
	}

	start := c.current.Start.In(c.cfg.Location)
	var r picker.TimeRange
	r.SetStart(start.Hour()*60 + start.Minute())
	if !c.current.End.IsZero() {
		end := c.current.End.In(c.cfg.Location)
		r.SetEnd(end.Hour()*60 + end.Minute())
	}
	c.set.Load(r)
	c.set.MarkAll(picker.StateNone)

	c.editTitle = c.current.Title
	c.editDate = DateOf(start)
	c.mode = DetailsEditing
	c.view.ShowEditForm(c.editTitle, c.editDate)
	return nil
}

func (c *DetailsController) inEditLocked() error {
	switch c.mode {
	case DetailsEditing:
		return nil
	case DetailsSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrNotOpen
	}
}

func (c *DetailsController) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inEditLocked(); err != nil {
		return err
	}
	c.editTitle = title
	return nil
}

func (c *DetailsController) SetDate(date CalendarDate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inEditLocked(); err != nil {
		return err
	}
	c.editDate = date
	return nil
}

func (c *DetailsController) SelectTime(field picker.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inEditLocked(); err != nil {
		return err
	}
	return c.set.Select(field, value)
}

// EditDraft returns the values of the edit form.
func (c *DetailsController) EditDraft() (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Draft{}, ErrNoBooking
	}
	return c.editDraftLocked(), nil
}

func (c *DetailsController) editDraftLocked() Draft {
	return Draft{
		Title:       c.editTitle,
		Date:        c.editDate,
		Time:        *c.set.Range(),
		RoomID:      c.current.RoomID,
		IsPublic:    c.current.IsPublic,
		Description: c.current.Description,
	}
}

// CancelEdit drops the edit values and shows the booking as it was.
func (c *DetailsController) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inEditLocked(); err != nil {
		return err
	}
	c.set.Load(picker.TimeRange{})
	c.renderDetailsLocked()
	return nil
}

// SubmitEdit sends the update. On failure the edit form stays open with its
// values; on success the modal closes and the calendar reloads.
func (c *DetailsController) SubmitEdit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.inEditLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	d := c.editDraftLocked()
	if err := validateTitle(d.Title); err != nil {
		c.notifier.Alert(UserMessage(err))
		c.mu.Unlock()
		return err
	}
	if err := ValidateTimeRange(d.Time, c.cfg.ClosingHour); err != nil {
		c.set.MarkAll(picker.StateError)
		c.notifier.Alert(UserMessage(err))
		c.mu.Unlock()
		return err
	}
	c.set.MarkAll(picker.StateValid)

	payload, err := d.Request(c.cfg.Formats)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	// Edits never change the series.
	payload.Recurring = ""
	payload.VisibilityType = ""

	id, session := c.current.ID, c.session
	c.returnTo = DetailsEditing
	c.mode = DetailsSubmitting
	c.view.SetSubmitting(true)
	c.mu.Unlock()

	err = c.backend.UpdateBooking(ctx, id, payload)
	return c.finish(ctx, session, "update", id, err)
}

// Delete asks for confirmation, then deletes the booking.
func (c *DetailsController) Delete(ctx context.Context) error {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.mode == DetailsSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	session := c.session
	c.mu.Unlock()

	if !c.confirmer.Confirm(deletePrompt) {
		return ErrDeleteCancelled
	}

	c.mu.Lock()
	if session != c.session || c.current == nil {
		c.mu.Unlock()
		return ErrStaleSession
	}
	if c.mode == DetailsSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	id := c.current.ID
	c.returnTo = c.mode
	c.mode = DetailsSubmitting
	c.view.SetSubmitting(true)
	c.mu.Unlock()

	err := c.backend.DeleteBooking(ctx, id)
	return c.finish(ctx, session, "delete", id, err)
}

func (c *DetailsController) finish(ctx context.Context, session, action string, id int, err error) error {
	c.mu.Lock()
	if session != c.session {
		c.mu.Unlock()
		c.logger.Debug("discarding response for closed session",
			zap.String("action", action), zap.String("session", session), zap.Error(err))
		return ErrStaleSession
	}
	if err != nil {
		c.mode = c.returnTo
		c.view.SetSubmitting(false)
		c.view.ShowError(UserMessage(err))
		c.mu.Unlock()
		c.logger.Warn("booking request failed", zap.String("action", action), zap.Int("id", id), zap.Error(err))
		return err
	}
	c.closeLocked()
	c.mu.Unlock()

	c.logger.Info("booking changed", zap.String("action", action), zap.Int("id", id))
	if err := c.calendar.RefetchEvents(ctx); err != nil {
		c.logger.Warn("calendar refetch failed", zap.Error(err))
	}
	return nil
}

// Close hides the modal and forgets the booking.
func (c *DetailsController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == DetailsClosed {
		return
	}
	c.closeLocked()
}

// HandleKey closes an open dropdown on Escape, and the modal on the next one.
func (c *DetailsController) HandleKey(key string) {
	if c.group.HandleKey(key) || key != picker.KeyEscape {
		return
	}
	c.Close()
}

func (c *DetailsController) closeLocked() {
	c.mode = DetailsClosed
	c.session = ""
	c.current = nil
	c.group.CloseAll()
	c.view.SetSubmitting(false)
	c.view.Hide()
}
