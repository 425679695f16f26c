package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"roombook/api"
	"roombook/picker"
	"roombook/preset"
	"roombook/slots"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase is the lifecycle position of a modal.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseInitializing
	PhaseEditing
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

const DefaultTitle = "New Booking"

type FormConfig struct {
	// OpeningHour is nil for the default; ClosingHour 0 means the default.
	OpeningHour  *int
	ClosingHour  int
	DefaultTitle string
	Presets      []int
	FlashDelay   time.Duration
	Formats      Formats
	Location     *time.Location
	Now          func() time.Time
	AfterFunc    func(d time.Duration, f func())
}

func (c FormConfig) withDefaults() FormConfig {
	if c.ClosingHour <= 0 {
		c.ClosingHour = slots.DefaultClosingHour
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = DefaultTitle
	}
	c.Formats = c.Formats.withDefaults()
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// FormDeps are the collaborators of the new-booking modal. All but Logger are
// required.
type FormDeps struct {
	Group    *picker.Group
	Pickers  picker.Views
	Buttons  preset.Buttons
	View     FormView
	Backend  Backend
	Calendar Calendar
	Notifier Notifier
	Logger   *zap.Logger
}

func (d FormDeps) check() error {
	switch {
	case d.Group == nil:
		return fmt.Errorf("booking form: missing picker group")
	case d.Buttons == nil:
		return fmt.Errorf("booking form: missing preset buttons")
	case d.View == nil:
		return fmt.Errorf("booking form: missing view")
	case d.Backend == nil:
		return fmt.Errorf("booking form: missing backend")
	case d.Calendar == nil:
		return fmt.Errorf("booking form: missing calendar")
	case d.Notifier == nil:
		return fmt.Errorf("booking form: missing notifier")
	}
	return nil
}

type listLoad[T any] struct {
	done  chan struct{}
	items []T
	err   error
}

func newListLoad[T any]() *listLoad[T] {
	return &listLoad[T]{done: make(chan struct{})}
}

func (l *listLoad[T]) ready() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *listLoad[T]) wait(ctx context.Context) ([]T, error) {
	select {
	case <-l.done:
		return l.items, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FormController owns the new-booking modal: its pickers, presets, draft and
// the single in-flight submission. Every open starts a new session; responses
// from an older session are dropped.
type FormController struct {
	cfg      FormConfig
	group    *picker.Group
	set      *picker.Set
	presets  *preset.Engine
	view     FormView
	backend  Backend
	calendar Calendar
	notifier Notifier
	logger   *zap.Logger

	mu        sync.Mutex
	phase     Phase
	session   string
	draft     Draft
	rooms     *listLoad[api.Room]
	companies *listLoad[api.Company]
}

func NewFormController(deps FormDeps, cfg FormConfig) (*FormController, error) {
	if err := deps.check(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	opening := openingHour(cfg.OpeningHour)
	if err := checkHourWindow(opening, cfg.ClosingHour); err != nil {
		return nil, fmt.Errorf("booking form: %w", err)
	}

	set, err := picker.NewSet(deps.Group, "new", slots.Hours(opening, cfg.ClosingHour), deps.Pickers)
	if err != nil {
		return nil, fmt.Errorf("booking form: %w", err)
	}
	engine, err := preset.New(set, deps.Buttons, deps.Notifier, preset.Config{
		ClosingHour: cfg.ClosingHour,
		Durations:   cfg.Presets,
		FlashDelay:  cfg.FlashDelay,
		Now:         func() time.Time { return cfg.Now().In(cfg.Location) },
		AfterFunc:   cfg.AfterFunc,
	})
	if err != nil {
		return nil, fmt.Errorf("booking form: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormController{
		cfg:      cfg,
		group:    deps.Group,
		set:      set,
		presets:  engine,
		view:     deps.View,
		backend:  deps.Backend,
		calendar: deps.Calendar,
		notifier: deps.Notifier,
		logger:   logger.Named("booking_form"),
	}, nil
}

// OpenForNewBooking resets the modal and shows it. A grid selection passes its
// range; a zero start means "now" with a one hour default. The room list
// loads in the background.
func (c *FormController) OpenForNewBooking(ctx context.Context, start, end time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = PhaseInitializing
	c.session = uuid.NewString()

	if start.IsZero() {
		start = c.cfg.Now()
		end = time.Time{}
	}
	start = RoundQuarter(start.In(c.cfg.Location))
	if end.IsZero() {
		end = start.Add(time.Hour)
	} else {
		end = RoundQuarter(end.In(c.cfg.Location))
	}

	var r picker.TimeRange
	r.SetStart(start.Hour()*60 + start.Minute())
	r.SetEnd(end.Hour()*60 + end.Minute())

	c.draft = newDraft(c.cfg.DefaultTitle, DateOf(start))
	c.group.CloseAll()
	c.set.Load(r)
	c.set.MarkAll(picker.StateNone)
	c.presets.Reset()

	c.view.SetTitle(c.draft.Title)
	c.view.SetDate(c.draft.Date)
	c.view.SetSelectedRoom(0)
	c.view.ShowCompanySelector(false)
	c.view.SetRecurrence(c.draft.Recurrence)
	c.view.SetSubmitting(false)
	c.view.Show()

	c.rooms = newListLoad[api.Room]()
	c.companies = nil
	go c.loadRooms(ctx, c.session, c.rooms)

	c.phase = PhaseEditing
	c.logger.Debug("modal opened",
		zap.String("session", c.session),
		zap.String("date", c.draft.Date.String()),
		zap.String("start", r.StartHour+":"+r.StartMinute),
		zap.String("end", r.EndHour+":"+r.EndMinute))
}

func (c *FormController) loadRooms(ctx context.Context, session string, load *listLoad[api.Room]) {
	rooms, err := c.backend.ListRooms(ctx)
	load.items, load.err = rooms, err
	close(load.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	if session != c.session {
		c.logger.Debug("discarding room list for closed session", zap.String("session", session))
		return
	}
	if err != nil {
		c.logger.Warn("room list failed", zap.Error(err))
		c.view.ShowError("Failed to load rooms")
		return
	}
	c.view.SetRooms(rooms)
}

func (c *FormController) loadCompanies(ctx context.Context, session string, load *listLoad[api.Company]) {
	companies, err := c.backend.ListCompanies(ctx)
	load.items, load.err = companies, err
	close(load.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	if session != c.session {
		c.logger.Debug("discarding company list for closed session", zap.String("session", session))
		return
	}
	if err != nil {
		c.logger.Warn("company list failed", zap.Error(err))
		c.view.ShowError("Failed to load companies")
		return
	}
	c.view.SetCompanies(companies)
}

// Rooms waits for the room list of the current session.
func (c *FormController) Rooms(ctx context.Context) ([]api.Room, error) {
	c.mu.Lock()
	load := c.rooms
	c.mu.Unlock()
	if load == nil {
		return nil, ErrNotOpen
	}
	return load.wait(ctx)
}

// Companies waits for the company list. It is only fetched once specific
// company visibility was chosen.
func (c *FormController) Companies(ctx context.Context) ([]api.Company, error) {
	c.mu.Lock()
	load := c.companies
	c.mu.Unlock()
	if load == nil {
		return nil, nil
	}
	return load.wait(ctx)
}

func (c *FormController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *FormController) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Draft returns a copy of the modal content including the picker values.
func (c *FormController) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftLocked()
}

func (c *FormController) draftLocked() Draft {
	d := c.draft
	d.Time = *c.set.Range()
	d.Visibility.CompanyIDs = append([]int(nil), c.draft.Visibility.CompanyIDs...)
	return d
}

// Pickers exposes the time controls for rendering.
func (c *FormController) Pickers() *picker.Set {
	return c.set
}

func (c *FormController) Presets() *preset.Engine {
	return c.presets
}

func (c *FormController) editing() error {
	switch c.phase {
	case PhaseEditing:
		return nil
	case PhaseSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrNotOpen
	}
}

// SelectTime picks a slot on one of the time controls.
func (c *FormController) SelectTime(field picker.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	return c.set.Select(field, value)
}

func (c *FormController) ApplyPreset(minutes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	return c.presets.ApplyPreset(minutes)
}

func (c *FormController) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	c.draft.Title = title
	c.view.SetTitle(title)
	return nil
}

func (c *FormController) SetDate(date CalendarDate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	c.draft.Date = date
	c.view.SetDate(date)
	return nil
}

func (c *FormController) SetDescription(description string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	c.draft.Description = description
	return nil
}

func (c *FormController) SetPublic(public bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	c.draft.IsPublic = public
	return nil
}

// SelectRoom picks the room. Once the room list has loaded the id must be in it.
func (c *FormController) SelectRoom(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	if c.rooms != nil && c.rooms.ready() && c.rooms.err == nil && id != 0 {
		found := false
		for _, room := range c.rooms.items {
			if room.ID == id {
				found = true
				break
			}
		}
		if !found {
			return invalid("room_id", fmt.Errorf("%w: %d", ErrUnknownRoom, id))
		}
	}
	c.draft.RoomID = id
	c.view.SetSelectedRoom(id)
	return nil
}

// SetRecurrence sets the repeat mode. The end date is dropped for "none".
func (c *FormController) SetRecurrence(mode RecurrenceMode, endDate *CalendarDate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	r := Recurrence{Mode: mode}
	if mode != RecurNone && endDate != nil {
		end := *endDate
		r.EndDate = &end
	}
	c.draft.Recurrence = r
	c.view.SetRecurrence(r)
	return nil
}

// SetVisibility chooses who sees the booking. Picking specific companies shows
// the company selector and loads the company list once per session.
func (c *FormController) SetVisibility(ctx context.Context, kind VisibilityType, companyIDs []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	v := Visibility{Type: kind}
	if kind == VisibilitySpecific {
		v.CompanyIDs = append([]int(nil), companyIDs...)
		if c.companies == nil {
			c.companies = newListLoad[api.Company]()
			go c.loadCompanies(ctx, c.session, c.companies)
		}
	}
	c.draft.Visibility = v
	c.draft.IsPublic = kind == VisibilityPublic
	c.view.ShowCompanySelector(kind == VisibilitySpecific)
	return nil
}

// Validate runs the submit checks without sending anything. Time pickers are
// marked with the outcome.
func (c *FormController) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return err
	}
	return c.validateLocked(c.draftLocked())
}

func (c *FormController) validateLocked(d Draft) error {
	if err := validateTitle(d.Title); err != nil {
		c.notifier.Alert(UserMessage(err))
		return err
	}
	if err := ValidateTimeRange(d.Time, c.cfg.ClosingHour); err != nil {
		c.set.MarkAll(picker.StateError)
		c.notifier.Alert(UserMessage(err))
		return err
	}
	c.set.MarkAll(picker.StateValid)
	if d.RoomID <= 0 {
		err := invalid("room_id", ErrMissingRoom)
		c.notifier.Alert(UserMessage(err))
		return err
	}
	for _, check := range []func(Draft) error{validateRecurrence, validateVisibility} {
		if err := check(d); err != nil {
			c.notifier.Alert(UserMessage(err))
			return err
		}
	}
	return nil
}

// Payload validates the draft and returns the create request without sending it.
func (c *FormController) Payload() (api.BookingRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editing(); err != nil {
		return api.BookingRequest{}, err
	}
	d := c.draftLocked()
	if err := c.validateLocked(d); err != nil {
		return api.BookingRequest{}, err
	}
	return d.Request(c.cfg.Formats)
}

// Submit validates and sends exactly one create request. The submit control
// stays disabled until the response arrives. On failure the modal stays open
// with the entered values; on success it closes and the calendar reloads.
func (c *FormController) Submit(ctx context.Context) (int, error) {
	c.mu.Lock()
	if err := c.editing(); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	d := c.draftLocked()
	if err := c.validateLocked(d); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	payload, err := d.Request(c.cfg.Formats)
	if err != nil {
		c.mu.Unlock()
		return 0, err
	}
	session := c.session
	c.phase = PhaseSubmitting
	c.view.SetSubmitting(true)
	c.mu.Unlock()

	c.logger.Debug("creating booking",
		zap.String("session", session),
		zap.String("start", payload.StartTime),
		zap.String("end", payload.EndTime),
		zap.Int("room_id", payload.RoomID))
	id, err := c.backend.CreateBooking(ctx, payload)

	c.mu.Lock()
	if session != c.session {
		c.mu.Unlock()
		c.logger.Debug("discarding create response for closed session", zap.String("session", session), zap.Error(err))
		return id, ErrStaleSession
	}
	if err != nil {
		c.phase = PhaseEditing
		c.view.SetSubmitting(false)
		c.view.ShowError(UserMessage(err))
		c.mu.Unlock()
		c.logger.Warn("create booking failed", zap.Error(err))
		return 0, err
	}
	c.closeLocked()
	c.mu.Unlock()

	c.logger.Info("booking created", zap.Int("id", id), zap.String("title", payload.Title))
	if err := c.calendar.RefetchEvents(ctx); err != nil {
		c.logger.Warn("calendar refetch failed", zap.Error(err))
	}
	return id, nil
}

// Cancel discards the draft and hides the modal.
func (c *FormController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseClosed {
		return
	}
	c.closeLocked()
}

// HandleKey routes a key press: Escape closes an open dropdown first and the
// modal on the next press.
func (c *FormController) HandleKey(key string) {
	if c.group.HandleKey(key) || key != picker.KeyEscape {
		return
	}
	c.Cancel()
}

func (c *FormController) closeLocked() {
	c.logger.Debug("modal closed", zap.String("session", c.session), zap.Stringer("phase", c.phase))
	c.phase = PhaseClosed
	c.session = ""
	c.rooms = nil
	c.companies = nil
	c.group.CloseAll()
	c.view.SetSubmitting(false)
	c.view.Hide()
}

// DisplayRange renders the picker values as "14:00-15:00".
func DisplayRange(r picker.TimeRange) string {
	parts := []string{r.StartHour + ":" + r.StartMinute, r.EndHour + ":" + r.EndMinute}
	return strings.Join(parts, "-")
}
