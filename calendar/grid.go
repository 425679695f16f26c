package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook/api"
	"roombook/storage"

	"go.uber.org/zap"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrEmptyRange   = errors.New("selection must end after it starts")
)

// Source is the booking feed behind the grid.
type Source interface {
	ListBookings(ctx context.Context, roomID int) ([]api.Event, error)
}

type RangeFunc func(start, end time.Time)

type EventFunc func(event api.Event)

// Grid is the calendar surface the booking modals talk to. It caches the last
// fetched feed and turns selections into callbacks.
type Grid struct {
	source   Source
	store    *storage.EventStore
	location *time.Location
	logger   *zap.Logger

	mu        sync.Mutex
	roomID    int
	fetchedAt time.Time
	onRange   RangeFunc
	onEvent   EventFunc
}

type GridConfig struct {
	Location *time.Location
	Logger   *zap.Logger
}

func NewGrid(source Source, store *storage.EventStore, cfg GridConfig) (*Grid, error) {
	if source == nil {
		return nil, fmt.Errorf("calendar grid: missing source")
	}
	if store == nil {
		return nil, fmt.Errorf("calendar grid: missing event store")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Grid{
		source:   source,
		store:    store,
		location: cfg.Location,
		logger:   cfg.Logger.Named("calendar"),
	}, nil
}

func (g *Grid) OnRangeSelected(fn RangeFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onRange = fn
}

func (g *Grid) OnEventActivated(fn EventFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onEvent = fn
}

// SetRoomFilter limits the feed to one room; 0 shows every room. The next
// RefetchEvents applies it.
func (g *Grid) SetRoomFilter(roomID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roomID = roomID
}

func (g *Grid) RoomFilter() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roomID
}

// RefetchEvents reloads the feed. The cache is left untouched when the fetch
// fails.
func (g *Grid) RefetchEvents(ctx context.Context) error {
	roomID := g.RoomFilter()
	started := time.Now()
	events, err := g.source.ListBookings(ctx, roomID)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	cached := make([]storage.Event, 0, len(events))
	for _, e := range events {
		cached = append(cached, toStored(e))
	}
	if err := g.store.Replace(ctx, cached); err != nil {
		return fmt.Errorf("cache events: %w", err)
	}

	g.mu.Lock()
	g.fetchedAt = time.Now()
	g.mu.Unlock()
	g.logger.Debug("events refetched",
		zap.Int("room_id", roomID),
		zap.Int("count", len(events)),
		zap.Duration("took", time.Since(started)))
	return nil
}

func (g *Grid) FetchedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetchedAt
}

// Events returns cached events overlapping [from, to).
func (g *Grid) Events(ctx context.Context, from, to time.Time) ([]api.Event, error) {
	stored, err := g.store.List(ctx, storage.EventFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	events := make([]api.Event, 0, len(stored))
	for _, e := range stored {
		events = append(events, g.fromStored(e))
	}
	return events, nil
}

// Day returns the events of the calendar day containing t, in the grid's zone.
func (g *Grid) Day(ctx context.Context, t time.Time) ([]api.Event, error) {
	t = t.In(g.location)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.location)
	return g.Events(ctx, start, start.AddDate(0, 0, 1))
}

// SelectRange reports a dragged time range to the range callback.
func (g *Grid) SelectRange(start, end time.Time) error {
	if !end.After(start) {
		return ErrEmptyRange
	}
	g.mu.Lock()
	fn := g.onRange
	g.mu.Unlock()
	if fn != nil {
		fn(start.In(g.location), end.In(g.location))
	}
	return nil
}

// Activate reports a click on a cached event to the event callback.
func (g *Grid) Activate(ctx context.Context, id int) (api.Event, error) {
	stored, ok, err := g.store.Get(ctx, id)
	if err != nil {
		return api.Event{}, err
	}
	if !ok {
		return api.Event{}, fmt.Errorf("%w: %d", ErrUnknownEvent, id)
	}
	event := g.fromStored(stored)

	g.mu.Lock()
	fn := g.onEvent
	g.mu.Unlock()
	if fn != nil {
		fn(event)
	}
	return event, nil
}

func toStored(e api.Event) storage.Event {
	return storage.Event{
		ID:          e.ID,
		Title:       e.Title,
		Start:       e.Start,
		End:         e.End,
		Organizer:   e.Organizer,
		RoomID:      e.RoomID,
		RoomName:    e.RoomName,
		IsPublic:    e.IsPublic,
		Description: e.Description,
		CanEdit:     e.CanEdit,
	}
}

func (g *Grid) fromStored(e storage.Event) api.Event {
	event := api.Event{
		ID:          e.ID,
		Title:       e.Title,
		Start:       e.Start.In(g.location),
		Organizer:   e.Organizer,
		RoomID:      e.RoomID,
		RoomName:    e.RoomName,
		IsPublic:    e.IsPublic,
		Description: e.Description,
		CanEdit:     e.CanEdit,
	}
	if !e.End.IsZero() {
		event.End = e.End.In(g.location)
	}
	return event
}

// EventLabel renders an event the way the grid draws it: "2:00pm - 3:00pm
// Title", or only the title for events of half an hour or less.
func EventLabel(e api.Event) string {
	if e.End.IsZero() || e.Duration() <= 30*time.Minute {
		return e.Title
	}
	const layout = "3:04pm"
	return fmt.Sprintf("%s - %s %s", e.Start.Format(layout), e.End.Format(layout), e.Title)
}
