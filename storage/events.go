package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// timeLayout keeps stored instants lexically ordered.
const timeLayout = "2006-01-02T15:04:05Z"

// Event is a booking as cached for the calendar grid.
type Event struct {
	ID          int
	Title       string
	Start       time.Time
	End         time.Time
	Organizer   string
	RoomID      int
	RoomName    string
	IsPublic    bool
	Description string
	CanEdit     bool
}

type EventFilter struct {
	From   time.Time
	To     time.Time
	RoomID int
}

// EventStore holds the last fetched booking feed in an in-memory SQLite
// database. Nothing is written to disk.
type EventStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func OpenEventStore(logger *zap.Logger) (*EventStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := ensureEventsSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventStore{db: db, logger: logger.Named("event_store")}, nil
}

func (s *EventStore) Close() error {
	return s.db.Close()
}

func ensureEventsSchema(db *sql.DB) error {
	createTable := `
CREATE TABLE IF NOT EXISTS events (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  start_utc TEXT NOT NULL,
  end_utc TEXT,
  organizer TEXT,
  room_id INTEGER,
  room_name TEXT,
  is_public INTEGER,
  description TEXT,
  can_edit INTEGER
);`

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_utc);"); err != nil {
		return fmt.Errorf("create events index: %w", err)
	}
	return nil
}

// Replace swaps the cached feed for events in one transaction.
func (s *EventStore) Replace(ctx context.Context, events []Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	query := `
INSERT OR REPLACE INTO events (
  id, title, start_utc, end_utc, organizer, room_id, room_name, is_public, description, can_edit
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, event := range events {
		var end sql.NullString
		if !event.End.IsZero() {
			end = sql.NullString{String: formatTime(event.End), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			event.ID,
			event.Title,
			formatTime(event.Start),
			end,
			event.Organizer,
			event.RoomID,
			event.RoomName,
			event.IsPublic,
			event.Description,
			event.CanEdit,
		); err != nil {
			return fmt.Errorf("insert event %d: %w", event.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("event cache replaced", zap.Int("count", len(events)))
	return nil
}

func (s *EventStore) Remove(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const selectEvents = `
SELECT id, title, start_utc, end_utc, organizer, room_id, room_name, is_public, description, can_edit
FROM events`

func (s *EventStore) Get(ctx context.Context, id int) (Event, bool, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+" WHERE id = ?", id)
	if err != nil {
		return Event{}, false, err
	}
	events, err := scanEvents(rows)
	if err != nil || len(events) == 0 {
		return Event{}, false, err
	}
	return events[0], true, nil
}

// List returns cached events overlapping [From, To), ordered by start. Zero
// bounds are open. An event without an end counts as the instant it starts.
func (s *EventStore) List(ctx context.Context, filter EventFilter) ([]Event, error) {
	conds := []string{}
	args := []any{}

	if !filter.From.IsZero() {
		from := formatTime(filter.From)
		conds = append(conds, "(end_utc > ? OR (end_utc IS NULL AND start_utc >= ?))")
		args = append(args, from, from)
	}
	if !filter.To.IsZero() {
		conds = append(conds, "start_utc < ?")
		args = append(args, formatTime(filter.To))
	}
	if filter.RoomID > 0 {
		conds = append(conds, "room_id = ?")
		args = append(args, filter.RoomID)
	}

	query := selectEvents
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_utc, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var event Event
		var start string
		var end, organizer, roomName, description sql.NullString
		var roomID sql.NullInt64
		var public, canEdit sql.NullBool
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&start,
			&end,
			&organizer,
			&roomID,
			&roomName,
			&public,
			&description,
			&canEdit,
		); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, start)
		if err != nil {
			return nil, fmt.Errorf("event %d start: %w", event.ID, err)
		}
		event.Start = parsed
		if end.Valid {
			parsed, err := time.Parse(timeLayout, end.String)
			if err != nil {
				return nil, fmt.Errorf("event %d end: %w", event.ID, err)
			}
			event.End = parsed
		}
		event.Organizer = organizer.String
		event.RoomID = int(roomID.Int64)
		event.RoomName = roomName.String
		event.IsPublic = public.Bool
		event.Description = description.String
		event.CanEdit = canEdit.Bool
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
