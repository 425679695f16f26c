package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"roombook/api"
	"roombook/booking"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu      sync.Mutex
	created []api.BookingRequest
	deleted []string
	feed    []map[string]any
}

func (b *fakeBackend) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"rooms": []api.Room{{ID: 2, Name: "Focus Pod"}, {ID: 4, Name: "Boardroom"}}})
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		respond(w, b.feed)
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/bookings/new", func(w http.ResponseWriter, r *http.Request) {
		var req api.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.created = append(b.created, req)
		b.feed = append(b.feed, map[string]any{
			"id":    31,
			"title": req.Title,
			"start": "2025-12-23T14:00:00",
			"end":   "2025-12-23T15:00:00",
			"extendedProps": map[string]any{
				"room_id":   req.RoomID,
				"room_name": "Boardroom",
				"can_edit":  true,
			},
		})
		b.mu.Unlock()
		respond(w, map[string]any{"success": true, "id": 31})
	}).Methods(http.MethodPost)
	router.HandleFunc("/api/bookings/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, mux.Vars(r)["id"])
		b.feed = nil
		b.mu.Unlock()
		respond(w, map[string]any{"success": true})
	}).Methods(http.MethodPost)
	return router
}

func (b *fakeBackend) Created() []api.BookingRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.BookingRequest(nil), b.created...)
}

func (b *fakeBackend) Deleted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deleted...)
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func useBackend(t *testing.T, backend *fakeBackend) {
	t.Helper()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	conf, err := loadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	conf.Timezone = "UTC"
	conf.BaseURL = server.URL

	prevCfg, prevClient, prevYes := cfg, client, assumeYes
	t.Cleanup(func() { cfg, client, assumeYes = prevCfg, prevClient, prevYes })

	cfg = conf
	client = api.NewClient()
	client.BaseURL = server.URL
	client.Location = time.UTC
}

func TestGridSelectionBooksAndDeletes(t *testing.T) {
	backend := &fakeBackend{}
	useBackend(t, backend)
	assumeYes = true

	ctx := context.Background()
	a, err := newApp(ctx, io.Discard, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	start := time.Date(2025, 12, 23, 14, 0, 0, 0, time.UTC)
	require.NoError(t, a.grid.SelectRange(start, start.Add(time.Hour)))
	assert.Equal(t, booking.PhaseEditing, a.form.Phase())

	roomID, err := resolveRoom("boardroom", nil, func() ([]api.Room, error) { return a.form.Rooms(ctx) })
	require.NoError(t, err)
	require.NoError(t, a.form.SelectRoom(roomID))
	require.NoError(t, a.form.SetTitle("Design review"))

	id, err := a.form.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31, id)
	assert.Equal(t, booking.PhaseClosed, a.form.Phase())

	created := backend.Created()
	require.Len(t, created, 1)
	assert.Equal(t, "23-12-2025T14:00", created[0].StartTime)
	assert.Equal(t, "23-12-2025T15:00", created[0].EndTime)
	assert.Equal(t, 4, created[0].RoomID)

	day, err := a.grid.Day(ctx, start)
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "Design review", day[0].Title)

	event, err := a.grid.Activate(ctx, 31)
	require.NoError(t, err)
	assert.True(t, event.CanEdit)
	assert.Equal(t, booking.DetailsViewing, a.details.Mode())

	require.NoError(t, a.details.Delete(ctx))
	assert.Equal(t, []string{"31"}, backend.Deleted())
	assert.Equal(t, booking.DetailsClosed, a.details.Mode())

	day, err = a.grid.Day(ctx, start)
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestDeleteWithoutTerminalNeedsYes(t *testing.T) {
	backend := &fakeBackend{feed: []map[string]any{{
		"id":            8,
		"title":         "Standup",
		"start":         "2025-12-23T09:00:00",
		"end":           "2025-12-23T09:30:00",
		"extendedProps": map[string]any{"can_edit": true},
	}}}
	useBackend(t, backend)
	assumeYes = false

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })
	prevStdin := stdin
	stdin = r
	t.Cleanup(func() { stdin = prevStdin })

	ctx := context.Background()
	a, err := newApp(ctx, io.Discard, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	_, err = activate(ctx, a, "8")
	require.NoError(t, err)

	assert.ErrorIs(t, a.details.Delete(ctx), booking.ErrDeleteCancelled)
	assert.Empty(t, backend.Deleted())
}

func TestSubmitBookingReportsSentRequest(t *testing.T) {
	backend := &fakeBackend{}
	useBackend(t, backend)

	ctx := context.Background()
	a, err := newApp(ctx, io.Discard, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	start := time.Date(2025, 12, 23, 14, 0, 0, 0, time.UTC)
	require.NoError(t, a.grid.SelectRange(start, start.Add(time.Hour)))
	_, err = a.form.Rooms(ctx)
	require.NoError(t, err)
	require.NoError(t, a.form.SelectRoom(4))

	out, err := submitBooking(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 31, out.ID)

	created := backend.Created()
	require.Len(t, created, 1)
	assert.Equal(t, created[0], out.Request)

	_, err = submitBooking(ctx, a)
	assert.ErrorIs(t, err, booking.ErrNotOpen)
	assert.Len(t, backend.Created(), 1)
}

func TestOfferedSlotsFollowConfig(t *testing.T) {
	useBackend(t, &fakeBackend{})
	cfg.OpeningHour = 0
	cfg.ClosingHour = 2
	cfg.Presets = []int{45}

	a, err := newApp(context.Background(), io.Discard, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	out := offeredSlots(a)
	values := []string{}
	for _, h := range out.Hours {
		values = append(values, h.Value)
	}
	assert.Equal(t, []string{"00", "01", "02"}, values)
	assert.Len(t, out.Minutes, 4)
	assert.Equal(t, []int{45}, out.Presets)
}
