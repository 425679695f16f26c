package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, router *mux.Router) *Client {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client := NewClient()
	client.BaseURL = server.URL
	client.Location = time.UTC
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateBookingSendsPayload(t *testing.T) {
	var got BookingRequest
	var cookie string
	router := mux.NewRouter()
	router.HandleFunc("/api/bookings/new", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(SessionCookieName); err == nil {
			cookie = c.Value
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": 41})
	}).Methods(http.MethodPost)

	client := newTestClient(t, router)
	client.SessionCookie = "abc"

	id, err := client.CreateBooking(context.Background(), BookingRequest{
		Title:     "Standup",
		StartTime: "23-12-2025T14:00",
		EndTime:   "23-12-2025T15:00",
		RoomID:    3,
		Recurring: "none",
	})
	require.NoError(t, err)
	assert.Equal(t, 41, id)
	assert.Equal(t, "abc", cookie)
	assert.Equal(t, "23-12-2025T14:00", got.StartTime)
	assert.Equal(t, 3, got.RoomID)
	assert.Nil(t, got.RecurringEndDate)
}

func TestSuccessFalseIsRequestError(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/bookings/7/update", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Room already booked"})
	}).Methods(http.MethodPost)

	client := newTestClient(t, router)
	err := client.UpdateBooking(context.Background(), 7, BookingRequest{Title: "x"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Room already booked", reqErr.Message)
}

func TestNon2xxCarriesServerReason(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/bookings/7/delete", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "Not allowed"})
	}).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, router)

	var reqErr *RequestError
	err := client.DeleteBooking(context.Background(), 7)
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Equal(t, "Not allowed", reqErr.Error())

	_, err = client.ListRooms(context.Background())
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "HTTP 500: Internal Server Error", reqErr.Message)
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient()
	client.BaseURL = server.URL

	_, err := client.ListRooms(context.Background())
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestListBookingsParsesFeed(t *testing.T) {
	var roomQuery string
	router := mux.NewRouter()
	router.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		roomQuery = r.URL.Query().Get("room_id")
		writeJSON(w, http.StatusOK, []map[string]any{
			{
				"id":    5,
				"title": "Planning",
				"start": "2025-12-23T14:00:00",
				"end":   "2025-12-23T15:30:00",
				"extendedProps": map[string]any{
					"organizer": "Dana",
					"room_id":   2,
					"can_edit":  true,
				},
			},
		})
	}).Methods(http.MethodGet)

	client := newTestClient(t, router)
	events, err := client.ListBookings(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "2", roomQuery)
	event := events[0]
	assert.Equal(t, time.Date(2025, 12, 23, 14, 0, 0, 0, time.UTC), event.Start)
	assert.Equal(t, 90*time.Minute, event.Duration())
	assert.Equal(t, "Dana", event.Organizer)
	assert.True(t, event.CanEdit)
}

func TestListRoomsCompaniesAndUser(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"rooms": []Room{{ID: 1, Name: "Boardroom", Status: "available"}}})
	})
	router.HandleFunc("/api/companies/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"companies": []Company{{ID: 9, Name: "Acme"}}})
	})
	router.HandleFunc("/api/current-user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": User{ID: 1, Name: "Sam", Role: "admin"}})
	})

	client := newTestClient(t, router)
	ctx := context.Background()

	rooms, err := client.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Boardroom", rooms[0].Name)
	assert.True(t, rooms[0].Available())

	companies, err := client.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", companies[0].Name)

	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestLimiterCancelledContext(t *testing.T) {
	client := NewClient()
	client.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, client.Limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListRooms(ctx)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}
