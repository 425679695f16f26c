package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ListBookings returns the calendar feed, filtered to one room when roomID is
// positive.
func (c *Client) ListBookings(ctx context.Context, roomID int) ([]Event, error) {
	var q url.Values
	if roomID > 0 {
		q = url.Values{}
		q.Set("room_id", strconv.Itoa(roomID))
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/bookings", q, nil)
	if err != nil {
		return nil, err
	}

	var payload []eventPayload
	if err := c.doJSON(req, &payload); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(payload))
	for _, p := range payload {
		event, err := c.toEvent(p)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) CreateBooking(ctx context.Context, payload BookingRequest) (int, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/bookings/new", nil, payload)
	if err != nil {
		return 0, err
	}
	result, err := c.doResult(req)
	if err != nil {
		return 0, err
	}
	return result.ID, nil
}

func (c *Client) UpdateBooking(ctx context.Context, id int, payload BookingRequest) error {
	path := fmt.Sprintf("/api/bookings/%d/update", id)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	_, err = c.doResult(req)
	return err
}

func (c *Client) DeleteBooking(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/bookings/%d/delete", id)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return err
	}
	_, err = c.doResult(req)
	return err
}

func (c *Client) toEvent(p eventPayload) (Event, error) {
	start, ok := parseAPIDateTime(p.Start, c.location())
	if !ok {
		return Event{}, fmt.Errorf("booking %d: invalid start %q", p.ID, p.Start)
	}
	var end time.Time
	if p.End != "" {
		end, ok = parseAPIDateTime(p.End, c.location())
		if !ok {
			return Event{}, fmt.Errorf("booking %d: invalid end %q", p.ID, p.End)
		}
	}
	return Event{
		ID:          p.ID,
		Title:       p.Title,
		Start:       start,
		End:         end,
		Organizer:   p.ExtendedProps.Organizer,
		RoomID:      p.ExtendedProps.RoomID,
		RoomName:    p.ExtendedProps.RoomName,
		IsPublic:    p.ExtendedProps.IsPublic,
		Description: p.ExtendedProps.Description,
		CanEdit:     p.ExtendedProps.CanEdit,
	}, nil
}

// parseAPIDateTime accepts the isoformat() output of the backend, with or
// without a zone. Zone-less values are read in loc.
func parseAPIDateTime(input string, loc *time.Location) (time.Time, bool) {
	if input == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, input); err == nil {
		return parsed.In(loc), true
	}
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, input, loc)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
