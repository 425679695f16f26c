package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"roombook/api"
	"roombook/booking"
	"roombook/slots"
)

func parseDateInput(input string, now time.Time, formats booking.Formats) (booking.CalendarDate, error) {
	if input == "" {
		return booking.CalendarDate{}, fmt.Errorf("date is required")
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "today":
		return booking.DateOf(now), nil
	case "tomorrow":
		return booking.DateOf(now.AddDate(0, 0, 1)), nil
	}
	return formats.ParseDate(input)
}

func parseClock(input string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", input)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// clockValues splits minutes past midnight into picker hour and minute values.
func clockValues(minutes int) (string, string) {
	return slots.Pad2(minutes / 60), slots.Pad2(minutes % 60)
}

// resolveRoom accepts a favourite alias, a numeric id or a room name.
func resolveRoom(input string, favourites []FavouriteRoom, rooms func() ([]api.Room, error)) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("room is required")
	}
	for _, fav := range favourites {
		if strings.EqualFold(fav.Alias, input) {
			return fav.ID, nil
		}
	}
	if id, err := strconv.Atoi(input); err == nil && id > 0 {
		return id, nil
	}

	list, err := rooms()
	if err != nil {
		return 0, fmt.Errorf("load rooms: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, room := range list {
		if strings.EqualFold(room.Name, input) {
			return room.ID, nil
		}
		names = append(names, room.Name)
	}
	return 0, fmt.Errorf("room %q not found. Available: %s", input, strings.Join(names, ", "))
}

func roomAlias(id int) string {
	for _, fav := range cfg.FavouriteRooms {
		if fav.ID == id {
			return fav.Alias
		}
	}
	return ""
}

func dayBounds(d booking.CalendarDate, loc *time.Location) (time.Time, time.Time) {
	start := d.At(0, loc)
	return start, start.AddDate(0, 0, 1)
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
