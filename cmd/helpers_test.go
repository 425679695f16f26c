package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roombook/api"
	"roombook/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseDateInput(t *testing.T) {
	now := time.Date(2025, 12, 23, 16, 45, 0, 0, time.UTC)
	formats := booking.DefaultFormats()

	got, err := parseDateInput("today", now, formats)
	require.NoError(t, err)
	assert.Equal(t, booking.NewDate(2025, time.December, 23), got)

	got, err = parseDateInput("Tomorrow", now, formats)
	require.NoError(t, err)
	assert.Equal(t, booking.NewDate(2025, time.December, 24), got)

	got, err = parseDateInput("25 December 2025", now, formats)
	require.NoError(t, err)
	assert.Equal(t, booking.NewDate(2025, time.December, 25), got)

	_, err = parseDateInput("", now, formats)
	assert.Error(t, err)
	_, err = parseDateInput("someday", now, formats)
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	minutes, err := parseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, 14*60+30, minutes)

	hour, minute := clockValues(minutes)
	assert.Equal(t, "14", hour)
	assert.Equal(t, "30", minute)

	hour, minute = clockValues(9 * 60)
	assert.Equal(t, "09", hour)
	assert.Equal(t, "00", minute)

	_, err = parseClock("2pm")
	assert.Error(t, err)
}

func TestResolveRoom(t *testing.T) {
	favourites := []FavouriteRoom{{ID: 4, Alias: "board"}}
	calls := 0
	rooms := func() ([]api.Room, error) {
		calls++
		return []api.Room{{ID: 2, Name: "Focus Pod"}, {ID: 4, Name: "Boardroom"}}, nil
	}

	id, err := resolveRoom("BOARD", favourites, rooms)
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	id, err = resolveRoom("2", favourites, rooms)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Zero(t, calls)

	id, err = resolveRoom("focus pod", favourites, rooms)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Equal(t, 1, calls)

	_, err = resolveRoom("Atrium", favourites, rooms)
	assert.ErrorContains(t, err, "Focus Pod, Boardroom")

	_, err = resolveRoom("Atrium", nil, func() ([]api.Room, error) { return nil, errors.New("offline") })
	assert.ErrorContains(t, err, "offline")

	_, err = resolveRoom(" ", nil, rooms)
	assert.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	conf, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", conf.BaseURL)
	assert.Equal(t, 15*time.Second, conf.Timeout)
	assert.Equal(t, 6, conf.OpeningHour)
	assert.Equal(t, 18, conf.ClosingHour)
	assert.Equal(t, []int{30, 60, 90, 120}, conf.Presets)
	assert.Equal(t, 800*time.Millisecond, conf.FlashDelay)
	assert.Equal(t, booking.DefaultFormats(), conf.Formats)
	assert.Equal(t, booking.DefaultTitle, conf.DefaultTitle)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: https://rooms.example.com
closing_hour: 20
presets: [15, 45]
datetime_layout: "2006-01-02T15:04"
timezone: Europe/London
favourite_rooms:
  - id: 4
    alias: board
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ROOMBOOK_SESSION_COOKIE", "abc123")

	conf, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://rooms.example.com", conf.BaseURL)
	assert.Equal(t, 20, conf.ClosingHour)
	assert.Equal(t, []int{15, 45}, conf.Presets)
	assert.Equal(t, "2006-01-02T15:04", conf.DateTime)
	assert.Equal(t, "2006-01-02", conf.RecurrenceEnd)
	assert.Equal(t, "abc123", conf.SessionCookie)
	assert.Equal(t, []FavouriteRoom{{ID: 4, Alias: "board"}}, conf.FavouriteRooms)

	loc, err := conf.location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())
}

func TestLoadConfigRejectsBadWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("opening_hour: 19\nclosing_hour: 18\n"), 0o600))

	_, err := loadConfig(path)
	assert.ErrorContains(t, err, "opening_hour")
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = newLogger("development", "debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("development", "loud")
	assert.Error(t, err)
}
