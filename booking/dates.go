package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CalendarDate is a day without a clock or zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf takes the calendar day of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// At returns the instant minutes past midnight on d in loc.
func (d CalendarDate) At(minutes int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, minutes/60, minutes%60, 0, 0, loc)
}

func (d CalendarDate) Before(other CalendarDate) bool {
	return d.At(0, time.UTC).Before(other.At(0, time.UTC))
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.At(0, time.UTC).AddDate(0, 0, n))
}

func (d CalendarDate) Format(layout string) string {
	return d.At(0, time.UTC).Format(layout)
}

func (d CalendarDate) String() string {
	return d.Format("2006-01-02")
}

// Formats are the layouts the backend parses positionally. They are
// configuration because deployments of the backend disagree on them.
type Formats struct {
	DateTime      string `mapstructure:"datetime_layout"`
	RecurrenceEnd string `mapstructure:"recurrence_end_layout"`
	Display       string `mapstructure:"display_layout"`
}

func DefaultFormats() Formats {
	return Formats{
		DateTime:      "02-01-2006T15:04",
		RecurrenceEnd: "2006-01-02",
		Display:       "2 January 2006",
	}
}

func (f Formats) withDefaults() Formats {
	def := DefaultFormats()
	if f.DateTime == "" {
		f.DateTime = def.DateTime
	}
	if f.RecurrenceEnd == "" {
		f.RecurrenceEnd = def.RecurrenceEnd
	}
	if f.Display == "" {
		f.Display = def.Display
	}
	return f
}

// Combine joins a date with picker hour and minute values into the wire
// date-time string, "25-12-2025T14:00" with the default layout.
func (f Formats) Combine(d CalendarDate, hour, minute string) (string, error) {
	if d.IsZero() {
		return "", fmt.Errorf("combine: date is required")
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("combine: invalid hour %q", hour)
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("combine: invalid minute %q", minute)
	}
	return d.At(h*60+m, time.UTC).Format(f.withDefaults().DateTime), nil
}

// RecurrenceEndDate renders a standalone recurrence end date, "2025-12-25"
// with the default layout.
func (f Formats) RecurrenceEndDate(d CalendarDate) string {
	return d.Format(f.withDefaults().RecurrenceEnd)
}

// DisplayDate renders d the way the date picker shows it.
func (f Formats) DisplayDate(d CalendarDate) string {
	return d.Format(f.withDefaults().Display)
}

// ParseDate reads the date picker's display format and the common numeric
// forms. Day-first is tried before month-first.
func (f Formats) ParseDate(input string) (CalendarDate, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return CalendarDate{}, fmt.Errorf("date is required")
	}
	layouts := []string{
		f.withDefaults().Display,
		"2006-01-02",
		"02-01-2006",
		"2/1/2006",
		"02/01/2006",
		"2 Jan 2006",
		"Monday, 2 January 2006",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, input)
		if err == nil {
			return DateOf(parsed), nil
		}
	}
	return CalendarDate{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or %q)", input, f.withDefaults().Display)
}

// RoundQuarter rounds t to the nearest quarter hour, carrying into the next
// hour when needed.
func RoundQuarter(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight).Round(15 * time.Minute)
	return midnight.Add(offset)
}

// FormatEventTime renders a booking's time span as "2:00 PM - 3:00 PM".
func FormatEventTime(start, end time.Time) string {
	const layout = "3:04 PM"
	if end.IsZero() {
		return start.Format(layout)
	}
	return start.Format(layout) + " - " + end.Format(layout)
}
