package booking

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Occurrences expands the draft's recurrence into start instants. Without an
// end date at most limit occurrences are produced.
func Occurrences(d Draft, loc *time.Location, limit int) ([]time.Time, error) {
	start, ok := d.Time.Start()
	if !ok || d.Date.IsZero() {
		return nil, invalid("time", ErrIncompleteTime)
	}
	if loc == nil {
		loc = time.Local
	}
	first := d.Date.At(start, loc)

	var freq rrule.Frequency
	switch d.Recurrence.Mode {
	case RecurNone, "":
		return []time.Time{first}, nil
	case RecurDaily:
		freq = rrule.DAILY
	case RecurWeekly:
		freq = rrule.WEEKLY
	case RecurMonthly:
		freq = rrule.MONTHLY
	default:
		return nil, fmt.Errorf("unknown recurrence %q", d.Recurrence.Mode)
	}

	opts := rrule.ROption{Freq: freq, Dtstart: first}
	if d.Recurrence.EndDate != nil {
		opts.Until = d.Recurrence.EndDate.At(24*60-1, loc)
	}
	if limit > 0 {
		opts.Count = limit
	}
	rule, err := rrule.NewRRule(opts)
	if err != nil {
		return nil, fmt.Errorf("expand recurrence: %w", err)
	}
	return rule.All(), nil
}
