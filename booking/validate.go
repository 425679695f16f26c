package booking

import (
	"fmt"
	"strings"

	"roombook/picker"
	"roombook/slots"
)

// ValidateTimeRange checks a complete range against one calendar day ending
// at closingHour.
func ValidateTimeRange(r picker.TimeRange, closingHour int) error {
	start, okStart := r.Start()
	end, okEnd := r.End()
	if !okStart || !okEnd {
		return invalid("time", ErrIncompleteTime)
	}
	if end <= start {
		return invalid("time", ErrInvalidRange)
	}
	if end > closingHour*60 {
		return invalid("time", fmt.Errorf("%w (%02d:00)", ErrOutOfBounds, closingHour))
	}
	return nil
}

// openingHour resolves an optional opening hour; nil means the default.
func openingHour(h *int) int {
	if h == nil {
		return slots.DefaultOpeningHour
	}
	return *h
}

func checkHourWindow(opening, closing int) error {
	if opening < 0 || closing > 24 || opening >= closing {
		return fmt.Errorf("%w: %02d:00 - %02d:00", ErrHourWindow, opening, closing)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("title", ErrMissingTitle)
	}
	return nil
}

func validateRecurrence(d Draft) error {
	if d.Recurrence.Mode == RecurNone || d.Recurrence.EndDate == nil {
		return nil
	}
	if d.Recurrence.EndDate.Before(d.Date) {
		return invalid("recurring_end_date", ErrRecurrenceEnd)
	}
	return nil
}

func validateVisibility(d Draft) error {
	if d.Visibility.Type == VisibilitySpecific && len(d.Visibility.CompanyIDs) == 0 {
		return invalid("visibility", ErrMissingCompanies)
	}
	return nil
}
