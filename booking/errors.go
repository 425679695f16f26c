package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange     = errors.New("end time must be after start time")
	ErrOutOfBounds      = errors.New("end time is past closing hour")
	ErrIncompleteTime   = errors.New("start and end time are required")
	ErrMissingTitle     = errors.New("a title is required")
	ErrMissingRoom      = errors.New("please select a room")
	ErrUnknownRoom      = errors.New("room is not in the room list")
	ErrMissingCompanies = errors.New("select at least one company")
	ErrRecurrenceEnd    = errors.New("recurrence end date is before the booking date")

	ErrHourWindow = errors.New("opening hour must be before closing hour")

	ErrNotOpen         = errors.New("booking modal is not open")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrStaleSession    = errors.New("response belongs to a closed modal session")
	ErrNotEditable     = errors.New("booking cannot be edited")
	ErrNoBooking       = errors.New("no booking selected")
	ErrDeleteCancelled = errors.New("delete not confirmed")
)

// ValidationError is an input problem caught before any request is sent.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was raised by input validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
