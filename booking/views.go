package booking

import (
	"context"
	"errors"

	"roombook/api"
)

// Backend is the part of the REST API the modals call.
type Backend interface {
	ListRooms(ctx context.Context) ([]api.Room, error)
	ListCompanies(ctx context.Context) ([]api.Company, error)
	CreateBooking(ctx context.Context, payload api.BookingRequest) (int, error)
	UpdateBooking(ctx context.Context, id int, payload api.BookingRequest) error
	DeleteBooking(ctx context.Context, id int) error
}

// Calendar is the grid the modals ask to reload after a change.
type Calendar interface {
	RefetchEvents(ctx context.Context) error
}

// Notifier shows a blocking message.
type Notifier interface {
	Alert(message string)
}

// Confirmer asks a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

type FormView interface {
	Show()
	Hide()
	SetTitle(title string)
	SetDate(date CalendarDate)
	SetRooms(rooms []api.Room)
	SetSelectedRoom(id int)
	SetCompanies(companies []api.Company)
	ShowCompanySelector(visible bool)
	SetRecurrence(r Recurrence)
	SetSubmitting(submitting bool)
	ShowError(message string)
}

// EventDetails is the read-only rendering of an existing booking.
type EventDetails struct {
	Title     string
	Time      string
	Organizer string
	Room      string
	CanEdit   bool
}

type DetailsView interface {
	Show()
	Hide()
	ShowDetails(details EventDetails)
	ShowEditForm(title string, date CalendarDate)
	SetSubmitting(submitting bool)
	ShowError(message string)
}

// UserMessage turns a submission error into the text shown to the user.
func UserMessage(err error) string {
	var reqErr *api.RequestError
	var netErr *api.NetworkError
	var valErr *ValidationError
	switch {
	case errors.As(err, &valErr):
		return valErr.Err.Error()
	case errors.As(err, &reqErr):
		return "Error: " + reqErr.Error()
	case errors.As(err, &netErr):
		return "Could not reach the server. Check your connection and try again."
	default:
		return "Error: " + err.Error()
	}
}
