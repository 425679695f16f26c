package api

import "time"

// Result is the envelope of every mutating endpoint.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ID      int    `json:"id,omitempty"`
}

type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
	Location string `json:"location,omitempty"`
	RoomType string `json:"room_type,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (r Room) Available() bool {
	return r.Status == "" || r.Status == "available"
}

type Company struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

type User struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyID   int    `json:"company_id,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == "admin" || u.Role == "super_admin"
}

// Event is a booking as the calendar feed returns it.
type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Organizer   string    `json:"organizer,omitempty"`
	RoomID      int       `json:"room_id,omitempty"`
	RoomName    string    `json:"room_name,omitempty"`
	IsPublic    bool      `json:"is_public"`
	Description string    `json:"description,omitempty"`
	CanEdit     bool      `json:"can_edit"`
}

func (e Event) Duration() time.Duration {
	if e.End.IsZero() {
		return 0
	}
	return e.End.Sub(e.Start)
}

// BookingRequest is the create and update payload. StartTime and EndTime are
// day-first combined strings, RecurringEndDate is year-first. A zero RoomID is
// left out so an update keeps the booking's room.
type BookingRequest struct {
	Title             string  `json:"title"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	RoomID            int     `json:"room_id,omitempty"`
	IsPublic          bool    `json:"is_public"`
	Description       string  `json:"description,omitempty"`
	Recurring         string  `json:"recurring,omitempty"`
	RecurringEndDate  *string `json:"recurring_end_date"`
	VisibilityType    string  `json:"visibility_type,omitempty"`
	VisibleCompanyIDs []int   `json:"visible_company_ids,omitempty"`
}

type eventPayload struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Start         string `json:"start"`
	End           string `json:"end"`
	ExtendedProps struct {
		Organizer   string `json:"organizer"`
		RoomID      int    `json:"room_id"`
		RoomName    string `json:"room_name"`
		IsPublic    bool   `json:"is_public"`
		Description string `json:"description"`
		CanEdit     bool   `json:"can_edit"`
	} `json:"extendedProps"`
}
