package booking

import (
	"fmt"
	"strings"

	"roombook/api"
	"roombook/picker"
)

type RecurrenceMode string

const (
	RecurNone    RecurrenceMode = "none"
	RecurDaily   RecurrenceMode = "daily"
	RecurWeekly  RecurrenceMode = "weekly"
	RecurMonthly RecurrenceMode = "monthly"
)

func ParseRecurrenceMode(input string) (RecurrenceMode, error) {
	switch mode := RecurrenceMode(strings.ToLower(strings.TrimSpace(input))); mode {
	case "":
		return RecurNone, nil
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid recurrence %q (expected none, daily, weekly or monthly)", input)
	}
}

type Recurrence struct {
	Mode    RecurrenceMode
	EndDate *CalendarDate
}

type VisibilityType string

const (
	VisibilityCompany  VisibilityType = "company"
	VisibilityPublic   VisibilityType = "public"
	VisibilitySpecific VisibilityType = "specific_companies"
)

func ParseVisibilityType(input string) (VisibilityType, error) {
	switch v := VisibilityType(strings.ToLower(strings.TrimSpace(input))); v {
	case "":
		return VisibilityCompany, nil
	case VisibilityCompany, VisibilityPublic, VisibilitySpecific:
		return v, nil
	default:
		return "", fmt.Errorf("invalid visibility %q (expected company, public or specific_companies)", input)
	}
}

type Visibility struct {
	Type       VisibilityType
	CompanyIDs []int
}

// Draft is the content of the new-booking modal. It lives from one open to
// the matching submit or cancel.
type Draft struct {
	Title       string
	Date        CalendarDate
	Time        picker.TimeRange
	RoomID      int
	IsPublic    bool
	Description string
	Recurrence  Recurrence
	Visibility  Visibility
}

func newDraft(title string, date CalendarDate) Draft {
	return Draft{
		Title:      title,
		Date:       date,
		Recurrence: Recurrence{Mode: RecurNone},
		Visibility: Visibility{Type: VisibilityCompany},
	}
}

// Request converts the draft into the create payload.
func (d Draft) Request(f Formats) (api.BookingRequest, error) {
	start, err := f.Combine(d.Date, d.Time.StartHour, d.Time.StartMinute)
	if err != nil {
		return api.BookingRequest{}, fmt.Errorf("start time: %w", err)
	}
	end, err := f.Combine(d.Date, d.Time.EndHour, d.Time.EndMinute)
	if err != nil {
		return api.BookingRequest{}, fmt.Errorf("end time: %w", err)
	}

	req := api.BookingRequest{
		Title:       strings.TrimSpace(d.Title),
		StartTime:   start,
		EndTime:     end,
		RoomID:      d.RoomID,
		IsPublic:    d.IsPublic || d.Visibility.Type == VisibilityPublic,
		Description: strings.TrimSpace(d.Description),
		Recurring:   string(d.Recurrence.Mode),
	}
	if req.Recurring == "" {
		req.Recurring = string(RecurNone)
	}
	if d.Recurrence.Mode != RecurNone && d.Recurrence.EndDate != nil {
		end := f.RecurrenceEndDate(*d.Recurrence.EndDate)
		req.RecurringEndDate = &end
	}
	if d.Visibility.Type != "" {
		req.VisibilityType = string(d.Visibility.Type)
	}
	if d.Visibility.Type == VisibilitySpecific {
		req.VisibleCompanyIDs = append([]int(nil), d.Visibility.CompanyIDs...)
	}
	return req, nil
}
