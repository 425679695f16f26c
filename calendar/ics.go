package calendar

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"roombook/api"

	"github.com/emersion/go-ical"
)

const productID = "-//roombook//EN"

// WriteICS encodes events as one iCalendar document. stamp is used for
// DTSTAMP so exports are reproducible.
func WriteICS(w io.Writer, events []api.Event, host string, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, event := range events {
		cal.Children = append(cal.Children, toICal(event, host, stamp))
	}
	if len(cal.Children) == 0 {
		return fmt.Errorf("export: no events")
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toICal(event api.Event, host string, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, eventUID(event.ID, host))
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
	end := event.End
	if end.IsZero() {
		end = event.Start.Add(time.Hour)
	}
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())

	if event.RoomName != "" {
		ve.Props.SetText(ical.PropLocation, event.RoomName)
	}
	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	class := "PRIVATE"
	if event.IsPublic {
		class = "PUBLIC"
	}
	ve.Props.SetText(ical.PropClass, class)
	return ve
}

func eventUID(id int, host string) string {
	if host == "" {
		host = "roombook"
	}
	return "booking-" + strconv.Itoa(id) + "@" + host
}
