package picker

import (
	"strconv"

	"roombook/slots"
)

// Field names one of the four values of a TimeRange.
type Field int

const (
	StartHour Field = iota
	StartMinute
	EndHour
	EndMinute
)

// Fields lists every field in display order.
var Fields = []Field{StartHour, StartMinute, EndHour, EndMinute}

func (f Field) String() string {
	switch f {
	case StartHour:
		return "startHour"
	case StartMinute:
		return "startMinute"
	case EndHour:
		return "endHour"
	case EndMinute:
		return "endMinute"
	default:
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
}

func (f Field) IsStart() bool {
	return f == StartHour || f == StartMinute
}

func (f Field) IsEnd() bool {
	return f == EndHour || f == EndMinute
}

func (f Field) IsHour() bool {
	return f == StartHour || f == EndHour
}

func (f Field) placeholder() string {
	if f.IsHour() {
		return "Hour"
	}
	return "Min"
}

// TimeRange holds the four picker values of one modal context. Empty strings
// mean unset.
type TimeRange struct {
	StartHour   string `json:"start_hour"`
	StartMinute string `json:"start_minute"`
	EndHour     string `json:"end_hour"`
	EndMinute   string `json:"end_minute"`
}

func (r *TimeRange) Get(f Field) string {
	switch f {
	case StartHour:
		return r.StartHour
	case StartMinute:
		return r.StartMinute
	case EndHour:
		return r.EndHour
	case EndMinute:
		return r.EndMinute
	}
	return ""
}

func (r *TimeRange) Set(f Field, value string) {
	switch f {
	case StartHour:
		r.StartHour = value
	case StartMinute:
		r.StartMinute = value
	case EndHour:
		r.EndHour = value
	case EndMinute:
		r.EndMinute = value
	}
}

// Start returns the start as minutes past midnight.
func (r TimeRange) Start() (int, bool) {
	return clockMinutes(r.StartHour, r.StartMinute)
}

// End returns the end as minutes past midnight.
func (r TimeRange) End() (int, bool) {
	return clockMinutes(r.EndHour, r.EndMinute)
}

func (r TimeRange) Complete() bool {
	_, okStart := r.Start()
	_, okEnd := r.End()
	return okStart && okEnd
}

func (r *TimeRange) SetStart(minutes int) {
	r.StartHour, r.StartMinute = splitMinutes(minutes)
}

func (r *TimeRange) SetEnd(minutes int) {
	r.EndHour, r.EndMinute = splitMinutes(minutes)
}

func (r *TimeRange) ClearEnd() {
	r.EndHour = ""
	r.EndMinute = ""
}

func clockMinutes(hour, minute string) (int, bool) {
	if hour == "" || minute == "" {
		return 0, false
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func splitMinutes(minutes int) (string, string) {
	return slots.Pad2(minutes / 60), slots.Pad2(minutes % 60)
}
