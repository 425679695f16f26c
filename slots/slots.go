// Package slots lists the discrete hour and minute values a time picker offers.
package slots

import "fmt"

const (
	DefaultOpeningHour = 6
	DefaultClosingHour = 18
)

// Slot is one selectable value. Value is the zero-padded 24h hour or the minute,
// Label is what the picker displays.
type Slot struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Hours returns one slot per hour from start to endInclusive, clamped to 0..23.
// An empty range yields no slots. Slots are rebuilt on every call.
func Hours(start, endInclusive int) []Slot {
	if start < 0 {
		start = 0
	}
	if endInclusive > 23 {
		endInclusive = 23
	}
	if endInclusive < start {
		return []Slot{}
	}
	out := make([]Slot, 0, endInclusive-start+1)
	for h := start; h <= endInclusive; h++ {
		out = append(out, Slot{Label: HourLabel(h), Value: Pad2(h)})
	}
	return out
}

func DefaultHours() []Slot {
	return Hours(DefaultOpeningHour, DefaultClosingHour)
}

// Minutes returns the quarter-hour slots.
func Minutes() []Slot {
	values := []string{"00", "15", "30", "45"}
	out := make([]Slot, 0, len(values))
	for _, v := range values {
		out = append(out, Slot{Label: v, Value: v})
	}
	return out
}

// HourLabel renders a 24h hour as "2 pm" style text.
func HourLabel(hour int) string {
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := "am"
	if hour >= 12 {
		ampm = "pm"
	}
	return fmt.Sprintf("%d %s", hour12, ampm)
}

// Label looks up the display text for value. The second return is false when
// no slot carries that value.
func Label(slots []Slot, value string) (string, bool) {
	for _, s := range slots {
		if s.Value == value {
			return s.Label, true
		}
	}
	return "", false
}

func Pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}
