// Package wizard implements the booking-option configuration wizard: the
// four-step state machine, its validation rules, the range-connection
// algorithms for age groups and price tiers, and the upstream API client.
package wizard

import "fmt"

// Weekday is the authoritative weekday enumeration for the wizard.
// Index 0 is Monday; the same ordering is used for JSON keys and for the
// day indexes sent upstream.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// Weekdays returns all weekdays in canonical order, Monday first.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalText encodes the weekday as its lowercase English name, which makes
// Weekday usable as a JSON object key.
func (d Weekday) MarshalText() ([]byte, error) {
	if d < Monday || d > Sunday {
		return nil, fmt.Errorf("wizard: invalid weekday %d", int(d))
	}
	return []byte(weekdayNames[d]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (d *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseWeekday converts a lowercase English day name to a Weekday.
func ParseWeekday(name string) (Weekday, error) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("wizard: unknown weekday %q", name)
}
