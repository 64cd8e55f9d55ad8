package budget

import (
	"time"
)

// =============================================================================
// DAY - Calendar-day time abstraction
// =============================================================================

// Day is a calendar day. The engine never reasons about anything finer:
// a spend belongs to a day, an allowance is computed for a day, and a
// day-boundary crossing is Day inequality.
//
// Days are stored normalized to midnight UTC of their year/month/day.
// Timezone awareness lives at the boundary: DayOf converts a wall-clock
// instant to the calendar day it falls on in the given location, at the
// moment of the call.
type Day struct {
	Time time.Time
}

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day the instant t falls on in loc.
// A nil loc means local time.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return NewDay(t.Year(), t.Month(), t.Day())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.normalize().Before(other.normalize()) }
func (d Day) Equal(other Day) bool         { return d.normalize().Equal(other.normalize()) }
func (d Day) After(other Day) bool         { return d.normalize().After(other.normalize()) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

func (d Day) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.normalize().AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int         { return d.Time.Year() }
func (d Day) Month() time.Month { return d.Time.Month() }
func (d Day) Day() int          { return d.Time.Day() }
func (d Day) IsZero() bool      { return d.Time.IsZero() }

func (d Day) String() string { return d.normalize().Format("2006-01-02") }

// ParseDay parses a day in 2006-01-02 form.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return NewDay(t.Year(), t.Month(), t.Day()), nil
}

// MarshalJSON implements json.Marshaler, emitting the 2006-01-02 form.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed number of calendar days from one day to
// the other. Zero when the days are equal.
func DaysBetween(from, to Day) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// Clock supplies the current instant. Injected so day-boundary behavior is
// fully testable without wall-clock side effects.
type Clock func() time.Time
