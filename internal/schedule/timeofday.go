package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock value without a date component.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// NewTimeOfDay validates the fields and builds a TimeOfDay.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("minute %d out of range 0-59", minute)
	}
	if second < 0 || second > 59 {
		return TimeOfDay{}, fmt.Errorf("second %d out of range 0-59", second)
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, nil
}

// ClockOf returns the time of day of t in t's location, dropping sub-second precision.
func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay{Hour: h, Minute: m, Second: s}
}

// Offset is the span since midnight.
func (t TimeOfDay) Offset() time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second
}

// Before reports whether t is earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t.Offset() < u.Offset() }

// On places t on the calendar day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, mo, d := ref.Date()
	return time.Date(y, mo, d, t.Hour, t.Minute, t.Second, 0, ref.Location())
}

// Next returns the first instant strictly after ref whose clock reads t.
func (t TimeOfDay) Next(ref time.Time) time.Time {
	candidate := t.On(ref)
	if !candidate.After(ref) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// MarshalText renders HH:MM:SS.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts HH:MM or HH:MM:SS.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if parsed, err := time.Parse(layout, string(b)); err == nil {
			*t = ClockOf(parsed)
			return nil
		}
	}
	return fmt.Errorf("invalid time of day %q", string(b))
}

// sinceMidnight keeps the sub-second part so that comparisons against window
// bounds stay strict.
func sinceMidnight(t time.Time) time.Duration {
	return ClockOf(t).Offset() + time.Duration(t.Nanosecond())
}
