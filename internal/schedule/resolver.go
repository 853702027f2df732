package schedule

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Named solar events accepted by SolarResolver.
const (
	Sunrise = "sunrise"
	Sunset  = "sunset"
)

// Resolver turns a configured time-of-day setting into a TimeOfDay.
type Resolver interface {
	Resolve(value string) (TimeOfDay, bool)
}

// LiteralResolver accepts "HH:MM" only.
type LiteralResolver struct{}

func (LiteralResolver) Resolve(value string) (TimeOfDay, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeOfDay{}, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeOfDay{}, false
	}
	t, err := NewTimeOfDay(hour, minute, 0)
	if err != nil {
		return TimeOfDay{}, false
	}
	return t, true
}

// SolarResolver resolves "sunrise" and "sunset" for today's UTC date at a
// fixed location and parses anything else as a literal.
type SolarResolver struct {
	Latitude  float64
	Longitude float64
	Clock     func() time.Time
}

func (r SolarResolver) Resolve(value string) (TimeOfDay, bool) {
	if value == Sunrise || value == Sunset {
		rise, set := r.SunTimes()
		event := rise
		if value == Sunset {
			event = set
		}
		// Zero means the sun does not rise or set today at this latitude.
		if !event.IsZero() {
			return ClockOf(event.UTC()), true
		}
	}
	return LiteralResolver{}.Resolve(value)
}

// SunTimes returns today's sunrise and sunset in UTC.
func (r SolarResolver) SunTimes() (time.Time, time.Time) {
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	y, m, d := clock().UTC().Date()
	return sunrise.SunriseSunset(r.Latitude, r.Longitude, y, m, d)
}

// NewResolver picks SolarResolver when both coordinates are usable and
// LiteralResolver otherwise.
func NewResolver(latitude, longitude string, clock func() time.Time) Resolver {
	lat, ok := parseCoordinate(latitude, 90)
	if !ok {
		return LiteralResolver{}
	}
	lon, ok := parseCoordinate(longitude, 180)
	if !ok {
		return LiteralResolver{}
	}
	return SolarResolver{Latitude: lat, Longitude: lon, Clock: clock}
}

func parseCoordinate(s string, limit float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}
