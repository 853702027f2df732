package schedule

import (
	"strconv"
	"strings"
	"time"

	"wake_scheduler/internal/logger"
)

// WindowSpec holds the raw, unvalidated settings of one schedule set.
type WindowSpec struct {
	Start string
	End   string
	TOff  string // minutes
	TOn   string // minutes
}

// Spec is the raw schedule configuration: a static set plus one set per month.
type Spec struct {
	Monthly bool
	Static  WindowSpec
	Months  [12]WindowSpec // index 0 is January
}

// Active returns the set in effect for month.
func (s Spec) Active(month time.Month) WindowSpec {
	if s.Monthly && month >= time.January && month <= time.December {
		return s.Months[month-1]
	}
	return s.Static
}

// Window is the daily activity range. End before Start means the window
// crosses midnight.
type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Wraps reports whether the window crosses midnight.
func (w Window) Wraps() bool { return w.End.Before(w.Start) }

// Config is the validated schedule. OnDuration and OffDuration are always positive.
type Config struct {
	Window      Window        `json:"window"`
	OnDuration  time.Duration `json:"on_duration"`
	OffDuration time.Duration `json:"off_duration"`
}

// SafeConfig is used whenever the configured schedule is malformed; it keeps
// the device waking at least once every 59 minutes.
var SafeConfig = Config{
	Window:      Window{Start: TimeOfDay{Hour: 0, Minute: 1}, End: TimeOfDay{Hour: 23, Minute: 59}},
	OnDuration:  1 * time.Minute,
	OffDuration: 59 * time.Minute,
}

// Build validates the set active at now. The second result is true when the
// safe fallback replaced a malformed configuration.
func Build(spec Spec, r Resolver, now time.Time, log *logger.Logger) (Config, bool) {
	active := spec.Active(now.Month())

	start, okStart := r.Resolve(active.Start)
	end, okEnd := r.Resolve(active.End)
	off, okOff := parseMinutes(active.TOff)
	on, okOn := parseMinutes(active.TOn)

	if !okStart || !okEnd || !okOff || !okOn {
		if log != nil {
			log.Warnw("ignoring malformed schedule configuration, using safe values",
				"monthly", spec.Monthly,
				"month", int(now.Month()),
				"start", active.Start,
				"end", active.End,
				"t_off", active.TOff,
				"t_on", active.TOn,
			)
		}
		return SafeConfig, true
	}

	return Config{
		Window:      Window{Start: start, End: end},
		OnDuration:  on,
		OffDuration: off,
	}, false
}

// parseMinutes reads a whole, positive number of minutes.
func parseMinutes(s string) (time.Duration, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Minute, true
}
