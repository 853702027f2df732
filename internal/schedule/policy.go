package schedule

import "time"

// VoltageThresholds drive the sleep backoff. Both default to 0, which
// disables it for any positive reading.
type VoltageThresholds struct {
	Half    float64 `json:"half"`
	Quarter float64 `json:"quarter"`
}

// Tier is the multiplier applied to the sleep duration.
type Tier int

const (
	TierNormal  Tier = 1
	TierHalf    Tier = 2
	TierQuarter Tier = 4
)

func (t Tier) String() string {
	switch t {
	case TierHalf:
		return "half"
	case TierQuarter:
		return "quarter"
	default:
		return "normal"
	}
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Adapt scales base by the first matching tier. The half threshold is checked
// first, so the quarter tier only fires when Quarter > Half.
func Adapt(base time.Duration, voltage float64, th VoltageThresholds) (time.Duration, Tier) {
	tier := TierNormal
	switch {
	case !(voltage > th.Half):
		tier = TierHalf
	case !(voltage > th.Quarter):
		tier = TierQuarter
	}
	return base * time.Duration(tier), tier
}
