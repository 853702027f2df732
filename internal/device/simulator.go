package device

import (
	"context"
	"sync"
	"time"

	"wake_scheduler/internal/schedule"
)

// Simulation defaults for a single Li-ion cell.
const (
	DefaultSimStartVoltage = 4.1
	DefaultSimDrainPerHour = 0.05 // volts lost per hour awake
	SimFloorVoltage        = 2.8  // cut-off; the reading never drops below
)

// SimulatedBattery discharges linearly from Start while the process is up.
type SimulatedBattery struct {
	Start        float64
	DrainPerHour float64
	Clock        func() time.Time

	bootedAt time.Time
}

func NewSimulatedBattery(start, drainPerHour float64, clock func() time.Time) *SimulatedBattery {
	if clock == nil {
		clock = time.Now
	}
	return &SimulatedBattery{
		Start:        start,
		DrainPerHour: drainPerHour,
		Clock:        clock,
		bootedAt:     clock(),
	}
}

func (b *SimulatedBattery) ReadVoltage(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	elapsed := b.Clock().Sub(b.bootedAt).Hours()
	return maxFloat(b.Start-b.DrainPerHour*elapsed, SimFloorVoltage), nil
}

// SimulatedRTC follows the given clock in UTC and remembers the last alarm.
type SimulatedRTC struct {
	Clock func() time.Time

	mu    sync.Mutex
	alarm *schedule.TimeOfDay
}

func NewSimulatedRTC(clock func() time.Time) *SimulatedRTC {
	if clock == nil {
		clock = time.Now
	}
	return &SimulatedRTC{Clock: clock}
}

func (r *SimulatedRTC) Now(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	return r.Clock().UTC(), nil
}

func (r *SimulatedRTC) SetAlarm(ctx context.Context, at schedule.TimeOfDay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alarm = &at
	return nil
}

// Alarm returns the programmed alarm, if any.
func (r *SimulatedRTC) Alarm() (schedule.TimeOfDay, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.alarm == nil {
		return schedule.TimeOfDay{}, false
	}
	return *r.alarm, true
}

func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}
