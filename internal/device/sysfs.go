package device

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"wake_scheduler/internal/schedule"

	"github.com/spf13/afero"
)

// Default sysfs locations on a Linux board.
const (
	DefaultVoltagePath  = "/sys/class/power_supply/battery/voltage_now"
	DefaultVoltageScale = 1e-6 // voltage_now is reported in microvolts
	DefaultRTCDir       = "/sys/class/rtc/rtc0"

	rtcEpochFile = "since_epoch"
	rtcAlarmFile = "wakealarm"
)

var errEmptyReading = errors.New("empty sysfs reading")

// SysfsVoltageSensor reads a numeric attribute (power_supply or hwmon) and
// scales it to volts.
type SysfsVoltageSensor struct {
	Fs    afero.Fs
	Path  string
	Scale float64
}

func NewSysfsVoltageSensor(fs afero.Fs, p string, scale float64) *SysfsVoltageSensor {
	if p == "" {
		p = DefaultVoltagePath
	}
	if scale == 0 {
		scale = DefaultVoltageScale
	}
	return &SysfsVoltageSensor{Fs: fs, Path: p, Scale: scale}
}

func (s *SysfsVoltageSensor) ReadVoltage(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := readAttr(s.Fs, s.Path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse voltage %q from %s: %w", raw, s.Path, err)
	}
	return v * s.Scale, nil
}

// SysfsRTC talks to the kernel RTC class interface. The RTC keeps UTC.
type SysfsRTC struct {
	Fs  afero.Fs
	Dir string
}

func NewSysfsRTC(fs afero.Fs, dir string) *SysfsRTC {
	if dir == "" {
		dir = DefaultRTCDir
	}
	return &SysfsRTC{Fs: fs, Dir: dir}
}

func (r *SysfsRTC) Now(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	p := path.Join(r.Dir, rtcEpochFile)
	raw, err := readAttr(r.Fs, p)
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse rtc epoch %q: %w", raw, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// SetAlarm programs wakealarm with the next UTC occurrence of at. The kernel
// rejects a new alarm while one is pending, so it is cleared first.
func (r *SysfsRTC) SetAlarm(ctx context.Context, at schedule.TimeOfDay) error {
	now, err := r.Now(ctx)
	if err != nil {
		return err
	}
	p := path.Join(r.Dir, rtcAlarmFile)
	if err := afero.WriteFile(r.Fs, p, []byte("0\n"), 0o644); err != nil {
		return fmt.Errorf("clear %s: %w", p, err)
	}
	epoch := at.Next(now).Unix()
	if err := afero.WriteFile(r.Fs, p, []byte(strconv.FormatInt(epoch, 10)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func readAttr(fs afero.Fs, p string) (string, error) {
	b, err := afero.ReadFile(fs, p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("%s: %w", p, errEmptyReading)
	}
	return s, nil
}
