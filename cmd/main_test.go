package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wake_scheduler/internal/config"
	"wake_scheduler/internal/device"
	"wake_scheduler/internal/logger"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSchedule(t *testing.T, env map[string]string) {
	t.Helper()
	base := map[string]string{
		"SCHEDULE_MONTHLY":      "0",
		"SCHEDULE_START":        "09:00",
		"SCHEDULE_END":          "17:00",
		"SCHEDULE_T_ON":         "15",
		"SCHEDULE_T_OFF":        "35",
		"POWER_THRESHOLD_HALF":  "3.3",
		"POWER_THRESHOLD_QUART": "3.0",
		"LATITUDE":              "",
		"LONGITUDE":             "",
	}
	for k, v := range env {
		base[k] = v
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	full := append([]string{appName, "--config-dir", dir, "--env-file", filepath.Join(dir, ".env")}, args...)
	err := app.Run(full)
	return out.String(), err
}

func TestPlan_PrintsWakeDecision(t *testing.T) {
	setSchedule(t, nil)

	out, err := runApp(t, "plan", "--at", "2025-05-14T10:15:00Z", "--voltage", "3.2")
	require.NoError(t, err)

	assert.Contains(t, out, "window:    09:00:00 - 17:00:00")
	assert.Contains(t, out, "fallback:  false")
	assert.Contains(t, out, "(half)")
	assert.Contains(t, out, "sleep:     1h10m0s")
	assert.Contains(t, out, "in window: true")
	assert.Contains(t, out, "wake at:   11:25:00")
	assert.NotContains(t, out, "sunrise")
}

func TestPlan_OutsideWindowWakesAtStart(t *testing.T) {
	setSchedule(t, nil)

	out, err := runApp(t, "plan", "--at", "2025-05-14T20:00:00Z", "--voltage", "4.0")
	require.NoError(t, err)

	assert.Contains(t, out, "in window: false")
	assert.Contains(t, out, "wake at:   09:00:00")
}

func TestPlan_MalformedScheduleFallsBack(t *testing.T) {
	setSchedule(t, map[string]string{"SCHEDULE_T_ON": "soon"})

	out, err := runApp(t, "plan", "--at", "2025-05-14T10:15:00Z", "--voltage", "4.0")
	require.NoError(t, err)

	assert.Contains(t, out, "window:    00:01:00 - 23:59:00")
	assert.Contains(t, out, "fallback:  true")
	assert.Contains(t, out, "wake at:   11:14:00")
}

func TestPlan_SolarScheduleReportsSunTimes(t *testing.T) {
	setSchedule(t, map[string]string{
		"SCHEDULE_START": "sunrise",
		"SCHEDULE_END":   "sunset",
		"LATITUDE":       "52.52",
		"LONGITUDE":      "13.405",
	})

	out, err := runApp(t, "plan", "--at", "2025-05-14T12:00:00Z", "--voltage", "4.0")
	require.NoError(t, err)

	assert.Contains(t, out, "sunrise:   2025-05-14T")
	assert.Contains(t, out, "sunset:    2025-05-14T")
	assert.Contains(t, out, "fallback:  false")
}

func TestPlan_RejectsBadTime(t *testing.T) {
	setSchedule(t, nil)

	_, err := runApp(t, "plan", "--at", "noon", "--voltage", "4.0")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "RFC3339"))
}

func TestPlan_ReadsSimulatedSensorWhenVoltageOmitted(t *testing.T) {
	setSchedule(t, map[string]string{
		"DEVICE_MODE":              config.DeviceSimulated,
		"DEVICE_SIM_START_VOLTAGE": "2.9",
	})

	out, err := runApp(t, "plan", "--at", "2025-05-14T10:15:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "(half)")
}

func TestNewHardware(t *testing.T) {
	fs := afero.NewMemMapFs()
	clock := func() time.Time { return time.Date(2025, time.May, 14, 10, 0, 0, 0, time.UTC) }

	hw := newHardware(config.DeviceSettings{Mode: config.DeviceSysfs, VoltagePath: "/v", RTCDir: "/rtc", VoltageScale: 1}, fs, clock, logger.Nop())
	assert.IsType(t, &device.SysfsVoltageSensor{}, hw.sensor)
	assert.IsType(t, &device.SysfsRTC{}, hw.rtc)
	assert.IsType(t, device.LogPowerSwitch{}, hw.power)

	hw = newHardware(config.DeviceSettings{Mode: config.DeviceSimulated, SimStartVoltage: 4.1, PowerOffCommand: []string{"systemctl", "poweroff"}}, fs, clock, logger.Nop())
	assert.IsType(t, &device.SimulatedBattery{}, hw.sensor)
	assert.IsType(t, &device.SimulatedRTC{}, hw.rtc)
	assert.Equal(t, device.CommandPowerSwitch{Args: []string{"systemctl", "poweroff"}}, hw.power)
}
