package main

import (
	"time"

	"wake_scheduler/internal/config"
	"wake_scheduler/internal/device"
	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/schedule"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

// hardware bundles the collaborators selected by DEVICE_MODE.
type hardware struct {
	sensor schedule.VoltageSensor
	rtc    schedule.RTC
	power  device.PowerSwitch
}

func newHardware(s config.DeviceSettings, fs afero.Fs, clock func() time.Time, log *logger.Logger) hardware {
	var hw hardware
	switch s.Mode {
	case config.DeviceSysfs:
		hw.sensor = device.NewSysfsVoltageSensor(fs, s.VoltagePath, s.VoltageScale)
		hw.rtc = device.NewSysfsRTC(fs, s.RTCDir)
	default:
		hw.sensor = device.NewSimulatedBattery(s.SimStartVoltage, s.SimDrainPerHour, clock)
		hw.rtc = device.NewSimulatedRTC(clock)
	}

	if len(s.PowerOffCommand) > 0 {
		hw.power = device.CommandPowerSwitch{Args: s.PowerOffCommand}
	} else {
		hw.power = device.LogPowerSwitch{Log: log}
	}
	return hw
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	return config.Load(config.Options{
		ConfigDir: c.GlobalString("config-dir"),
		EnvFile:   c.GlobalString("env-file"),
	})
}

func utcNow() time.Time { return time.Now().UTC() }

// buildSchedule resolves the active schedule for now. The resolver is
// returned so callers can report sun times.
func buildSchedule(s config.Settings, now time.Time, log *logger.Logger) (schedule.Config, bool, schedule.Resolver) {
	resolver := schedule.NewResolver(s.Latitude, s.Longitude, func() time.Time { return now })
	cfg, fallback := schedule.Build(s.Schedule, resolver, now, log)
	return cfg, fallback, resolver
}
