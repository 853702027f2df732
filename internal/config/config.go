package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"wake_scheduler/internal/device"
	"wake_scheduler/internal/logger"
	"wake_scheduler/internal/schedule"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Device modes.
const (
	DeviceSysfs     = "sysfs"
	DeviceSimulated = "simulated"
)

// Schedule defaults, shared by the static set and every month.
const (
	defaultStart = "08:00"
	defaultEnd   = "18:00"
	defaultTOff  = "35"
	defaultTOn   = "15"
)

// Settings is everything the daemon reads at start-up.
type Settings struct {
	Schedule   schedule.Spec
	Latitude   string
	Longitude  string
	Thresholds schedule.VoltageThresholds

	LogLevel     string
	TickInterval time.Duration

	HTTPHost string
	HTTPPort string
	DBPath   string

	Auth   AuthSettings
	Device DeviceSettings

	// Warnings collects non-fatal problems found while loading; they are
	// logged once the logger exists.
	Warnings []string
}

type AuthSettings struct {
	SigningKey  string
	TokenTTL    time.Duration
	SignUpToken string
}

// minTickInterval bounds the supervisor loop.
const minTickInterval = time.Second

// HTTPAddr is the maintenance API listen address, or "" when the API is off.
// A port that already names a host wins over HTTPHost.
func (s Settings) HTTPAddr() string {
	if s.HTTPPort == "" {
		return ""
	}
	if strings.Contains(s.HTTPPort, ":") {
		return s.HTTPPort
	}
	return net.JoinHostPort(s.HTTPHost, s.HTTPPort)
}

type DeviceSettings struct {
	Mode            string
	VoltagePath     string
	VoltageScale    float64
	RTCDir          string
	PowerOffCommand []string
	SimStartVoltage float64
	SimDrainPerHour float64
}

// Options locate the optional config file and .env file.
type Options struct {
	ConfigDir string // holds config.yml; empty means "configs"
	EnvFile   string // empty means ".env"
}

// Load reads defaults, then config.yml, then the .env file and the process
// environment. Missing files are not an error.
func Load(opts Options) (Settings, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := newViper()
	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = "configs"
	}
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// A variable set to "" counts as set: an empty schedule field is malformed
	// and an empty HTTP_PORT disables the API.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.monthly", "0")
	for _, prefix := range schedulePrefixes() {
		v.SetDefault(prefix+".start", defaultStart)
		v.SetDefault(prefix+".end", defaultEnd)
		v.SetDefault(prefix+".t_off", defaultTOff)
		v.SetDefault(prefix+".t_on", defaultTOn)
	}
	v.SetDefault("power.threshold_half", "0")
	v.SetDefault("power.threshold_quart", "0")

	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("tick.interval", "5s")
	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", "8080")
	v.SetDefault("db.path", "wake_scheduler.db")
	v.SetDefault("auth.token_ttl", "1h")

	v.SetDefault("device.mode", DeviceSimulated)
	v.SetDefault("device.voltage_path", device.DefaultVoltagePath)
	v.SetDefault("device.voltage_scale", device.DefaultVoltageScale)
	v.SetDefault("device.rtc_path", device.DefaultRTCDir)
	v.SetDefault("device.poweroff_command", "")
	v.SetDefault("device.sim.start_voltage", device.DefaultSimStartVoltage)
	v.SetDefault("device.sim.drain_per_hour", device.DefaultSimDrainPerHour)
}

// schedulePrefixes lists "schedule" followed by "schedule.month1".."schedule.month12".
func schedulePrefixes() []string {
	out := []string{"schedule"}
	for m := 1; m <= 12; m++ {
		out = append(out, fmt.Sprintf("schedule.month%d", m))
	}
	return out
}

func windowSpec(v *viper.Viper, prefix string) schedule.WindowSpec {
	return schedule.WindowSpec{
		Start: v.GetString(prefix + ".start"),
		End:   v.GetString(prefix + ".end"),
		TOff:  v.GetString(prefix + ".t_off"),
		TOn:   v.GetString(prefix + ".t_on"),
	}
}

func fromViper(v *viper.Viper) (Settings, error) {
	var s Settings

	s.Schedule.Monthly = v.GetString("schedule.monthly") == "1" || v.GetString("schedule.monthly") == "true"
	s.Schedule.Static = windowSpec(v, "schedule")
	for m := 1; m <= 12; m++ {
		s.Schedule.Months[m-1] = windowSpec(v, fmt.Sprintf("schedule.month%d", m))
	}
	s.Latitude = v.GetString("latitude")
	s.Longitude = v.GetString("longitude")
	s.Thresholds = schedule.VoltageThresholds{
		Half:    lenientFloat(v, "power.threshold_half", &s.Warnings),
		Quarter: lenientFloat(v, "power.threshold_quart", &s.Warnings),
	}

	s.LogLevel = v.GetString("log.level")
	tick, err := tickInterval(v.Get("tick.interval"))
	if err != nil {
		return Settings{}, err
	}
	s.TickInterval = tick

	s.HTTPHost = v.GetString("http.host")
	s.HTTPPort = v.GetString("http.port")
	s.DBPath = v.GetString("db.path")

	s.Auth.SigningKey = v.GetString("auth.signing_key")
	s.Auth.SignUpToken = v.GetString("auth.signup_token")
	ttl, err := cast.ToDurationE(v.Get("auth.token_ttl"))
	if err != nil || ttl <= 0 {
		return Settings{}, fmt.Errorf("invalid AUTH_TOKEN_TTL %q", v.GetString("auth.token_ttl"))
	}
	s.Auth.TokenTTL = ttl

	s.Device.Mode = strings.ToLower(strings.TrimSpace(v.GetString("device.mode")))
	switch s.Device.Mode {
	case DeviceSysfs, DeviceSimulated:
	default:
		return Settings{}, fmt.Errorf("invalid DEVICE_MODE %q: want %s or %s", s.Device.Mode, DeviceSysfs, DeviceSimulated)
	}
	s.Device.VoltagePath = v.GetString("device.voltage_path")
	s.Device.VoltageScale = lenientFloat(v, "device.voltage_scale", &s.Warnings)
	s.Device.RTCDir = v.GetString("device.rtc_path")
	s.Device.PowerOffCommand = strings.Fields(v.GetString("device.poweroff_command"))
	s.Device.SimStartVoltage = lenientFloat(v, "device.sim.start_voltage", &s.Warnings)
	s.Device.SimDrainPerHour = lenientFloat(v, "device.sim.drain_per_hour", &s.Warnings)

	return s, nil
}

// tickInterval reads a duration such as "5s"; a bare number counts seconds.
func tickInterval(raw any) (time.Duration, error) {
	str := strings.TrimSpace(cast.ToString(raw))
	var (
		tick time.Duration
		err  error
	)
	if n, aerr := strconv.Atoi(str); aerr == nil {
		tick = time.Duration(n) * time.Second
	} else {
		tick, err = cast.ToDurationE(str)
	}
	if err != nil || tick < minTickInterval {
		return 0, fmt.Errorf("invalid TICK_INTERVAL %q: want a duration of at least %s", str, minTickInterval)
	}
	return tick, nil
}

// lenientFloat reads a float and treats malformed input as 0.
func lenientFloat(v *viper.Viper, key string, warnings *[]string) float64 {
	raw := v.Get(key)
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("ignoring malformed %s=%q, using 0", envName(key), cast.ToString(raw)))
		return 0
	}
	return f
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
