// Package config loads and validates daemon configuration from a JSON file
// with environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jgrew/bonsaibox/internal/actuator"
	"github.com/jgrew/bonsaibox/internal/climate"
)

// ErrInvalid marks a configuration the daemon refuses to start with.
var ErrInvalid = errors.New("invalid configuration")

// Config is the daemon configuration. Zero values are filled from defaults
// on load; the struct is read-only after Validate.
type Config struct {
	PeriodSeconds    int     `json:"period_seconds"`
	DwellSeconds     int     `json:"dwell_seconds"`
	SensorTimeoutMs  int     `json:"sensor_timeout_ms"`
	FailureThreshold int     `json:"failure_threshold"`
	Hysteresis       float64 `json:"hysteresis"`
	HeartbeatCycles  int     `json:"heartbeat_cycles"`

	TempLowC        float64 `json:"temp_low_c"`
	TempHighC       float64 `json:"temp_high_c"`
	HumidityLowPct  float64 `json:"humidity_low_pct"`
	HumidityHighPct float64 `json:"humidity_high_pct"`

	// LightSchedule is a list of "HH:MM-HH:MM" windows. A window whose end
	// is not after its start wraps midnight.
	LightSchedule []string `json:"light_schedule"`

	I2CBus   string `json:"i2c_bus"`
	GPIOChip string `json:"gpio_chip"`

	FanPin          int  `json:"fan_pin"`
	HumidifierPin   int  `json:"humidifier_pin"`
	LightsPin       int  `json:"lights_pin"`
	ActiveLowRelays bool `json:"active_low_relays"`

	MQTTBroker   string `json:"mqtt_broker"`
	MQTTClientID string `json:"mqtt_client_id"`
	HTTPAddr     string `json:"http_addr"`
	LogLevel     string `json:"log_level"`

	windows []climate.Window
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		PeriodSeconds:    30,
		DwellSeconds:     60,
		SensorTimeoutMs:  2000,
		FailureThreshold: 5,
		Hysteresis:       1.0,
		HeartbeatCycles:  20,
		TempLowC:         20,
		TempHighC:        26,
		HumidityLowPct:   40,
		HumidityHighPct:  60,
		LightSchedule:    []string{"07:00-19:00"},
		I2CBus:           "1",
		GPIOChip:         "gpiochip0",
		FanPin:           17,
		HumidifierPin:    27,
		LightsPin:        22,
		ActiveLowRelays:  true,
		MQTTBroker:       "tcp://localhost:1883",
		MQTTClientID:     "bonsaibox",
		HTTPAddr:         ":8080",
		LogLevel:         "info",
	}
}

// Load reads the config file at path, fills unset fields from defaults,
// applies environment overrides, and validates. An empty path loads
// defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment overrides, BONSAIBOX_ prefix. Only the knobs that differ
// between deployments; everything else belongs in the file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("BONSAIBOX_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("BONSAIBOX_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}
	if v := os.Getenv("BONSAIBOX_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("BONSAIBOX_I2C_BUS"); v != "" {
		c.I2CBus = v
	}
	if v := os.Getenv("BONSAIBOX_GPIO_CHIP"); v != "" {
		c.GPIOChip = v
	}
	if v := os.Getenv("BONSAIBOX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BONSAIBOX_PERIOD_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: BONSAIBOX_PERIOD_SECONDS=%q: %v", ErrInvalid, v, err)
		}
		c.PeriodSeconds = n
	}
	return nil
}

// Validate checks the configuration and caches the parsed light schedule.
// Any error here is fatal at startup.
func (c *Config) Validate() error {
	if c.PeriodSeconds <= 0 {
		return fmt.Errorf("%w: period_seconds %d must be positive", ErrInvalid, c.PeriodSeconds)
	}
	if c.DwellSeconds <= 0 {
		return fmt.Errorf("%w: dwell_seconds %d must be positive", ErrInvalid, c.DwellSeconds)
	}
	if c.SensorTimeoutMs <= 0 {
		return fmt.Errorf("%w: sensor_timeout_ms %d must be positive", ErrInvalid, c.SensorTimeoutMs)
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("%w: failure_threshold %d must be at least 1", ErrInvalid, c.FailureThreshold)
	}
	if c.HeartbeatCycles < 0 {
		return fmt.Errorf("%w: heartbeat_cycles %d must not be negative", ErrInvalid, c.HeartbeatCycles)
	}

	c.windows = c.windows[:0]
	for _, s := range c.LightSchedule {
		w, err := climate.ParseWindow(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		c.windows = append(c.windows, w)
	}

	sp := c.Setpoints()
	if err := sp.Validate(c.Hysteresis); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.PinMap().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q: want debug, info, warn, or error", ErrInvalid, c.LogLevel)
	}
	return nil
}

// Setpoints returns the control setpoints. Valid after Validate.
func (c *Config) Setpoints() climate.Setpoints {
	return climate.Setpoints{
		TempLowC:        c.TempLowC,
		TempHighC:       c.TempHighC,
		HumidityLowPct:  c.HumidityLowPct,
		HumidityHighPct: c.HumidityHighPct,
		LightWindows:    c.windows,
	}
}

// PinMap returns the device to relay pin mapping.
func (c *Config) PinMap() actuator.PinMap {
	return actuator.PinMap{
		climate.DeviceFan:        c.FanPin,
		climate.DeviceHumidifier: c.HumidifierPin,
		climate.DeviceLights:     c.LightsPin,
	}
}

// Period returns the control cycle period.
func (c *Config) Period() time.Duration {
	return time.Duration(c.PeriodSeconds) * time.Second
}

// Dwell returns the per-actuator minimum dwell time.
func (c *Config) Dwell() time.Duration {
	return time.Duration(c.DwellSeconds) * time.Second
}

// SensorTimeout returns the bounded sensor read timeout.
func (c *Config) SensorTimeout() time.Duration {
	return time.Duration(c.SensorTimeoutMs) * time.Millisecond
}

// SlogLevel returns the configured log level. Valid after Validate.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
