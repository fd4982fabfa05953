package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Period().Seconds() != 30 {
		t.Errorf("period = %v", cfg.Period())
	}
	sp := cfg.Setpoints()
	if len(sp.LightWindows) != 1 || sp.LightWindows[0].Start != 7*60 {
		t.Errorf("light windows = %+v", sp.LightWindows)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"period_seconds": 10,
		"temp_high_c": 28,
		"light_schedule": ["06:30-20:00"],
		"fan_pin": 5,
		"humidifier_pin": 6,
		"lights_pin": 13
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PeriodSeconds != 10 || cfg.TempHighC != 28 {
		t.Errorf("overrides not applied: period=%d high=%g", cfg.PeriodSeconds, cfg.TempHighC)
	}
	// Untouched fields keep defaults.
	if cfg.DwellSeconds != 60 || cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("defaults lost: dwell=%d broker=%q", cfg.DwellSeconds, cfg.MQTTBroker)
	}
	if got := cfg.Setpoints().LightWindows[0].Start; got != 6*60+30 {
		t.Errorf("window start = %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BONSAIBOX_MQTT_BROKER", "tcp://broker.local:1883")
	t.Setenv("BONSAIBOX_PERIOD_SECONDS", "5")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://broker.local:1883" {
		t.Errorf("broker = %q", cfg.MQTTBroker)
	}
	if cfg.PeriodSeconds != 5 {
		t.Errorf("period = %d", cfg.PeriodSeconds)
	}
}

func TestEnvOverrideBadInt(t *testing.T) {
	t.Setenv("BONSAIBOX_PERIOD_SECONDS", "soon")
	if _, err := Load(""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero period", func(c *Config) { c.PeriodSeconds = 0 }},
		{"negative dwell", func(c *Config) { c.DwellSeconds = -1 }},
		{"zero sensor timeout", func(c *Config) { c.SensorTimeoutMs = 0 }},
		{"zero failure threshold", func(c *Config) { c.FailureThreshold = 0 }},
		{"zero hysteresis", func(c *Config) { c.Hysteresis = 0 }},
		{"inverted temperature range", func(c *Config) { c.TempLowC, c.TempHighC = 26, 20 }},
		{"inverted humidity range", func(c *Config) { c.HumidityLowPct, c.HumidityHighPct = 60, 40 }},
		{"humidity out of percent range", func(c *Config) { c.HumidityHighPct = 140 }},
		{"bad schedule syntax", func(c *Config) { c.LightSchedule = []string{"7am-7pm"} }},
		{"zero-length window", func(c *Config) { c.LightSchedule = []string{"07:00-07:00"} }},
		{"duplicate pins", func(c *Config) { c.HumidifierPin = c.FanPin }},
		{"negative pin", func(c *Config) { c.LightsPin = -3 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestWrappingWindowAccepted(t *testing.T) {
	cfg := Default()
	cfg.LightSchedule = []string{"22:00-06:00"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("midnight-wrapping window must validate: %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}
