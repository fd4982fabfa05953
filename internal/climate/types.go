// Package climate contains pure decision logic for the bonsai enclosure.
// This package has NO external dependencies (no I2C, GPIO, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package climate

import "time"

// Device identifies a relay-controlled device in the enclosure.
type Device string

const (
	DeviceFan        Device = "fan"
	DeviceHumidifier Device = "humidifier"
	DeviceLights     Device = "lights"
)

// Devices returns all controlled devices in a fixed order.
func Devices() []Device {
	return []Device{DeviceFan, DeviceHumidifier, DeviceLights}
}

// Sensor plausibility bounds. Readings outside these are rejected before
// they reach the policy.
const (
	MinTemperatureC = -40.0
	MaxTemperatureC = 125.0
	MinHumidityPct  = 0.0
	MaxHumidityPct  = 100.0
)

// Reading is a single validated temperature/humidity sample.
// Immutable once created.
type Reading struct {
	TemperatureC float64
	HumidityPct  float64
	Time         time.Time
}

// Plausible reports whether the reading is within sensor plausibility bounds.
func (r Reading) Plausible() bool {
	return r.TemperatureC >= MinTemperatureC && r.TemperatureC <= MaxTemperatureC &&
		r.HumidityPct >= MinHumidityPct && r.HumidityPct <= MaxHumidityPct
}

// Setpoints holds the target bands and light schedule. Loaded once from
// configuration and read-only afterwards.
type Setpoints struct {
	TempLowC        float64
	TempHighC       float64
	HumidityLowPct  float64
	HumidityHighPct float64
	LightWindows    []Window
}

// ActuatorState is the loop-owned on/off state of all devices, with the
// time each device last changed state (for dwell enforcement).
type ActuatorState struct {
	Fan        bool
	Humidifier bool
	Lights     bool

	FanChanged        time.Time
	HumidifierChanged time.Time
	LightsChanged     time.Time
}

// On returns the current state of the given device.
func (s ActuatorState) On(d Device) bool {
	switch d {
	case DeviceFan:
		return s.Fan
	case DeviceHumidifier:
		return s.Humidifier
	case DeviceLights:
		return s.Lights
	}
	return false
}

// LastChanged returns the time the given device last changed state.
// The zero time means the device has never been driven.
func (s ActuatorState) LastChanged(d Device) time.Time {
	switch d {
	case DeviceFan:
		return s.FanChanged
	case DeviceHumidifier:
		return s.HumidifierChanged
	case DeviceLights:
		return s.LightsChanged
	}
	return time.Time{}
}

// Set records a new state for the given device at the given time.
func (s *ActuatorState) Set(d Device, on bool, now time.Time) {
	switch d {
	case DeviceFan:
		s.Fan = on
		s.FanChanged = now
	case DeviceHumidifier:
		s.Humidifier = on
		s.HumidifierChanged = now
	case DeviceLights:
		s.Lights = on
		s.LightsChanged = now
	}
}

// DeviceDecision is the desired state of one device plus the reason for it.
type DeviceDecision struct {
	On     bool
	Reason string
}

// Decision is the output of one policy evaluation: a desired state per
// device. Ephemeral, one per cycle.
type Decision struct {
	Fan        DeviceDecision
	Humidifier DeviceDecision
	Lights     DeviceDecision
}

// For returns the decision for the given device.
func (d Decision) For(dev Device) DeviceDecision {
	switch dev {
	case DeviceFan:
		return d.Fan
	case DeviceHumidifier:
		return d.Humidifier
	case DeviceLights:
		return d.Lights
	}
	return DeviceDecision{}
}

// Mode is the loop's health state. Kept as an explicit tagged value rather
// than boolean flags so the fail-safe override is a single branch.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDegraded
	ModeFailSafe
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeDegraded:
		return "DEGRADED"
	case ModeFailSafe:
		return "FAILSAFE"
	}
	return "UNKNOWN"
}
