package climate

import (
	"fmt"
	"time"
)

// Reason strings attached to decisions. Held states reuse the hold reasons
// so repeated identical readings produce identical decisions.
const (
	ReasonTempAboveHigh  = "temperature above high setpoint"
	ReasonTempBelowBand  = "temperature below hysteresis band"
	ReasonTempInBand     = "temperature within hysteresis band, holding"
	ReasonHumidityLow    = "humidity below low threshold"
	ReasonHumidityAbove  = "humidity above hysteresis band"
	ReasonHumidityInBand = "humidity within hysteresis band, holding"
	ReasonScheduleOn     = "inside light schedule"
	ReasonScheduleOff    = "outside light schedule"

	ReasonFailSafeFan        = "fail-safe: passive ventilation"
	ReasonFailSafeHumidifier = "fail-safe: humidifier forced off"
	ReasonFailSafeLights     = "fail-safe: lights forced off"
)

// Decide maps one reading to a desired actuator state. Pure: same inputs,
// same output, no matter how often it is invoked.
//
// Fan and humidifier use a hysteresis thermostat with strict compares, so a
// reading exactly at a threshold holds the current state. Lights are purely
// schedule-driven.
func Decide(r Reading, sp Setpoints, current ActuatorState, now time.Time, hysteresis float64) Decision {
	var d Decision

	switch {
	case r.TemperatureC > sp.TempHighC:
		d.Fan = DeviceDecision{On: true, Reason: ReasonTempAboveHigh}
	case r.TemperatureC < sp.TempHighC-hysteresis:
		d.Fan = DeviceDecision{On: false, Reason: ReasonTempBelowBand}
	default:
		d.Fan = DeviceDecision{On: current.Fan, Reason: ReasonTempInBand}
	}

	switch {
	case r.HumidityPct < sp.HumidityLowPct:
		d.Humidifier = DeviceDecision{On: true, Reason: ReasonHumidityLow}
	case r.HumidityPct > sp.HumidityLowPct+hysteresis:
		d.Humidifier = DeviceDecision{On: false, Reason: ReasonHumidityAbove}
	default:
		d.Humidifier = DeviceDecision{On: current.Humidifier, Reason: ReasonHumidityInBand}
	}

	if InAnyWindow(sp.LightWindows, now) {
		d.Lights = DeviceDecision{On: true, Reason: ReasonScheduleOn}
	} else {
		d.Lights = DeviceDecision{On: false, Reason: ReasonScheduleOff}
	}

	return d
}

// FailSafeDecision is the fixed conservative actuator set applied when
// sensing is unreliable: fan on for ventilation, humidifier and lights off.
// Not delegated to Decide; safety overrides comfort.
func FailSafeDecision() Decision {
	return Decision{
		Fan:        DeviceDecision{On: true, Reason: ReasonFailSafeFan},
		Humidifier: DeviceDecision{On: false, Reason: ReasonFailSafeHumidifier},
		Lights:     DeviceDecision{On: false, Reason: ReasonFailSafeLights},
	}
}

// Validate checks that the setpoints describe a usable band.
func (sp Setpoints) Validate(hysteresis float64) error {
	if sp.TempLowC >= sp.TempHighC {
		return fmt.Errorf("temperature range (%g, %g): low must be below high", sp.TempLowC, sp.TempHighC)
	}
	if sp.HumidityLowPct >= sp.HumidityHighPct {
		return fmt.Errorf("humidity range (%g, %g): low must be below high", sp.HumidityLowPct, sp.HumidityHighPct)
	}
	if sp.HumidityLowPct < MinHumidityPct || sp.HumidityHighPct > MaxHumidityPct {
		return fmt.Errorf("humidity range (%g, %g): must be within [0, 100]", sp.HumidityLowPct, sp.HumidityHighPct)
	}
	if hysteresis <= 0 {
		return fmt.Errorf("hysteresis margin %g: must be positive", hysteresis)
	}
	return nil
}
