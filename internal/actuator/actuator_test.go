package actuator

import (
	"errors"
	"testing"

	"github.com/jgrew/bonsaibox/internal/climate"
	"github.com/jgrew/bonsaibox/internal/relay"
)

var testMap = PinMap{
	climate.DeviceFan:        17,
	climate.DeviceHumidifier: 27,
	climate.DeviceLights:     22,
}

func TestPinMapValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       PinMap
		wantErr bool
	}{
		{"valid", testMap, false},
		{"missing device", PinMap{climate.DeviceFan: 17, climate.DeviceHumidifier: 27}, true},
		{"duplicate pin", PinMap{climate.DeviceFan: 17, climate.DeviceHumidifier: 17, climate.DeviceLights: 22}, true},
		{"negative pin", PinMap{climate.DeviceFan: -1, climate.DeviceHumidifier: 27, climate.DeviceLights: 22}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDrivesPin(t *testing.T) {
	pins := relay.NewFakePins()
	d, err := NewDriver(pins, testMap, false)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	if err := d.Set(climate.DeviceFan, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !pins.Level(17) {
		t.Error("fan pin should be high (active-high board)")
	}
	if err := d.Set(climate.DeviceFan, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if pins.Level(17) {
		t.Error("fan pin should be low after turning off")
	}
}

func TestSetActiveLow(t *testing.T) {
	pins := relay.NewFakePins()
	d, err := NewDriver(pins, testMap, true)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	if err := d.Set(climate.DeviceHumidifier, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if pins.Level(27) {
		t.Error("active-low board: on means pin low")
	}
	if err := d.Set(climate.DeviceHumidifier, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !pins.Level(27) {
		t.Error("active-low board: off means pin high")
	}
}

func TestSetIdempotent(t *testing.T) {
	pins := relay.NewFakePins()
	d, _ := NewDriver(pins, testMap, false)

	for i := 0; i < 5; i++ {
		if err := d.Set(climate.DeviceLights, true); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}
	if got := pins.WriteCount(22); got != 1 {
		t.Errorf("hardware writes = %d, want 1 (repeats are no-ops)", got)
	}
}

func TestSetWriteFailure(t *testing.T) {
	pins := relay.NewFakePins()
	d, _ := NewDriver(pins, testMap, false)

	boom := errors.New("gpio: line gone")
	pins.WriteError = boom

	err := d.Set(climate.DeviceFan, true)
	if err == nil {
		t.Fatal("expected write error")
	}
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("error type = %T, want *actuator.Error", err)
	}
	if ae.Device != climate.DeviceFan {
		t.Errorf("error device = %s, want fan", ae.Device)
	}
	if !errors.Is(err, boom) {
		t.Error("cause should unwrap to the pin error")
	}

	// After a failure the state is unknown: the next Set must write
	// through even for the same requested value.
	pins.WriteError = nil
	if err := d.Set(climate.DeviceFan, true); err != nil {
		t.Fatalf("retry Set: %v", err)
	}
	if got := pins.WriteCount(17); got != 1 {
		t.Errorf("successful writes = %d, want 1", got)
	}
}

func TestNewDriverRejectsBadMapping(t *testing.T) {
	if _, err := NewDriver(relay.NewFakePins(), PinMap{}, false); err == nil {
		t.Error("empty mapping should be rejected")
	}
}
