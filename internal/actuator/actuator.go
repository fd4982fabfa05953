// Package actuator drives relay-backed devices by logical name. It maps
// devices to relay pins, handles active-low boards, and skips hardware
// writes that would not change anything.
package actuator

import (
	"errors"
	"fmt"

	"github.com/jgrew/bonsaibox/internal/climate"
	"github.com/jgrew/bonsaibox/internal/relay"
)

// Error is a failed relay write for a named device.
type Error struct {
	Device climate.Device
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("write %s relay: %v", e.Device, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// PinMap assigns a BCM pin to each controlled device.
type PinMap map[climate.Device]int

// Pins returns the mapped pin numbers in device order.
func (m PinMap) Pins() []int {
	var pins []int
	for _, d := range climate.Devices() {
		pins = append(pins, m[d])
	}
	return pins
}

// Validate checks that every device has a distinct pin.
func (m PinMap) Validate() error {
	seen := make(map[int]climate.Device)
	for _, d := range climate.Devices() {
		pin, ok := m[d]
		if !ok {
			return fmt.Errorf("no pin mapped for %s", d)
		}
		if pin < 0 {
			return fmt.Errorf("%s: pin %d is negative", d, pin)
		}
		if prev, dup := seen[pin]; dup {
			return fmt.Errorf("pin %d mapped to both %s and %s", pin, prev, d)
		}
		seen[pin] = d
	}
	return nil
}

// Driver sets relay-backed devices on or off.
//
// Set is idempotent: asking for the state that was last written succeeds
// without touching the hardware. The driver does not reconcile desired vs
// actual beyond the single write; that is the control loop's job.
type Driver struct {
	pins      relay.Pins
	mapping   PinMap
	activeLow bool

	// last successfully written state per device; nil entry = unknown,
	// forcing the next Set to write through.
	written map[climate.Device]*bool
}

// NewDriver validates the mapping and returns a driver. Most relay boards
// are active-low: the relay energizes when the input pin is pulled low.
func NewDriver(pins relay.Pins, mapping PinMap, activeLow bool) (*Driver, error) {
	if err := mapping.Validate(); err != nil {
		return nil, fmt.Errorf("pin mapping: %w", err)
	}
	return &Driver{
		pins:      pins,
		mapping:   mapping,
		activeLow: activeLow,
		written:   make(map[climate.Device]*bool),
	}, nil
}

// Set drives the device's relay to the requested state.
func (d *Driver) Set(dev climate.Device, on bool) error {
	pin, ok := d.mapping[dev]
	if !ok {
		return &Error{Device: dev, Cause: errors.New("device not mapped")}
	}

	if last := d.written[dev]; last != nil && *last == on {
		return nil
	}

	high := on != d.activeLow
	if err := d.pins.WritePin(pin, high); err != nil {
		// Hardware state is now unknown; force a write-through next time.
		d.written[dev] = nil
		return &Error{Device: dev, Cause: err}
	}

	v := on
	d.written[dev] = &v
	return nil
}

// Close releases the underlying pins.
func (d *Driver) Close() error { return d.pins.Close() }
