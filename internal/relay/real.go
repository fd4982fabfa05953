//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPins drives relay pins through the Linux GPIO character device.
type RealPins struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealPins opens the chip and requests every pin as an output, driven
// to the given initial level (the relay board's "off" level) so a restart
// never leaves relays in whatever state the previous process abandoned.
func NewRealPins(chipName string, pins []int, initialHigh bool) (*RealPins, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %q: %w", chipName, err)
	}

	initial := 0
	if initialHigh {
		initial = 1
	}

	lines := make(map[int]*gpiocdev.Line, len(pins))
	for _, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(initial))
		if err != nil {
			for _, l := range lines {
				l.Close()
			}
			chip.Close()
			return nil, fmt.Errorf("request output pin %d: %w", pin, err)
		}
		lines[pin] = line
	}

	return &RealPins{chip: chip, lines: lines}, nil
}

// WritePin drives the given pin high or low.
func (r *RealPins) WritePin(pin int, high bool) error {
	line, ok := r.lines[pin]
	if !ok {
		return fmt.Errorf("pin %d was not requested", pin)
	}
	v := 0
	if high {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", pin, err)
	}
	return nil
}

// Close releases all requested lines and the chip. Output levels hold
// their last driven value after release, so relays stay where the loop
// left them.
func (r *RealPins) Close() error {
	var errs []error
	for pin, line := range r.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
