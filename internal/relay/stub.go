//go:build !linux

package relay

import "errors"

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(chipName string, pins []int, initialHigh bool) (*RealPins, error) {
	return nil, errors.New("relay: not supported on this platform (requires Linux)")
}

// WritePin is not implemented on non-Linux platforms.
func (r *RealPins) WritePin(pin int, high bool) error {
	return errors.New("relay: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealPins) Close() error {
	return nil
}
