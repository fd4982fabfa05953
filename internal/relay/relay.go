// Package relay provides relay-board pin control with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package relay

// Pins writes logic levels to relay-board input pins.
type Pins interface {
	// WritePin drives the given BCM pin high or low.
	WritePin(pin int, high bool) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the Raspberry Pi's GPIO character device.
const DefaultChip = "gpiochip0"
