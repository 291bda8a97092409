// Package board abstracts the evaluation board's LEDs and send button.
package board

import "errors"

// ErrHardwareUnavailable reports a referenced device that is not ready.
var ErrHardwareUnavailable = errors.New("board: hardware unavailable")

// Board is the peripheral surface used by the node: two output LEDs and
// one input button.  Init must succeed before any other call.
type Board interface {
	// Init configures both LEDs as outputs, driven inactive, and the
	// button as an input.  Fails with ErrHardwareUnavailable if any
	// device is not ready.
	Init() error

	SetBootLED(on bool)
	SetStateLED(on bool)
	ToggleStateLED()

	// ReadButton returns the button's logical level, 0 or 1.
	ReadButton() (int, error)
}
