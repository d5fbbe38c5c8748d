//go:build !linux

package gpio

import (
	"errors"

	"github.com/tlyons/servoguard/pkg/hal"
)

// Hardware is not available on non-Linux platforms.
type Hardware struct {
	ADC       hal.AnalogReader
	Vibration hal.DigitalReader
	Servo     hal.Actuator
	Relay     hal.Switch
	Buzzer    hal.Switch
}

// Open returns an error on non-Linux platforms.
func Open(Pins) (*Hardware, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Close is not implemented on non-Linux platforms.
func (h *Hardware) Close() error {
	return nil
}
