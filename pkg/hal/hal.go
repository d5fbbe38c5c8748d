// Package hal defines the hardware boundary of the controller. The real
// implementations live in the gpio subpackage and talk to Linux GPIO
// character devices; the fakes in this package allow testing without
// hardware.
package hal

// Supported actuator angle range in degrees.
const (
	MinAngle = -90.0
	MaxAngle = 90.0
)

// AnalogReader reads normalized samples from an ADC channel.
type AnalogReader interface {
	// Read returns a reading in [0, 1] from the given channel.
	Read(channel int) (float64, error)
}

// DigitalReader reads a single digital input.
type DigitalReader interface {
	// Read returns true if the input is asserted (logical high).
	Read() (bool, error)
}

// Actuator is an angle-controlled actuator (the valve servo).
type Actuator interface {
	// SetAngle commands the actuator to the given angle in degrees.
	// Angles outside [MinAngle, MaxAngle] fail with an ActuatorError.
	SetAngle(deg float64) error
}

// Switch is a binary on/off output (power relay, alarm buzzer).
type Switch interface {
	Set(on bool) error
	// On reports the last commanded state.
	On() bool
}
