package hal

import "fmt"

// SensorReadError reports a hardware fault while reading a sensor. Channel
// is the ADC channel for analog sensors and the GPIO pin for digital ones.
type SensorReadError struct {
	Sensor  string
	Channel int
	Err     error
}

func (e *SensorReadError) Error() string {
	return fmt.Sprintf("read %s sensor (channel %d): %v", e.Sensor, e.Channel, e.Err)
}

func (e *SensorReadError) Unwrap() error { return e.Err }

// ActuatorError reports a fault commanding an output device (servo, relay
// or buzzer).
type ActuatorError struct {
	Device string
	Err    error
}

func (e *ActuatorError) Error() string {
	return fmt.Sprintf("command %s: %v", e.Device, e.Err)
}

func (e *ActuatorError) Unwrap() error { return e.Err }
