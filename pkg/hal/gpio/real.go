//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"

	"github.com/tlyons/servoguard/pkg/hal"
)

const chipName = "gpiochip0"

// Hardware holds the opened device handles for a controller instance.
type Hardware struct {
	ADC       hal.AnalogReader
	Vibration hal.DigitalReader
	Servo     hal.Actuator
	Relay     hal.Switch
	Buzzer    hal.Switch

	chip    *gpiocdev.Chip
	servo   *servo
	closers []*gpiocdev.Line
}

// Open requests all GPIO lines and returns the assembled hardware. On any
// failure the already-requested lines are released.
func Open(pins Pins) (*Hardware, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	hw := &Hardware{chip: chip}
	fail := func(err error) (*Hardware, error) {
		_ = hw.Close()
		return nil, err
	}

	relay, err := hw.output(pins.Relay, "relay")
	if err != nil {
		return fail(err)
	}
	hw.Relay = relay

	buzzer, err := hw.output(pins.Buzzer, "buzzer")
	if err != nil {
		return fail(err)
	}
	hw.Buzzer = buzzer

	vibeLine, err := chip.RequestLine(pins.Vibration, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return fail(fmt.Errorf("request vibration pin %d: %w", pins.Vibration, err))
	}
	hw.closers = append(hw.closers, vibeLine)
	hw.Vibration = &digitalIn{line: vibeLine, pin: pins.Vibration, name: "vibration"}

	servoLine, err := chip.RequestLine(pins.Servo, gpiocdev.AsOutput(0))
	if err != nil {
		return fail(fmt.Errorf("request servo pin %d: %w", pins.Servo, err))
	}
	hw.closers = append(hw.closers, servoLine)
	hw.servo = newServo(servoLine)
	hw.Servo = hw.servo

	adc, err := newMCP3008(chip, pins)
	if err != nil {
		return fail(err)
	}
	hw.closers = append(hw.closers, adc.lines()...)
	hw.ADC = adc

	return hw, nil
}

func (h *Hardware) output(pin int, name string) (*outputLine, error) {
	line, err := h.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request %s pin %d: %w", name, pin, err)
	}
	h.closers = append(h.closers, line)
	return &outputLine{line: line, name: name}, nil
}

// Close releases all GPIO resources. Output lines are reconfigured to
// inputs first so external hardware sees the Pi's boot-default pin state.
func (h *Hardware) Close() error {
	if h.servo != nil {
		h.servo.stop()
	}

	var errs []error
	for _, l := range h.closers {
		if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, err)
		}
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if h.chip != nil {
		if err := h.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// outputLine implements hal.Switch on a single GPIO output.
type outputLine struct {
	line *gpiocdev.Line
	name string

	mu sync.Mutex
	on bool
}

func (o *outputLine) Set(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"device": o.name,
		"on":     on,
	}).Trace("Setting output line")

	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return &hal.ActuatorError{Device: o.name, Err: err}
	}
	o.on = on
	return nil
}

func (o *outputLine) On() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

// digitalIn implements hal.DigitalReader on a single GPIO input.
type digitalIn struct {
	line *gpiocdev.Line
	pin  int
	name string
}

func (d *digitalIn) Read() (bool, error) {
	v, err := d.line.Value()
	if err != nil {
		return false, &hal.SensorReadError{Sensor: d.name, Channel: d.pin, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"sensor": d.name,
		"pin":    d.pin,
		"val":    v,
	}).Trace("Digital read succeed")

	return v != 0, nil
}
