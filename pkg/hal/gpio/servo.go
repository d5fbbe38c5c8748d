//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/tlyons/servoguard/pkg/hal"
)

// Standard hobby-servo timing: 50 Hz frame, 1.0-2.0 ms pulse maps to the
// full travel, 1.5 ms is center.
const (
	servoPeriod   = 20 * time.Millisecond
	servoMinPulse = 1 * time.Millisecond
	servoMaxPulse = 2 * time.Millisecond
)

// servo drives an angular servo with software PWM on a GPIO line. The PWM
// goroutine runs for the lifetime of the Hardware; SetAngle only swaps the
// pulse width it emits. Jitter from the Go scheduler is on the order of
// hundreds of microseconds, which analog servos tolerate.
type servo struct {
	line    *gpiocdev.Line
	pulseNs atomic.Int64
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newServo(line *gpiocdev.Line) *servo {
	s := &servo{
		line:   line,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.run()
	return s
}

// SetAngle commands the servo to the given angle in degrees.
func (s *servo) SetAngle(deg float64) error {
	if deg < hal.MinAngle || deg > hal.MaxAngle {
		return &hal.ActuatorError{
			Device: "servo",
			Err:    fmt.Errorf("angle %.1f out of range [%.0f, %.0f]", deg, hal.MinAngle, hal.MaxAngle),
		}
	}

	span := float64(servoMaxPulse - servoMinPulse)
	frac := (deg - hal.MinAngle) / (hal.MaxAngle - hal.MinAngle)
	s.pulseNs.Store(int64(servoMinPulse) + int64(frac*span))
	return nil
}

func (s *servo) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			_ = s.line.SetValue(0)
			return
		default:
		}

		pulse := time.Duration(s.pulseNs.Load())
		if pulse <= 0 {
			// No target commanded yet. Hold the line low so the servo
			// keeps its mechanical position.
			time.Sleep(servoPeriod)
			continue
		}

		_ = s.line.SetValue(1)
		time.Sleep(pulse)
		_ = s.line.SetValue(0)
		time.Sleep(servoPeriod - pulse)
	}
}

func (s *servo) stop() {
	close(s.stopCh)
	<-s.doneCh
}
