package monitor

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tlyons/servoguard/pkg/hal"
)

// ErrAngleOutOfRange marks a Move rejected before any hardware or state
// was touched.
var ErrAngleOutOfRange = errors.New("angle out of range")

// ErrMonitorRunning is returned by Reset while the loop is active.
var ErrMonitorRunning = errors.New("monitor is running")

// Move commands the valve actuator to the given angle, pausing the monitor
// loop around the movement so its sensor reads never race the mechanical
// transient. Movement is open loop: the call blocks for the full settle
// duration and, when calibrate is set, for the calibration sampling window
// as well, then monitoring resumes if it was active before.
//
// If a hardware command or calibration fails mid-move the monitor is left
// stopped; the caller decides between retrying and Reset.
func (c *Controller) Move(angle float64, calibrate bool, settle time.Duration) error {
	if angle < hal.MinAngle || angle > hal.MaxAngle {
		return &hal.ActuatorError{
			Device: "servo",
			Err:    fmt.Errorf("%w: %.1f not in [%.0f, %.0f]", ErrAngleOutOfRange, angle, hal.MinAngle, hal.MaxAngle),
		}
	}

	wasRunning := c.State() == StateRunning
	if wasRunning {
		c.Stop()
	}

	// Movement must never be attempted with power cut.
	if err := c.relay.Set(true); err != nil {
		return err
	}

	if err := c.servo.SetAngle(angle); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"angle":     angle,
		"settle":    settle,
		"calibrate": calibrate,
	}).Info("actuator commanded")

	time.Sleep(settle)

	if calibrate {
		if _, err := c.Calibrate(); err != nil {
			return pkgerrors.Wrap(err, "post-move calibration")
		}
	}

	if wasRunning {
		return c.Start()
	}
	return nil
}

// Reset re-enables power after a safety cutoff. The monitor loop stays
// Idle: resuming monitoring is an explicit operator decision, made after
// the trip cause has been investigated.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return ErrMonitorRunning
	}

	if err := c.relay.Set(true); err != nil {
		return err
	}

	c.state = StateIdle
	logrus.Info("system reset, relay power restored")
	return nil
}
