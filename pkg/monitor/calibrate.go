package monitor

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tlyons/servoguard/pkg/events"
)

// Calibrate samples the current channel over a long window to establish a
// baseline, then sets the trip threshold a safety margin above it. The
// snapshot is replaced atomically, so readers never see a half-updated
// baseline/threshold pair.
//
// Calibrate must only be called while the monitor loop is not running.
// Move and Recalibrate enforce that ordering; other callers are
// responsible for it themselves.
func (c *Controller) Calibrate() (Calibration, error) {
	logrus.Info("calibrating current threshold")

	baseline, err := c.Sample(c.cfg.CurrentChannel(), c.calibrateSamples, c.calibrateSpan)
	if err != nil {
		return Calibration{}, pkgerrors.Wrap(err, "calibration sampling")
	}

	mult := c.cfg.ThresholdMultiplier()
	cal := Calibration{
		Baseline:     baseline,
		Threshold:    baseline * mult,
		Multiplier:   mult,
		CalibratedAt: time.Now(),
	}

	c.mu.Lock()
	old := c.cal
	c.cal = cal
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"oldBaseline":  old.Baseline,
		"oldThreshold": old.Threshold,
		"baseline":     cal.Baseline,
		"threshold":    cal.Threshold,
		"multiplier":   mult,
	}).Info("current threshold calibrated")

	c.hub.Publish(events.CalibrationResult, events.CalibrationResultEvent{
		Baseline:  cal.Baseline,
		Threshold: cal.Threshold,
		Ts:        time.Now().Unix(),
	})

	return cal, nil
}

// Recalibrate re-runs threshold calibration, pausing the monitor loop
// around it if it is running. If calibration fails the monitor is left
// stopped for the caller to retry or reset.
func (c *Controller) Recalibrate() (Calibration, error) {
	wasRunning := c.State() == StateRunning
	if wasRunning {
		c.Stop()
	}

	cal, err := c.Calibrate()
	if err != nil {
		return cal, err
	}

	if wasRunning {
		if err := c.Start(); err != nil {
			return cal, err
		}
	}
	return cal, nil
}
