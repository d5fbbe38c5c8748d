package monitor

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// The three condition checkers each consult one sensor and return true
// only if a violation is both detected and that class's enable flag is
// set. Detection is always logged, so a disabled class still produces
// telemetry for threshold tuning.

func (c *Controller) checkCurrent() (bool, error) {
	avg, err := c.Sample(c.cfg.CurrentChannel(), c.checkSamples, c.checkSpan)
	if err != nil {
		return false, pkgerrors.Wrap(err, "current check")
	}

	threshold := c.Calibration().Threshold

	logrus.WithFields(logrus.Fields{
		"current":    avg,
		"threshold":  threshold,
		"normalized": c.CalcCurrent(avg),
	}).Debug("current reading")

	if avg > threshold {
		logrus.WithFields(logrus.Fields{
			"current":   avg,
			"threshold": threshold,
			"enabled":   c.cfg.EnableCurrent(),
		}).Warn("current exceeded threshold")
		return c.cfg.EnableCurrent(), nil
	}
	return false, nil
}

func (c *Controller) checkVibration() (bool, error) {
	v, err := c.vibe.Read()
	if err != nil {
		return false, pkgerrors.Wrap(err, "vibration check")
	}

	if v {
		logrus.WithFields(logrus.Fields{
			"enabled": c.cfg.EnableVibration(),
		}).Warn("vibration detected")
		return c.cfg.EnableVibration(), nil
	}

	logrus.Debug("no vibration")
	return false, nil
}

func (c *Controller) checkTemp() (bool, error) {
	t, err := c.adc.Read(c.cfg.TempChannel())
	if err != nil {
		return false, pkgerrors.Wrap(err, "temperature check")
	}

	low, high := c.cfg.TempLow(), c.cfg.TempHigh()

	logrus.WithFields(logrus.Fields{
		"temperature": t,
		"low":         low,
		"high":        high,
	}).Debug("temperature reading")

	if t > high || t < low {
		logrus.WithFields(logrus.Fields{
			"temperature": t,
			"low":         low,
			"high":        high,
			"enabled":     c.cfg.EnableTemp(),
		}).Warn("temperature outside bounds")
		return c.cfg.EnableTemp(), nil
	}
	return false, nil
}
