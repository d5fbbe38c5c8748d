package monitor

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tlyons/servoguard/pkg/events"
)

// loopStatus is the per-cycle outcome used to throttle status logging.
type loopStatus struct {
	current   bool
	vibration bool
	temp      bool
}

// ErrTripped is returned by Start after a safety cutoff; Reset must be
// called first so the trip cause can be investigated.
var ErrTripped = errors.New("safety cutoff tripped, reset required")

// Start begins background monitoring. It is a no-op if the loop is already
// running. The relay is energized before the loop starts so a trip is
// always a transition from powered to unpowered.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning:
		return nil
	case StateTripped:
		return ErrTripped
	}

	if err := c.relay.Set(true); err != nil {
		return err
	}

	c.state = StateRunning
	c.cancel.Store(false)
	c.done = make(chan struct{})
	go c.run(c.done)

	logrus.Info("safety monitoring started")
	c.hub.Publish(events.MonitorState, events.MonitorStateEvent{
		From: string(StateIdle),
		To:   string(StateRunning),
		Ts:   time.Now().Unix(),
	})
	return nil
}

// Stop requests a cooperative shutdown of the loop and waits up to the
// join timeout. The cancellation flag stays set after a timeout, so a
// slow loop still exits at its next check; callers must not assume
// termination is synchronous.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	done := c.done
	c.mu.Unlock()

	c.cancel.Store(true)

	select {
	case <-done:
	case <-time.After(c.stopTimeout):
		logrus.Warn("monitor loop did not stop within join timeout")
	}
}

// run is the poll cycle. It exits on cancellation (to Idle) or on the
// first violation or checker error (to TrippedCutoff); it never restarts
// itself.
func (c *Controller) run(done chan struct{}) {
	defer close(done)

	for {
		if c.cancel.Load() {
			c.setState(StateIdle)
			logrus.Info("safety monitoring stopped")
			return
		}

		cause, err := c.evaluate()
		if err != nil {
			// An unreadable sensor cannot be assumed safe.
			logrus.WithError(err).Error("safety check failed, failing safe")
			c.trip("error")
			return
		}
		if cause != "" {
			c.trip(cause)
			return
		}

		time.Sleep(c.pollInterval)
	}
}

// evaluate runs all three checkers every cycle so each logs its reading,
// then reports the first violating class (empty string if none).
func (c *Controller) evaluate() (string, error) {
	current, err := c.checkCurrent()
	if err != nil {
		return "", err
	}
	vibration, err := c.checkVibration()
	if err != nil {
		return "", err
	}
	temp, err := c.checkTemp()
	if err != nil {
		return "", err
	}

	c.printStatus(loopStatus{current: current, vibration: vibration, temp: temp})

	switch {
	case current:
		return "current", nil
	case vibration:
		return "vibration", nil
	case temp:
		return "temperature", nil
	}
	return "", nil
}

// printStatus logs the poll cycle outcome. An unchanged status repeated
// within roughly one poll interval is demoted to Trace so a healthy loop
// does not flood the Debug log at 20 Hz.
func (c *Controller) printStatus(status loopStatus) {
	fields := logrus.Fields{
		"current":   status.current,
		"vibration": status.vibration,
		"temp":      status.temp,
	}

	defer func() { c.lastPrintTime = time.Now() }()

	if time.Since(c.lastPrintTime) < c.pollInterval+time.Second && status == c.lastStatus {
		logrus.WithFields(fields).Trace("poll cycle status")
		return
	}

	logrus.WithFields(fields).Debug("poll cycle status")

	c.lastStatus = status
}

// trip executes the cutoff sequence: power off, alarm on, hold, alarm off.
// Failures to command the relay or buzzer are logged but do not stop the
// sequence; cutting power is the priority.
func (c *Controller) trip(cause string) {
	if err := c.relay.Set(false); err != nil {
		logrus.WithError(err).Error("failed to cut relay power")
	}
	logrus.WithFields(logrus.Fields{"cause": cause}).Warn("safety cutoff activated")

	if err := c.buzzer.Set(true); err != nil {
		logrus.WithError(err).Error("failed to sound alarm")
	}
	time.Sleep(c.alarmDuration)
	if err := c.buzzer.Set(false); err != nil {
		logrus.WithError(err).Error("failed to silence alarm")
	}

	c.setState(StateTripped)
	c.hub.Publish(events.MonitorTrip, events.MonitorTripEvent{
		Cause: cause,
		Ts:    time.Now().Unix(),
	})
}
