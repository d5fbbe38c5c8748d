// Package monitor implements the safety-monitoring controller for a
// servo-actuated valve. A background loop watches current draw, vibration
// and temperature; on a violation it cuts relay power and sounds the
// buzzer. The current trip threshold is learned by calibration rather than
// hard-coded.
package monitor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/events"
	"github.com/tlyons/servoguard/pkg/hal"
)

// State is the monitor loop state.
type State string

const (
	StateIdle    State = "Idle"
	StateRunning State = "Running"
	StateTripped State = "TrippedCutoff"
)

// Reference timings and sample windows. Kept as fields on the Controller
// so tests can shorten them.
const (
	defaultPollInterval  = 50 * time.Millisecond
	defaultAlarmDuration = 1 * time.Second
	defaultStopTimeout   = 1 * time.Second

	defaultCalibrateSamples = 10000
	defaultCalibrateSpan    = 5 * time.Second
	defaultCheckSamples     = 100
	defaultCheckSpan        = 1 * time.Second

	// Conservative trip threshold used until the first calibration.
	defaultThreshold = 0.5
)

// Calibration is the baseline/threshold snapshot produced by Calibrate.
// It is replaced whole, never mutated in place.
type Calibration struct {
	Baseline     float64   `json:"baseline"`
	Threshold    float64   `json:"threshold"`
	Multiplier   float64   `json:"multiplier"`
	CalibratedAt time.Time `json:"calibratedAt,omitempty"`
}

// Status is the externally visible controller state.
type Status struct {
	Monitor     State       `json:"monitor"`
	PowerOn     bool        `json:"powerOn"`
	Calibration Calibration `json:"calibration"`
}

// Controller owns the hardware collaborators and all monitoring state.
// Start/Stop/Move/Reset assume a single orchestrating caller; the only
// concurrency is the background loop itself.
type Controller struct {
	cfg config.Config

	adc    hal.AnalogReader
	vibe   hal.DigitalReader
	servo  hal.Actuator
	relay  hal.Switch
	buzzer hal.Switch

	pollInterval  time.Duration
	alarmDuration time.Duration
	stopTimeout   time.Duration

	calibrateSamples int
	calibrateSpan    time.Duration
	checkSamples     int
	checkSpan        time.Duration

	mu    sync.Mutex
	state State
	cal   Calibration
	done  chan struct{}

	cancel atomic.Bool

	// Touched only by the loop goroutine.
	lastStatus    loopStatus
	lastPrintTime time.Time

	hub *events.Hub
}

// New creates a Controller over the given hardware. The trip threshold
// starts at a conservative default until the first calibration.
func New(cfg config.Config, adc hal.AnalogReader, vibe hal.DigitalReader, servo hal.Actuator, relay, buzzer hal.Switch) *Controller {
	return &Controller{
		cfg:    cfg,
		adc:    adc,
		vibe:   vibe,
		servo:  servo,
		relay:  relay,
		buzzer: buzzer,

		pollInterval:  defaultPollInterval,
		alarmDuration: defaultAlarmDuration,
		stopTimeout:   defaultStopTimeout,

		calibrateSamples: defaultCalibrateSamples,
		calibrateSpan:    defaultCalibrateSpan,
		checkSamples:     defaultCheckSamples,
		checkSpan:        defaultCheckSpan,

		state: StateIdle,
		cal: Calibration{
			Threshold:  defaultThreshold,
			Multiplier: cfg.ThresholdMultiplier(),
		},
	}
}

// AttachHub wires an event hub for trip/state/calibration notifications.
// Optional; a nil hub drops everything.
func (c *Controller) AttachHub(h *events.Hub) {
	c.hub = h
}

// State returns the current monitor state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Calibration returns the current baseline/threshold snapshot.
func (c *Controller) Calibration() Calibration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cal
}

// Status returns a consistent snapshot for the daemon API.
func (c *Controller) Status() Status {
	c.mu.Lock()
	state := c.state
	cal := c.cal
	c.mu.Unlock()

	return Status{
		Monitor:     state,
		PowerOn:     c.relay.On(),
		Calibration: cal,
	}
}

// setState transitions the monitor state, logging and publishing the
// transition.
func (c *Controller) setState(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if from == to {
		return
	}

	logrus.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Info("monitor state changed")

	c.hub.Publish(events.MonitorState, events.MonitorStateEvent{
		From: string(from),
		To:   string(to),
		Ts:   time.Now().Unix(),
	})
}
