package monitor

import (
	"testing"
	"time"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/hal"
)

// testRig wires a Controller to scripted hardware fakes with timings short
// enough for tests. Default readings are all nominal: no current above the
// default threshold, no vibration, temperature inside bounds.
type testRig struct {
	ctrl   *Controller
	conf   *config.File
	adc    *hal.FakeAnalog
	vibe   *hal.FakeDigital
	servo  *hal.FakeActuator
	relay  *hal.FakeSwitch
	buzzer *hal.FakeSwitch
}

func newTestRig(raw *config.RawFileConfig) *testRig {
	if raw == nil {
		raw = &config.RawFileConfig{}
	}
	conf := config.NewFileFromConfig(raw, "")

	adc := hal.NewFakeAnalog(map[int][]float64{
		0: {0.0}, // current channel, quiet
		1: {0.8}, // temperature channel, inside [0.70, 0.89]
	})
	vibe := hal.NewFakeDigital([]bool{false})
	servo := &hal.FakeActuator{}
	relay := &hal.FakeSwitch{}
	buzzer := &hal.FakeSwitch{}

	ctrl := New(conf, adc, vibe, servo, relay, buzzer)
	ctrl.pollInterval = 2 * time.Millisecond
	ctrl.alarmDuration = 5 * time.Millisecond
	ctrl.stopTimeout = 500 * time.Millisecond
	ctrl.checkSamples = 3
	ctrl.checkSpan = 0
	ctrl.calibrateSamples = 5
	ctrl.calibrateSpan = 0

	return &testRig{
		ctrl:   ctrl,
		conf:   conf,
		adc:    adc,
		vibe:   vibe,
		servo:  servo,
		relay:  relay,
		buzzer: buzzer,
	}
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("monitor state = %s, want %s", c.State(), want)
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
