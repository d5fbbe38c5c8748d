package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/hal"
	"github.com/tlyons/servoguard/pkg/utils/ptr"
)

func TestStartEnergizesRelay(t *testing.T) {
	rig := newTestRig(nil)

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer rig.ctrl.Stop()

	if !rig.relay.On() {
		t.Error("relay not energized after Start")
	}
	if got := rig.ctrl.State(); got != StateRunning {
		t.Errorf("state = %s, want %s", got, StateRunning)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	rig := newTestRig(nil)

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer rig.ctrl.Stop()

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("second Start() error: %v", err)
	}
	if got := len(rig.relay.States()); got != 1 {
		t.Errorf("relay commanded %d times, want 1", got)
	}
}

func TestStopReturnsToIdle(t *testing.T) {
	rig := newTestRig(nil)

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	rig.ctrl.Stop()

	waitForState(t, rig.ctrl, StateIdle)

	// A clean stop leaves power on.
	if !rig.relay.On() {
		t.Error("relay de-energized by Stop")
	}
}

func TestTripOnCurrent(t *testing.T) {
	rig := newTestRig(nil)
	rig.adc.SetSamples(0, []float64{0.9}) // well above default threshold

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitForState(t, rig.ctrl, StateTripped)

	if rig.relay.On() {
		t.Error("relay still energized after trip")
	}
	if got := rig.buzzer.States(); len(got) != 2 || !got[0] || got[1] {
		t.Errorf("buzzer states = %v, want [true false]", got)
	}
}

func TestTripOnVibration(t *testing.T) {
	rig := newTestRig(nil)
	rig.ctrl.vibe = hal.NewFakeDigital([]bool{true})

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitForState(t, rig.ctrl, StateTripped)

	if rig.relay.On() {
		t.Error("relay still energized after trip")
	}
}

func TestTripOnTemperature(t *testing.T) {
	rig := newTestRig(nil)
	rig.adc.SetSamples(1, []float64{0.95})

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitForState(t, rig.ctrl, StateTripped)
}

func TestDisabledClassDoesNotTrip(t *testing.T) {
	rig := newTestRig(&config.RawFileConfig{
		EnableVibration: ptr.To(false),
	})
	rig.ctrl.vibe = hal.NewFakeDigital([]bool{true})

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := rig.ctrl.State(); got != StateRunning {
		t.Fatalf("state = %s, want %s", got, StateRunning)
	}
	rig.ctrl.Stop()
}

func TestSensorErrorFailsSafe(t *testing.T) {
	rig := newTestRig(nil)
	rig.adc.SetErr(errors.New("bus fault"))

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitForState(t, rig.ctrl, StateTripped)

	if rig.relay.On() {
		t.Error("relay still energized after fail-safe trip")
	}
}

func TestStartAfterTripReturnsErrTripped(t *testing.T) {
	rig := newTestRig(nil)
	rig.adc.SetSamples(0, []float64{0.9})

	if err := rig.ctrl.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	waitForState(t, rig.ctrl, StateTripped)

	if err := rig.ctrl.Start(); !errors.Is(err, ErrTripped) {
		t.Errorf("Start() after trip = %v, want ErrTripped", err)
	}
	if rig.relay.On() {
		t.Error("relay re-energized by rejected Start")
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	rig := newTestRig(nil)

	rig.ctrl.Stop()

	if got := rig.ctrl.State(); got != StateIdle {
		t.Errorf("state = %s, want %s", got, StateIdle)
	}
}
