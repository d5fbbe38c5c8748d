package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/events"
	"github.com/tlyons/servoguard/pkg/hal"
	"github.com/tlyons/servoguard/pkg/monitor"
)

// daemonRig wires the package-level daemon state to scripted hardware
// fakes and returns the router for httptest requests.
type daemonRig struct {
	router *gin.Engine
	conf   *config.File
	adc    *hal.FakeAnalog
	servo  *hal.FakeActuator
	relay  *hal.FakeSwitch
	buzzer *hal.FakeSwitch
}

func newDaemonRig(t *testing.T) *daemonRig {
	t.Helper()

	cf := config.NewFileFromConfig(&config.RawFileConfig{}, filepath.Join(t.TempDir(), "servoguard.json"))

	adc := hal.NewFakeAnalog(map[int][]float64{
		0: {0.0},
		1: {0.8},
	})
	vibe := hal.NewFakeDigital([]bool{false})
	servo := &hal.FakeActuator{}
	relay := &hal.FakeSwitch{}
	buzzer := &hal.FakeSwitch{}

	conf = cf
	sseHub = events.NewHub()
	controller = monitor.New(cf, adc, vibe, servo, relay, buzzer)
	controller.AttachHub(sseHub)

	return &daemonRig{
		router: setupRoutes(),
		conf:   cf,
		adc:    adc,
		servo:  servo,
		relay:  relay,
		buzzer: buzzer,
	}
}

func (r *daemonRig) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	r.router.ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodGet, "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d, want 200", w.Code)
	}

	var st monitor.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if st.Monitor != monitor.StateIdle {
		t.Errorf("monitor state = %s, want %s", st.Monitor, monitor.StateIdle)
	}
	if st.PowerOn {
		t.Error("powerOn = true before anything energized the relay")
	}
}

func TestGetConfig(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodGet, "/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /config = %d, want 200", w.Code)
	}

	var raw config.RawFileConfig
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decoding config: %v", err)
	}
	if raw.ServoPin == nil || *raw.ServoPin != 12 {
		t.Errorf("servoPin = %v, want 12", raw.ServoPin)
	}
}

func TestGetCalibration(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodGet, "/calibration", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /calibration = %d, want 200", w.Code)
	}

	var cal monitor.Calibration
	if err := json.Unmarshal(w.Body.Bytes(), &cal); err != nil {
		t.Fatalf("decoding calibration: %v", err)
	}
	if cal.Threshold != 0.5 {
		t.Errorf("threshold = %v, want default 0.5", cal.Threshold)
	}
}

func TestPostMove(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPost, "/move", `{"angle": 45}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /move = %d, want 200: %s", w.Code, w.Body.String())
	}

	if got := rig.servo.Angles(); len(got) != 1 || got[0] != 45 {
		t.Errorf("servo angles = %v, want [45]", got)
	}
	if !rig.relay.On() {
		t.Error("relay not energized for movement")
	}
}

func TestPostMoveOutOfRange(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPost, "/move", `{"angle": 200}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /move angle=200 = %d, want 400", w.Code)
	}
	if got := rig.servo.Angles(); len(got) != 0 {
		t.Errorf("servo commanded anyway: %v", got)
	}
}

func TestPostMoveNegativeSettle(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPost, "/move", `{"angle": 10, "settleSeconds": -1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /move settleSeconds=-1 = %d, want 400", w.Code)
	}
}

func TestPostReset(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPost, "/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /reset = %d, want 200", w.Code)
	}
	if !rig.relay.On() {
		t.Error("relay not energized by reset")
	}
}

func TestPutMultiplier(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/multiplier", "1.2")
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /multiplier = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := rig.conf.ThresholdMultiplier(); got != 1.2 {
		t.Errorf("ThresholdMultiplier() = %v, want 1.2", got)
	}
}

func TestPutMultiplierRejectsBelowOne(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/multiplier", "0.5")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("PUT /multiplier 0.5 = %d, want 400", w.Code)
	}
	if got := rig.conf.ThresholdMultiplier(); got != 1.005 {
		t.Errorf("ThresholdMultiplier() = %v, default should be untouched", got)
	}
}

func TestPutMultiplierRejectsGarbage(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/multiplier", "lots")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("PUT /multiplier lots = %d, want 400", w.Code)
	}
}

func TestPutTempBounds(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/temp-bounds", `{"low": 0.6, "high": 0.9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /temp-bounds = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := rig.conf.TempLow(); got != 0.6 {
		t.Errorf("TempLow() = %v, want 0.6", got)
	}
	if got := rig.conf.TempHigh(); got != 0.9 {
		t.Errorf("TempHigh() = %v, want 0.9", got)
	}
}

func TestPutTempBoundsRejectsInverted(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/temp-bounds", `{"low": 0.9, "high": 0.6}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("PUT /temp-bounds inverted = %d, want 400", w.Code)
	}
}

func TestPutCheck(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/checks/vibration", "false")
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /checks/vibration = %d, want 200: %s", w.Code, w.Body.String())
	}
	if rig.conf.EnableVibration() {
		t.Error("EnableVibration() = true after disabling")
	}

	w = rig.do(http.MethodPut, "/checks/temperature", "false")
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /checks/temperature = %d, want 200", w.Code)
	}
	if rig.conf.EnableTemp() {
		t.Error("EnableTemp() = true after disabling")
	}
}

func TestPutCheckUnknownClass(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPut, "/checks/voltage", "true")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("PUT /checks/voltage = %d, want 400", w.Code)
	}
}

func TestMonitorStartStop(t *testing.T) {
	rig := newDaemonRig(t)

	w := rig.do(http.MethodPost, "/monitor/start", "")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /monitor/start = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := controller.State(); got != monitor.StateRunning {
		t.Errorf("state = %s, want %s", got, monitor.StateRunning)
	}

	w = rig.do(http.MethodPost, "/monitor/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /monitor/stop = %d, want 200", w.Code)
	}
}
