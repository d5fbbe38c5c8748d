package events

import "encoding/json"

// Event name constants
const (
	MonitorState      = "monitor.state"
	MonitorTrip       = "monitor.trip"
	CalibrationResult = "calibration.result"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// MonitorStateEvent is the typed payload for monitor.state.
type MonitorStateEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
	Ts   int64  `json:"ts"`
}

// MonitorTripEvent is the typed payload for monitor.trip.
type MonitorTripEvent struct {
	Cause string `json:"cause"` // "current", "vibration", "temperature" or "error"
	Ts    int64  `json:"ts"`
}

// CalibrationResultEvent is the typed payload for calibration.result.
type CalibrationResultEvent struct {
	Baseline  float64 `json:"baseline"`
	Threshold float64 `json:"threshold"`
	Ts        int64   `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic
// type T. If Data is empty it returns the zero value of T with a nil
// error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
