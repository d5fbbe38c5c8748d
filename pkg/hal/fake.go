package hal

import (
	"errors"
	"sync"
)

// FakeAnalog is a test double that replays scripted per-channel readings.
// When a channel's samples are exhausted the last one is returned
// repeatedly. The monitor loop reads from another goroutine, so all state
// is mutex-guarded.
type FakeAnalog struct {
	mu      sync.Mutex
	samples map[int][]float64
	index   map[int]int
	reads   map[int]int

	// ReadErr, if set, is returned by every Read.
	ReadErr error
}

// NewFakeAnalog creates a FakeAnalog with the given per-channel samples.
func NewFakeAnalog(samples map[int][]float64) *FakeAnalog {
	return &FakeAnalog{
		samples: samples,
		index:   make(map[int]int),
		reads:   make(map[int]int),
	}
}

// Read returns the next scripted sample for the channel.
func (f *FakeAnalog) Read(channel int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads[channel]++

	if f.ReadErr != nil {
		return 0, f.ReadErr
	}

	s := f.samples[channel]
	if len(s) == 0 {
		return 0, errors.New("no samples configured for channel")
	}

	v := s[f.index[channel]]
	if f.index[channel] < len(s)-1 {
		f.index[channel]++
	}
	return v, nil
}

// Reads returns how many times the channel has been read.
func (f *FakeAnalog) Reads(channel int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[channel]
}

// SetSamples replaces the scripted samples for a channel and rewinds it.
func (f *FakeAnalog) SetSamples(channel int, samples []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples[channel] = samples
	f.index[channel] = 0
}

// SetErr sets the error returned by subsequent reads.
func (f *FakeAnalog) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadErr = err
}

// FakeDigital replays scripted boolean readings, repeating the last one
// when exhausted.
type FakeDigital struct {
	mu      sync.Mutex
	samples []bool
	index   int
	reads   int
	ReadErr error
}

// NewFakeDigital creates a FakeDigital with the given samples.
func NewFakeDigital(samples []bool) *FakeDigital {
	return &FakeDigital{samples: samples}
}

// Read returns the next scripted reading.
func (f *FakeDigital) Read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++

	if f.ReadErr != nil {
		return false, f.ReadErr
	}

	if len(f.samples) == 0 {
		return false, nil
	}

	v := f.samples[f.index]
	if f.index < len(f.samples)-1 {
		f.index++
	}
	return v, nil
}

// Reads returns how many times the input has been read.
func (f *FakeDigital) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// FakeActuator records commanded angles.
type FakeActuator struct {
	mu     sync.Mutex
	angles []float64
	SetErr error
}

// SetAngle records the commanded angle.
func (f *FakeActuator) SetAngle(deg float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.angles = append(f.angles, deg)
	return nil
}

// Angles returns all commanded angles in order.
func (f *FakeActuator) Angles() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float64, len(f.angles))
	copy(out, f.angles)
	return out
}

// FakeSwitch records every commanded state.
type FakeSwitch struct {
	mu     sync.Mutex
	states []bool
	on     bool
	SetErr error
}

// Set records and applies the commanded state.
func (f *FakeSwitch) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.states = append(f.states, on)
	f.on = on
	return nil
}

// On reports the last commanded state.
func (f *FakeSwitch) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// States returns every commanded state in order.
func (f *FakeSwitch) States() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.states))
	copy(out, f.states)
	return out
}
