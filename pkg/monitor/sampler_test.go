package monitor

import (
	"errors"
	"testing"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/utils/ptr"
)

func TestSampleAverage(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		count   int
		want    float64
	}{
		{
			name:    "constant readings average to themselves",
			samples: []float64{0.3},
			count:   10,
			want:    0.3,
		},
		{
			name:    "arithmetic mean of varying readings",
			samples: []float64{0.1, 0.2, 0.3},
			count:   3,
			want:    0.2,
		},
		{
			name:    "single sample",
			samples: []float64{0.75},
			count:   1,
			want:    0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(nil)
			rig.adc.SetSamples(0, tt.samples)

			got, err := rig.ctrl.Sample(0, tt.count, 0)
			if err != nil {
				t.Fatalf("Sample() error: %v", err)
			}
			if !approxEqual(got, tt.want) {
				t.Errorf("Sample() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleValidation(t *testing.T) {
	rig := newTestRig(nil)

	if _, err := rig.ctrl.Sample(0, 0, 0); err == nil {
		t.Error("Sample() with count 0 should fail")
	}
	if _, err := rig.ctrl.Sample(0, 10, -1); err == nil {
		t.Error("Sample() with negative span should fail")
	}
}

func TestSampleReadErrorPropagates(t *testing.T) {
	rig := newTestRig(nil)
	rig.adc.SetErr(errors.New("spi fault"))

	if _, err := rig.ctrl.Sample(0, 5, 0); err == nil {
		t.Fatal("Sample() should propagate the read error")
	}
}

func TestCalcCurrent(t *testing.T) {
	rig := newTestRig(&config.RawFileConfig{
		VCC:         ptr.To(5.0),
		Sensitivity: ptr.To(0.1),
	})

	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0.5, want: 1.0},  // vcc/2 - vcc*0.5 = 0, so 1 - 0/sensitivity
		{in: 0.52, want: 2.0}, // 1 - (2.5-2.6)/0.1
		{in: 0.48, want: 0.0}, // 1 - (2.5-2.4)/0.1
	}

	for _, tt := range tests {
		if got := rig.ctrl.CalcCurrent(tt.in); !approxEqual(got, tt.want) {
			t.Errorf("CalcCurrent(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
