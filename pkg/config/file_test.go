package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tlyons/servoguard/pkg/utils/ptr"
)

func TestDefaultsWhenFileMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := f.ServoPin(); got != 12 {
		t.Errorf("ServoPin() = %d, want 12", got)
	}
	if got := f.RelayPin(); got != 27 {
		t.Errorf("RelayPin() = %d, want 27", got)
	}
	if got := f.VCC(); got != 5.0 {
		t.Errorf("VCC() = %v, want 5.0", got)
	}
	if got := f.ThresholdMultiplier(); got != 1.005 {
		t.Errorf("ThresholdMultiplier() = %v, want 1.005", got)
	}
	if got := f.TempHigh(); got != 0.89 {
		t.Errorf("TempHigh() = %v, want 0.89", got)
	}
	if got := f.TempLow(); got != 0.70 {
		t.Errorf("TempLow() = %v, want 0.70", got)
	}
	if !f.EnableCurrent() || !f.EnableVibration() || !f.EnableTemp() {
		t.Error("check classes not enabled by default")
	}
	if f.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() = true by default")
	}
}

func TestPartialFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servoguard.json")
	if err := os.WriteFile(path, []byte(`{"servoPin": 18, "thresholdMultiplier": 1.1}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := f.ServoPin(); got != 18 {
		t.Errorf("ServoPin() = %d, want 18", got)
	}
	if got := f.ThresholdMultiplier(); got != 1.1 {
		t.Errorf("ThresholdMultiplier() = %v, want 1.1", got)
	}
	// Untouched fields come from defaults.
	if got := f.RelayPin(); got != 27 {
		t.Errorf("RelayPin() = %d, want 27", got)
	}
}

func TestEmptyFileIsEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servoguard.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	if got := f.VibrationPin(); got != 22 {
		t.Errorf("VibrationPin() = %d, want 22", got)
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servoguard.json")
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile(path); err == nil {
		t.Error("NewFile() accepted malformed JSON")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servoguard.json")

	f := NewFileFromConfig(&RawFileConfig{}, path)
	f.SetThresholdMultiplier(1.02)
	f.SetTempBounds(0.6, 0.9)
	f.SetEnableVibration(false)

	if err := f.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	if got := g.ThresholdMultiplier(); got != 1.02 {
		t.Errorf("ThresholdMultiplier() = %v, want 1.02", got)
	}
	if got := g.TempLow(); got != 0.6 {
		t.Errorf("TempLow() = %v, want 0.6", got)
	}
	if got := g.TempHigh(); got != 0.9 {
		t.Errorf("TempHigh() = %v, want 0.9", got)
	}
	if g.EnableVibration() {
		t.Error("EnableVibration() = true after disabling")
	}
}

func TestSetThresholdMultiplierRejectsBelowOne(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	defer func() {
		if recover() == nil {
			t.Error("SetThresholdMultiplier(0.9) did not panic")
		}
	}()
	f.SetThresholdMultiplier(0.9)
}

func TestSetTempBoundsRejectsInverted(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	defer func() {
		if recover() == nil {
			t.Error("SetTempBounds(0.9, 0.6) did not panic")
		}
	}()
	f.SetTempBounds(0.9, 0.6)
}

func TestNewRawFileConfigFromConfig(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{
		ServoPin: ptr.To(5),
	}, "")

	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatalf("NewRawFileConfigFromConfig() error: %v", err)
	}
	if raw.ServoPin == nil || *raw.ServoPin != 5 {
		t.Errorf("ServoPin = %v, want 5", raw.ServoPin)
	}
	// Defaults are materialized so the snapshot is complete.
	if raw.TempHigh == nil || *raw.TempHigh != 0.89 {
		t.Errorf("TempHigh = %v, want 0.89", raw.TempHigh)
	}
}
