package config

import "github.com/sirupsen/logrus"

// Config is the controller configuration. Pin assignments and sensor
// constants are fixed at startup; the policy values (threshold multiplier,
// temperature bounds, per-class enable flags) are adjustable at runtime
// through the daemon API.
type Config interface {
	ServoPin() int
	RelayPin() int
	VibrationPin() int
	BuzzerPin() int
	SPIClockPin() int
	SPIMosiPin() int
	SPIMisoPin() int
	SPICsPin() int
	CurrentChannel() int
	TempChannel() int

	VCC() float64
	Sensitivity() float64
	ThresholdMultiplier() float64
	TempHigh() float64
	TempLow() float64
	EnableCurrent() bool
	EnableVibration() bool
	EnableTemp() bool

	AllowNonRootAccess() bool
	RecalibrateSchedule() string

	SetThresholdMultiplier(float64)
	SetTempBounds(low, high float64)
	SetEnableCurrent(bool)
	SetEnableVibration(bool)
	SetEnableTemp(bool)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
