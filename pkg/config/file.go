package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tlyons/servoguard/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	ServoPin:     ptr.To(12),
	RelayPin:     ptr.To(27),
	VibrationPin: ptr.To(22),
	BuzzerPin:    ptr.To(17),
	// Default bit-banged SPI on the Pi's hardware SPI0 pins.
	SPIClockPin:    ptr.To(11),
	SPIMosiPin:     ptr.To(10),
	SPIMisoPin:     ptr.To(9),
	SPICsPin:       ptr.To(8),
	CurrentChannel: ptr.To(0),
	TempChannel:    ptr.To(1),

	VCC:         ptr.To(5.0),
	Sensitivity: ptr.To(0.1),
	// A tight margin above quiescent draw.
	ThresholdMultiplier: ptr.To(1.005),
	TempHigh:            ptr.To(0.89),
	TempLow:             ptr.To(0.70),
	EnableCurrent:       ptr.To(true),
	EnableVibration:     ptr.To(true),
	EnableTemp:          ptr.To(true),

	AllowNonRootAccess:  ptr.To(false),
	RecalibrateSchedule: ptr.To(""),
}

var _ Config = &File{}

// File is a JSON-file backed Config.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk representation. Absent fields fall back to
// defaults, so a partial (or empty) config file is valid.
type RawFileConfig struct {
	ServoPin       *int `json:"servoPin,omitempty"`
	RelayPin       *int `json:"relayPin,omitempty"`
	VibrationPin   *int `json:"vibrationPin,omitempty"`
	BuzzerPin      *int `json:"buzzerPin,omitempty"`
	SPIClockPin    *int `json:"spiClockPin,omitempty"`
	SPIMosiPin     *int `json:"spiMosiPin,omitempty"`
	SPIMisoPin     *int `json:"spiMisoPin,omitempty"`
	SPICsPin       *int `json:"spiCsPin,omitempty"`
	CurrentChannel *int `json:"currentChannel,omitempty"`
	TempChannel    *int `json:"tempChannel,omitempty"`

	VCC                 *float64 `json:"vcc,omitempty"`
	Sensitivity         *float64 `json:"sensitivity,omitempty"`
	ThresholdMultiplier *float64 `json:"thresholdMultiplier,omitempty"`
	TempHigh            *float64 `json:"tempHigh,omitempty"`
	TempLow             *float64 `json:"tempLow,omitempty"`
	EnableCurrent       *bool    `json:"enableCurrent,omitempty"`
	EnableVibration     *bool    `json:"enableVibration,omitempty"`
	EnableTemp          *bool    `json:"enableTemp,omitempty"`

	AllowNonRootAccess  *bool   `json:"allowNonRootAccess,omitempty"`
	RecalibrateSchedule *string `json:"recalibrateSchedule,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		ServoPin:            ptr.To(c.ServoPin()),
		RelayPin:            ptr.To(c.RelayPin()),
		VibrationPin:        ptr.To(c.VibrationPin()),
		BuzzerPin:           ptr.To(c.BuzzerPin()),
		SPIClockPin:         ptr.To(c.SPIClockPin()),
		SPIMosiPin:          ptr.To(c.SPIMosiPin()),
		SPIMisoPin:          ptr.To(c.SPIMisoPin()),
		SPICsPin:            ptr.To(c.SPICsPin()),
		CurrentChannel:      ptr.To(c.CurrentChannel()),
		TempChannel:         ptr.To(c.TempChannel()),
		VCC:                 ptr.To(c.VCC()),
		Sensitivity:         ptr.To(c.Sensitivity()),
		ThresholdMultiplier: ptr.To(c.ThresholdMultiplier()),
		TempHigh:            ptr.To(c.TempHigh()),
		TempLow:             ptr.To(c.TempLow()),
		EnableCurrent:       ptr.To(c.EnableCurrent()),
		EnableVibration:     ptr.To(c.EnableVibration()),
		EnableTemp:          ptr.To(c.EnableTemp()),
		AllowNonRootAccess:  ptr.To(c.AllowNonRootAccess()),
		RecalibrateSchedule: ptr.To(c.RecalibrateSchedule()),
	}, nil
}

func intOr(v, def *int) int {
	if v != nil {
		return *v
	}
	return *def
}

func floatOr(v, def *float64) float64 {
	if v != nil {
		return *v
	}
	return *def
}

func boolOr(v, def *bool) bool {
	if v != nil {
		return *v
	}
	return *def
}

func stringOr(v, def *string) string {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) ServoPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.ServoPin, defaultFileConfig.ServoPin)
}

func (f *File) RelayPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.RelayPin, defaultFileConfig.RelayPin)
}

func (f *File) VibrationPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.VibrationPin, defaultFileConfig.VibrationPin)
}

func (f *File) BuzzerPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.BuzzerPin, defaultFileConfig.BuzzerPin)
}

func (f *File) SPIClockPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.SPIClockPin, defaultFileConfig.SPIClockPin)
}

func (f *File) SPIMosiPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.SPIMosiPin, defaultFileConfig.SPIMosiPin)
}

func (f *File) SPIMisoPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.SPIMisoPin, defaultFileConfig.SPIMisoPin)
}

func (f *File) SPICsPin() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.SPICsPin, defaultFileConfig.SPICsPin)
}

func (f *File) CurrentChannel() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.CurrentChannel, defaultFileConfig.CurrentChannel)
}

func (f *File) TempChannel() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return intOr(f.c.TempChannel, defaultFileConfig.TempChannel)
}

func (f *File) VCC() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.VCC, defaultFileConfig.VCC)
}

func (f *File) Sensitivity() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.Sensitivity, defaultFileConfig.Sensitivity)
}

func (f *File) ThresholdMultiplier() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.ThresholdMultiplier, defaultFileConfig.ThresholdMultiplier)
}

func (f *File) TempHigh() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.TempHigh, defaultFileConfig.TempHigh)
}

func (f *File) TempLow() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return floatOr(f.c.TempLow, defaultFileConfig.TempLow)
}

func (f *File) EnableCurrent() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return boolOr(f.c.EnableCurrent, defaultFileConfig.EnableCurrent)
}

func (f *File) EnableVibration() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return boolOr(f.c.EnableVibration, defaultFileConfig.EnableVibration)
}

func (f *File) EnableTemp() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return boolOr(f.c.EnableTemp, defaultFileConfig.EnableTemp)
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return boolOr(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) RecalibrateSchedule() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return stringOr(f.c.RecalibrateSchedule, defaultFileConfig.RecalibrateSchedule)
}

func (f *File) SetThresholdMultiplier(m float64) {
	if m < 1.0 {
		panic("threshold multiplier must be >= 1.0")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ThresholdMultiplier = &m
}

func (f *File) SetTempBounds(low, high float64) {
	if low < 0 || high > 1 || low >= high {
		panic("temperature bounds must satisfy 0 <= low < high <= 1")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.TempLow = &low
	f.c.TempHigh = &high
}

func (f *File) SetEnableCurrent(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.EnableCurrent = &b
}

func (f *File) SetEnableVibration(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.EnableVibration = &b
}

func (f *File) SetEnableTemp(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.EnableTemp = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, use the empty config (all
			// defaults). Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// An empty file is also the empty config.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"servoPin":            f.ServoPin(),
		"relayPin":            f.RelayPin(),
		"vibrationPin":        f.VibrationPin(),
		"buzzerPin":           f.BuzzerPin(),
		"currentChannel":      f.CurrentChannel(),
		"tempChannel":         f.TempChannel(),
		"vcc":                 f.VCC(),
		"sensitivity":         f.Sensitivity(),
		"thresholdMultiplier": f.ThresholdMultiplier(),
		"tempHigh":            f.TempHigh(),
		"tempLow":             f.TempLow(),
		"enableCurrent":       f.EnableCurrent(),
		"enableVibration":     f.EnableVibration(),
		"enableTemp":          f.EnableTemp(),
		"allowNonRootAccess":  f.AllowNonRootAccess(),
		"recalibrateSchedule": f.RecalibrateSchedule(),
	}
}
