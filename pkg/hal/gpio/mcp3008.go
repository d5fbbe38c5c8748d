//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"

	"github.com/tlyons/servoguard/pkg/hal"
)

// mcp3008 reads the 10-bit MCP3008 ADC over bit-banged SPI (mode 0). Go
// syscall latency keeps the clock well under the chip's maximum rate, so
// no explicit delays are needed between edges.
type mcp3008 struct {
	mu   sync.Mutex
	clk  *gpiocdev.Line
	mosi *gpiocdev.Line
	miso *gpiocdev.Line
	cs   *gpiocdev.Line
}

func newMCP3008(chip *gpiocdev.Chip, pins Pins) (*mcp3008, error) {
	clk, err := chip.RequestLine(pins.SPIClock, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request spi clk pin %d: %w", pins.SPIClock, err)
	}
	mosi, err := chip.RequestLine(pins.SPIMosi, gpiocdev.AsOutput(0))
	if err != nil {
		_ = clk.Close()
		return nil, fmt.Errorf("request spi mosi pin %d: %w", pins.SPIMosi, err)
	}
	miso, err := chip.RequestLine(pins.SPIMiso, gpiocdev.AsInput)
	if err != nil {
		_ = clk.Close()
		_ = mosi.Close()
		return nil, fmt.Errorf("request spi miso pin %d: %w", pins.SPIMiso, err)
	}
	cs, err := chip.RequestLine(pins.SPICs, gpiocdev.AsOutput(1))
	if err != nil {
		_ = clk.Close()
		_ = mosi.Close()
		_ = miso.Close()
		return nil, fmt.Errorf("request spi cs pin %d: %w", pins.SPICs, err)
	}

	return &mcp3008{clk: clk, mosi: mosi, miso: miso, cs: cs}, nil
}

func (a *mcp3008) lines() []*gpiocdev.Line {
	return []*gpiocdev.Line{a.clk, a.mosi, a.miso, a.cs}
}

// Read performs one single-ended conversion and returns the result
// normalized to [0, 1].
func (a *mcp3008) Read(channel int) (float64, error) {
	if channel < 0 || channel > 7 {
		return 0, &hal.SensorReadError{
			Sensor:  "adc",
			Channel: channel,
			Err:     fmt.Errorf("mcp3008 has channels 0-7"),
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	raw, err := a.transact(channel)
	if err != nil {
		return 0, &hal.SensorReadError{Sensor: "adc", Channel: channel, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"channel": channel,
		"raw":     raw,
	}).Trace("ADC conversion succeed")

	return float64(raw) / 1023.0, nil
}

// transact clocks out the start/single/channel bits and clocks in the null
// bit plus 10 data bits, per the MCP3008 datasheet.
func (a *mcp3008) transact(channel int) (int, error) {
	if err := a.cs.SetValue(0); err != nil {
		return 0, err
	}
	defer func() {
		_ = a.cs.SetValue(1)
		_ = a.clk.SetValue(0)
	}()

	// Start bit, single-ended mode, 3 channel select bits.
	cmd := []int{1, 1, channel >> 2 & 1, channel >> 1 & 1, channel & 1}
	for _, bit := range cmd {
		if err := a.mosi.SetValue(bit); err != nil {
			return 0, err
		}
		if err := a.clock(); err != nil {
			return 0, err
		}
	}

	// One null bit, then 10 data bits MSB first.
	value := 0
	for i := 0; i < 11; i++ {
		if err := a.clock(); err != nil {
			return 0, err
		}
		bit, err := a.miso.Value()
		if err != nil {
			return 0, err
		}
		value = value<<1 | bit
	}

	return value & 0x3ff, nil
}

func (a *mcp3008) clock() error {
	if err := a.clk.SetValue(1); err != nil {
		return err
	}
	return a.clk.SetValue(0)
}
