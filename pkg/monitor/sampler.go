package monitor

import (
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Sample takes count readings from the given ADC channel, spaced evenly
// across span, and returns their arithmetic mean. It blocks for the full
// span. A read fault aborts immediately; the partial sum is discarded.
func (c *Controller) Sample(channel, count int, span time.Duration) (float64, error) {
	if count < 1 {
		return 0, pkgerrors.Errorf("sample count must be >= 1, got %d", count)
	}
	if span < 0 {
		return 0, pkgerrors.Errorf("sample span must be >= 0, got %v", span)
	}

	delay := span / time.Duration(count)

	sum := 0.0
	for i := 0; i < count; i++ {
		v, err := c.adc.Read(channel)
		if err != nil {
			return 0, err
		}
		sum += v
		time.Sleep(delay)
	}

	return sum / float64(count), nil
}

// CalcCurrent converts a raw normalized sensor voltage to the normalized
// current proxy. Pure affine remap parameterized by the supply voltage and
// the sensor sensitivity.
func (c *Controller) CalcCurrent(v float64) float64 {
	vcc := c.cfg.VCC()
	return 1 - ((vcc/2 - vcc*v) / c.cfg.Sensitivity())
}
