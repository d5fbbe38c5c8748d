package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/monitor"
)

// MoveRequest is the body of POST /move.
type MoveRequest struct {
	Angle         float64 `json:"angle"`
	Calibrate     bool    `json:"calibrate"`
	SettleSeconds float64 `json:"settleSeconds"`
}

// TempBounds is the body of PUT /temp-bounds.
type TempBounds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (c *Client) GetStatus() (*monitor.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st monitor.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetCalibration() (*monitor.Calibration, error) {
	ret, err := c.Get("/calibration")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration")
	}

	var cal monitor.Calibration
	if err := json.Unmarshal([]byte(ret), &cal); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration")
	}
	return &cal, nil
}

func (c *Client) Move(angle float64, calibrate bool, settleSeconds float64) (string, error) {
	body, err := json.Marshal(MoveRequest{
		Angle:         angle,
		Calibrate:     calibrate,
		SettleSeconds: settleSeconds,
	})
	if err != nil {
		return "", err
	}
	return c.Post("/move", string(body))
}

func (c *Client) Reset() (string, error) {
	return c.Post("/reset", "")
}

func (c *Client) Calibrate() (*monitor.Calibration, error) {
	ret, err := c.Post("/calibrate", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to calibrate")
	}

	var cal monitor.Calibration
	if err := json.Unmarshal([]byte(ret), &cal); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration")
	}
	return &cal, nil
}

func (c *Client) StartMonitor() (string, error) {
	return c.Post("/monitor/start", "")
}

func (c *Client) StopMonitor() (string, error) {
	return c.Post("/monitor/stop", "")
}

func (c *Client) SetThresholdMultiplier(m float64) (string, error) {
	return c.Put("/multiplier", strconv.FormatFloat(m, 'f', -1, 64))
}

func (c *Client) SetTempBounds(low, high float64) (string, error) {
	body, err := json.Marshal(TempBounds{Low: low, High: high})
	if err != nil {
		return "", err
	}
	return c.Put("/temp-bounds", string(body))
}

// SetCheck enables or disables a violation class ("current", "vibration"
// or "temp").
func (c *Client) SetCheck(class string, enabled bool) (string, error) {
	return c.Put(fmt.Sprintf("/checks/%s", class), strconv.FormatBool(enabled))
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	if len(ret) >= 2 && ret[0] == '"' {
		// Remove "" around the JSON string without a decoder.
		ret = ret[1 : len(ret)-1]
	}
	return ret, nil
}
