package daemon

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tlyons/servoguard/pkg/client"
	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/monitor"
	"github.com/tlyons/servoguard/pkg/version"
)

func getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, controller.Status())
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getCalibration(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, controller.Calibration())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func postMove(c *gin.Context) {
	var req client.MoveRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if req.SettleSeconds < 0 {
		c.String(http.StatusBadRequest, "settleSeconds must be >= 0")
		return
	}

	settle := time.Duration(req.SettleSeconds * float64(time.Second))
	if err := controller.Move(req.Angle, req.Calibrate, settle); err != nil {
		if errors.Is(err, monitor.ErrAngleOutOfRange) {
			_ = c.AbortWithError(http.StatusBadRequest, err)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, "moved")
}

func postReset(c *gin.Context) {
	if err := controller.Reset(); err != nil {
		if errors.Is(err, monitor.ErrMonitorRunning) {
			_ = c.AbortWithError(http.StatusConflict, err)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, "reset")
}

func postCalibrate(c *gin.Context) {
	cal, err := controller.Recalibrate()
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, cal)
}

func postMonitorStart(c *gin.Context) {
	if err := controller.Start(); err != nil {
		if errors.Is(err, monitor.ErrTripped) {
			_ = c.AbortWithError(http.StatusConflict, err)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, "monitoring started")
}

func postMonitorStop(c *gin.Context) {
	controller.Stop()
	c.IndentedJSON(http.StatusOK, "monitoring stopped")
}

func putMultiplier(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	m, err := strconv.ParseFloat(string(body), 64)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if m < 1.0 {
		c.String(http.StatusBadRequest, "threshold multiplier must be >= 1.0")
		return
	}

	conf.SetThresholdMultiplier(m)
	if err := conf.Save(); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, "threshold multiplier set, takes effect at next calibration")
}

func putTempBounds(c *gin.Context) {
	var req client.TempBounds
	if err := c.BindJSON(&req); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if req.Low < 0 || req.High > 1 || req.Low >= req.High {
		c.String(http.StatusBadRequest, "bounds must satisfy 0 <= low < high <= 1")
		return
	}

	conf.SetTempBounds(req.Low, req.High)
	if err := conf.Save(); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, "temperature bounds set")
}

func putCheck(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	enabled, err := strconv.ParseBool(string(body))
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	switch c.Param("class") {
	case "current":
		conf.SetEnableCurrent(enabled)
	case "vibration":
		conf.SetEnableVibration(enabled)
	case "temp", "temperature":
		conf.SetEnableTemp(enabled)
	default:
		c.String(http.StatusBadRequest, "unknown check class %q", c.Param("class"))
		return
	}

	if err := conf.Save(); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, "check updated")
}

func getEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
