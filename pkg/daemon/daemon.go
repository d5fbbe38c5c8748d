// Package daemon hosts the controller and exposes it over a unix-socket
// HTTP API.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/events"
	"github.com/tlyons/servoguard/pkg/hal/gpio"
	"github.com/tlyons/servoguard/pkg/monitor"
)

var (
	controller *monitor.Controller
	conf       config.Config
	sseHub     *events.Hub
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/status", getStatus)
	router.GET("/config", getConfig)
	router.GET("/calibration", getCalibration)
	router.GET("/version", getVersion)
	router.GET("/events", getEvents)
	router.POST("/move", postMove)
	router.POST("/reset", postReset)
	router.POST("/calibrate", postCalibrate)
	router.POST("/monitor/start", postMonitorStart)
	router.POST("/monitor/stop", postMonitorStop)
	router.PUT("/multiplier", putMultiplier)
	router.PUT("/temp-bounds", putTempBounds)
	router.PUT("/checks/:class", putCheck)

	return router
}

// Run starts the daemon: loads config, opens the hardware, starts the
// monitor loop and serves the control API until SIGINT/SIGTERM.
func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	hw, err := gpio.Open(gpio.Pins{
		Servo:     conf.ServoPin(),
		Relay:     conf.RelayPin(),
		Vibration: conf.VibrationPin(),
		Buzzer:    conf.BuzzerPin(),
		SPIClock:  conf.SPIClockPin(),
		SPIMosi:   conf.SPIMosiPin(),
		SPIMiso:   conf.SPIMisoPin(),
		SPICs:     conf.SPICsPin(),
	})
	if err != nil {
		logrus.Fatalf("failed to open hardware: %v", err)
	}

	sseHub = events.NewHub()
	controller = monitor.New(conf, hw.ADC, hw.Vibration, hw.Servo, hw.Relay, hw.Buzzer)
	controller.AttachHub(sseHub)

	srv := &http.Server{
		Handler: router,
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			logrus.Fatal(err)
		}
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	sched := NewScheduler(recalibrateTask)
	if spec := conf.RecalibrateSchedule(); spec != "" {
		if err := sched.SetSpec(spec); err != nil {
			logrus.Errorf("invalid recalibrate schedule %q: %v", spec, err)
		}
	}
	sched.Start()

	if err := controller.Start(); err != nil {
		logrus.Errorf("failed to start monitoring: %v", err)
	}

	// Handle common process-killing signals, so we can gracefully shut
	// down and de-energize the hardware.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping scheduler")
	sched.Stop()

	logrus.Info("stopping monitor loop")
	controller.Stop()

	// Leave the mechanism de-energized and quiet, like the hardware was
	// found at boot.
	if err := hw.Buzzer.Set(false); err != nil {
		logrus.Errorf("failed to silence buzzer before exiting: %v", err)
	}
	if err := hw.Relay.Set(false); err != nil {
		logrus.Errorf("failed to cut relay power before exiting: %v", err)
	}

	logrus.Info("closing hardware")
	if err := hw.Close(); err != nil {
		logrus.Errorf("failed to close hardware: %v", err)
	}

	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Errorf("failed to remove socket file: %v", err)
	}

	logrus.Info("exiting")
	return nil
}

// recalibrateTask is the scheduled automatic recalibration. It refuses to
// run after a trip: the threshold must not be re-learned around a fault.
func recalibrateTask() error {
	if controller.State() == monitor.StateTripped {
		return errors.New("skipping scheduled recalibration: safety cutoff tripped")
	}
	_, err := controller.Recalibrate()
	return err
}
