package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tlyons/servoguard/pkg/config"
	"github.com/tlyons/servoguard/pkg/monitor"
)

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func bool2Text(b bool) string {
	if b {
		return color.GreenString("✔")
	}
	return color.RedString("✘")
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of servoguard",
		Long:    `Get monitor state, power state, calibration, and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			rawConf, err := apiClient.GetConfig()
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}
			conf := config.NewFileFromConfig(rawConf, "")

			cmd.Println(bold("Safety monitor:"))
			cmd.Printf("  State: %s\n", bold(string(st.Monitor)))
			cmd.Println("  Relay power: " + bool2Text(st.PowerOn))
			if st.Monitor == monitor.StateTripped {
				cmd.Println("  " + color.RedString("Safety cutoff has tripped.") +
					" Investigate the cause, then run 'servoguard reset'.")
			}

			cmd.Println(bold("Calibration:"))
			cal := st.Calibration
			if cal.CalibratedAt.IsZero() {
				cmd.Printf("  Not calibrated yet; using default threshold %s\n", bold("%.4f", cal.Threshold))
			} else {
				cmd.Printf("  Baseline: %s\n", bold("%.4f", cal.Baseline))
				cmd.Printf("  Threshold: %s (multiplier %g)\n", bold("%.4f", cal.Threshold), cal.Multiplier)
				cmd.Printf("  Calibrated: %s (%s ago)\n",
					cal.CalibratedAt.Format(time.RFC3339),
					time.Since(cal.CalibratedAt).Round(time.Second))
			}

			cmd.Println(bold("Checks:"))
			cmd.Println("  Current: " + bool2Text(conf.EnableCurrent()))
			cmd.Println("  Vibration: " + bool2Text(conf.EnableVibration()))
			cmd.Printf("  Temperature: %s (bounds [%g, %g])\n",
				bool2Text(conf.EnableTemp()), conf.TempLow(), conf.TempHigh())

			if s := conf.RecalibrateSchedule(); s != "" {
				cmd.Println(bold("Schedule:"))
				cmd.Printf("  Automatic recalibration: %s\n", s)
			}

			return nil
		},
	}
}
