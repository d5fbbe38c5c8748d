package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tlyons/servoguard/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewMoveCommand() *cobra.Command {
	var (
		calibrate     bool
		settleSeconds float64
	)

	cmd := &cobra.Command{
		Use:     "move <angle>",
		Short:   "Move the valve actuator to an angle",
		GroupID: gBasic,
		Long: `Move the valve actuator to the given angle in degrees (-90 to 90).

Monitoring is paused during the movement and resumed afterward. With
--calibrate, the current trip threshold is re-learned after the movement
settles; this takes several seconds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			angle, err := parseFloatArg(args, "angle")
			if err != nil {
				return err
			}

			ret, err := apiClient.Move(angle, calibrate, settleSeconds)
			if err != nil {
				return fmt.Errorf("failed to move: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully moved actuator to %.1f degrees", angle)

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&calibrate, "calibrate", false, "re-learn the current trip threshold after the movement")
	f.Float64Var(&settleSeconds, "settle", 1.0, "seconds to wait for the mechanism to settle")

	return cmd
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   "Restore power after a safety cutoff",
		GroupID: gBasic,
		Long: `Restore relay power after a safety cutoff.

Monitoring stays off: investigate the trip cause first, then run
'servoguard monitor start' to resume.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.Reset()
			if err != nil {
				return fmt.Errorf("failed to reset: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully reset, power restored. Run 'servoguard monitor start' to resume monitoring.")

			return nil
		},
	}
}

func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Start or stop safety monitoring",
		GroupID: gBasic,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start safety monitoring",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.StartMonitor()
				if err != nil {
					return fmt.Errorf("failed to start monitoring: %v", err)
				}

				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}

				logrus.Infof("successfully started safety monitoring")

				return nil
			},
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop safety monitoring",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.StopMonitor()
				if err != nil {
					return fmt.Errorf("failed to stop monitoring: %v", err)
				}

				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}

				logrus.Infof("successfully stopped safety monitoring")

				return nil
			},
		},
	)

	return cmd
}

func NewCalibrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "calibrate",
		Short:   "Re-learn the current trip threshold",
		GroupID: gBasic,
		Long: `Re-learn the current trip threshold.

The daemon pauses monitoring, samples the current sensor for several
seconds to establish a quiescent baseline, sets the trip threshold a
safety margin above it, then resumes monitoring. Run this while the
mechanism is in a known-good state.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cal, err := apiClient.Calibrate()
			if err != nil {
				return fmt.Errorf("failed to calibrate: %v", err)
			}

			logrus.Infof("calibrated: baseline %.4f, threshold %.4f", cal.Baseline, cal.Threshold)

			return nil
		},
	}
}
