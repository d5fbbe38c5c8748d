package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewChecksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checks",
		Short:   "Enable or disable violation classes",
		GroupID: gAdvanced,
		Long: `Enable or disable a violation class (current, vibration, temp).

A disabled class is still read and logged every poll cycle, but it can no
longer trigger a safety cutoff. Useful while tuning thresholds.`,
	}

	for _, class := range []string{"current", "vibration", "temp"} {
		cmd.AddCommand(newCheckClassCommand(class))
	}

	return cmd
}

func newCheckClassCommand(class string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   class,
		Short: "Enable or disable the " + class + " check",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable the " + class + " check",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SetCheck(class, true)
				if err != nil {
					return fmt.Errorf("failed to enable %s check: %v", class, err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully enabled %s check", class)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable the " + class + " check",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SetCheck(class, false)
				if err != nil {
					return fmt.Errorf("failed to disable %s check: %v", class, err)
				}
				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}
				logrus.Infof("successfully disabled %s check", class)
				return nil
			},
		},
	)

	return cmd
}

func NewMultiplierCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "multiplier <factor>",
		Short:   "Set the threshold safety margin multiplier",
		GroupID: gAdvanced,
		Long: `Set the factor the calibrated current baseline is multiplied by to get
the trip threshold. Must be >= 1.0; the default 1.005 is a tight margin
above quiescent draw. Takes effect at the next calibration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			m, err := parseFloatArg(args, "multiplier")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetThresholdMultiplier(m)
			if err != nil {
				return fmt.Errorf("failed to set multiplier: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set threshold multiplier to %g", m)

			return nil
		},
	}
}

func NewTempBoundsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "temp-bounds <low> <high>",
		Short:   "Set the temperature violation bounds",
		GroupID: gAdvanced,
		Long: `Set the normalized temperature bounds. A reading outside [low, high]
is a violation. Both values are in the sensor's normalized 0-1 range.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			low, err := parseFloatArg(args[:1], "low bound")
			if err != nil {
				return err
			}
			high, err := parseFloatArg(args[1:], "high bound")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetTempBounds(low, high)
			if err != nil {
				return fmt.Errorf("failed to set temperature bounds: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set temperature bounds to [%g, %g]", low, high)

			return nil
		},
	}
}
