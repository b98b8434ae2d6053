/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/rtc"
)

// rtcCmd represents the rtc command
var rtcCmd = &cobra.Command{
	Use:   "rtc",
	Short: "Show or apply the RTC crystal calibration",
	Long: `Convert the stored RTC calibration into AB1805 register values.

Without --apply the computed registers are printed. With --apply they are
written to the clock over I2C.

Examples:
  factoryconfig rtc
  factoryconfig rtc --apply --bus /dev/i2c-0 --addr 0x69
  factoryconfig rtc --square-wave on --bus /dev/i2c-0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apply, _ := cmd.Flags().GetBool("apply")
		busPath, _ := cmd.Flags().GetString("bus")
		addr, _ := cmd.Flags().GetInt("addr")
		sqw, _ := cmd.Flags().GetString("square-wave")

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}

		if sqw != "" {
			if sqw != "on" && sqw != "off" {
				return fmt.Errorf("--square-wave must be on or off, got %q", sqw)
			}
			bus, err := rtc.OpenI2C(busPath, addr)
			if err != nil {
				return err
			}
			defer bus.Close()
			if err := rtc.CalibrationMode(bus, sqw == "on"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "16 Hz calibration output %s\n", sqw)
			return nil
		}

		fc, res, err := s.load()
		if err != nil {
			return err
		}
		cal, err := fc.RtcCalibration()
		if err != nil {
			return err
		}
		setting, err := rtc.Plan(cal)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !apply {
			writeSetting(out, setting)
			return statusError(res)
		}

		bus, err := rtc.OpenI2C(busPath, addr)
		if err != nil {
			return err
		}
		defer bus.Close()
		if err := applySetting(bus, setting, s.log); err != nil {
			return err
		}
		writeSetting(out, setting)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rtcCmd)
	rtcCmd.Flags().Bool("apply", false, "Write the calibration to the clock")
	rtcCmd.Flags().String("bus", "/dev/i2c-0", "I2C bus device")
	rtcCmd.Flags().Int("addr", rtc.DefaultAddress, "RTC I2C address")
	rtcCmd.Flags().String("square-wave", "", "Turn the 16 Hz calibration output on or off")
}

func applySetting(bus rtc.RegisterBus, setting rtc.Setting, log logrus.FieldLogger) error {
	if err := rtc.Apply(bus, setting, log); err != nil {
		return fmt.Errorf("apply RTC calibration: %w", err)
	}
	return nil
}

func writeSetting(w io.Writer, s rtc.Setting) {
	fmt.Fprintf(w, "RTC Cal Value  : %d (%.1f ppm)\n", s.Calibration, float64(s.Calibration)/10)
	fmt.Fprintf(w, "Adjust         : %d\n", s.Adjust)
	fmt.Fprintf(w, "XTCAL          : %d\n", s.XTCal)
	fmt.Fprintf(w, "CMDX           : %d\n", s.CmdX)
	fmt.Fprintf(w, "OFFSETX        : %d\n", s.OffsetX)
	fmt.Fprintf(w, "XT_CAL reg     : 0x%02x\n", s.XTCalRegister())
}
