/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/factoryconfig/pkg/store"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the factory configuration",
	Long: `Decode the medium and display the factory configuration.

When the medium holds no valid configuration the defaults are shown and
the exit status is 1 (content fault) or 2 (medium fault).

Examples:
  factoryconfig show --medium /sys/bus/i2c/devices/0-0050/eeprom
  factoryconfig show --yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		fc, res, err := s.load()
		if err != nil {
			return err
		}

		if asYAML {
			err = writeYAML(cmd.OutOrStdout(), fc)
		} else {
			err = writeDisplay(cmd.OutOrStdout(), fc, res)
		}
		if err != nil {
			return err
		}
		return statusError(res)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("yaml", false, "Print as YAML")
}

// writeDisplay prints the operator facing summary.
func writeDisplay(w io.Writer, fc *store.FactoryConfig, res *store.LoadResult) error {
	v, err := fc.View()
	if err != nil {
		return err
	}
	if res != nil && res.Outcome != store.Success {
		fmt.Fprintf(w, "*** %s (%s) ***\n", res.Outcome.Describe(), res.Outcome)
	}
	fmt.Fprintf(w, "Config Version : %s\n", v.Version)
	fmt.Fprintf(w, "MAC Address    : %s\n", v.MAC)
	fmt.Fprintf(w, "MAC Address 2  : %s\n", v.SecondaryMAC)
	fmt.Fprintf(w, "Serial Number  : %d\n", v.SerialNumber)
	fmt.Fprintf(w, "Model Number   : %s\n", v.Model)
	_, err = fmt.Fprintf(w, "RTC Cal Value  : %d\n", v.RtcCalibration)
	return err
}

func writeYAML(w io.Writer, fc *store.FactoryConfig) error {
	v, err := fc.View()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
