/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/factoryconfig/pkg/store"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply field values from a YAML file",
	Long: `Merge the fields present in a YAML file into the factory configuration
and write it to the medium. Absent fields keep their current value.

Example file:
  mac: "00:50:c2:12:34:56"
  secondary_mac: "00:50:c2:12:34:57"
  serial_number: 424242
  model: 5CSX-H6-42A-RC
  rtc_calibration: -35

Use "-" to read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		f, err := readFields(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		fc, _, err := s.load()
		if err != nil {
			return err
		}
		if err := fc.Apply(f); err != nil {
			return fmt.Errorf("apply fields: %w", err)
		}

		out := cmd.OutOrStdout()
		if dryRun {
			return writeYAML(out, fc)
		}
		res, err := s.save(fc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Factory configuration saved (%d bytes)\n", res.BytesSent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Bool("dry-run", false, "Print the merged configuration without writing")
}

// readFields decodes a partial update from path, or from stdin for "-".
func readFields(stdin io.Reader, path string) (store.Fields, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return store.Fields{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()
		r = file
	}

	var f store.Fields
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return store.Fields{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}
