/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Interactively edit the factory configuration",
	Long: `Prompt for each editable field and write the result to the medium.

Press return to keep the shown value. Enter '.' to stop early; answers
given before it are still written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		fc, _, err := s.load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if _, err := editInteractive(cmd.InOrStdin(), out, fc); err != nil {
			return err
		}

		res, err := s.save(fc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Factory configuration saved (%d bytes)\n", res.BytesSent)
		return writeDisplay(out, fc, nil)
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
