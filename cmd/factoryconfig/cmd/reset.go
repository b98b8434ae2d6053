/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/store"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Write the default factory configuration",
	Long: `Replace the stored configuration with the defaults and no blocks.

This clears the MAC addresses, serial number and model. Pass --yes to
confirm.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to reset without --yes")
		}

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		m, err := s.openMedium()
		if err != nil {
			return &exitError{code: exitMedium, err: err}
		}

		fc := store.New(int(m.Size()))
		if _, err := s.save(fc); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Factory configuration reset to defaults")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
