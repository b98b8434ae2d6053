/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/bootenv"
	"github.com/ssargent/factoryconfig/pkg/store"
)

// envCmd represents the env command
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print boot environment variables derived from the configuration",
	Long: `Print the boot loader variables (ethaddr, eth1addr, rtccal,
clmodelnum, serial#) as a script for "fw_setenv -s".

With --current, variables that already hold the computed value in the
given fw_printenv output are left out.

Examples:
  factoryconfig env | fw_setenv -s -
  fw_printenv | factoryconfig env --current - | fw_setenv -s -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		currentPath, _ := cmd.Flags().GetString("current")

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		fc, res, err := s.load()
		if err != nil {
			return err
		}

		var current bootenv.Env
		if currentPath != "" {
			current, err = readPrintenv(cmd.InOrStdin(), currentPath)
			if err != nil {
				return err
			}
		}
		if err := writeEnv(cmd.OutOrStdout(), fc, current); err != nil {
			return err
		}
		return statusError(res)
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().String("current", "", "fw_printenv output to diff against (\"-\" for stdin)")
}

func readPrintenv(stdin io.Reader, path string) (bootenv.Env, error) {
	if path == "-" {
		return bootenv.ParsePrintenv(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return bootenv.ParsePrintenv(f)
}

// writeEnv prints the computed environment, minus entries that current
// already holds.
func writeEnv(w io.Writer, fc *store.FactoryConfig, current bootenv.Env) error {
	env, err := bootenv.Compute(fc)
	if err != nil {
		return err
	}
	if current != nil {
		env = bootenv.Changes(env, current)
	}
	return bootenv.WriteScript(w, env)
}
