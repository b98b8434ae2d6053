/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file for this board",
	Long: `Create the configuration file with defaults, the given medium path
and a generated API key.

Examples:
  factoryconfig init --medium /sys/bus/i2c/devices/0-0050/eeprom
  factoryconfig init --config ./factoryconfig.yaml --force`,
	Args: cobra.NoArgs,
	// The file being created must not be required to exist.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		mediumPath, _ := cmd.Flags().GetString("medium")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		if config.ConfigExists(configPath) && !force {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		cfg, err := config.BootstrapConfig(configPath, mediumPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration written to %s\n", configPath)
		fmt.Fprintf(out, "Medium : %s\n", displayPath(cfg.Medium.Path))
		fmt.Fprintf(out, "API key: %s\n", cfg.Server.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func displayPath(p string) string {
	if p == "" {
		return "(in-memory)"
	}
	return p
}
