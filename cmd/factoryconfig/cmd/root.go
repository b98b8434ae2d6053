/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/config"
	"github.com/ssargent/factoryconfig/pkg/di"
	"github.com/ssargent/factoryconfig/pkg/store"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// Process exit codes.
const (
	exitOK        = 0
	exitBadConfig = 1
	exitMedium    = 2
)

// exitError carries a process exit code. A nil err means the command already
// reported the problem.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCodeFor maps a load status to a process exit code.
func exitCodeFor(status store.Status) int {
	switch status {
	case store.StatusOK:
		return exitOK
	case store.StatusMedium:
		return exitMedium
	}
	return exitBadConfig
}

// statusError turns a non-success load outcome into an exitError, or nil.
func statusError(res *store.LoadResult) error {
	code := exitCodeFor(res.Outcome.Status())
	if code == exitOK {
		return nil
	}
	return &exitError{code: code}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "factoryconfig",
	Short: "Factory configuration EEPROM tool",
	Long: `factoryconfig reads, edits and writes the factory configuration
block stored in a board's serial EEPROM: MAC addresses, serial number,
model number and RTC calibration.

The medium is a sysfs EEPROM node or an image file; without one an
erased in-memory medium is used.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		return s.configure(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, rootCmd)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, root *cobra.Command) int {
	s := &session{}
	err := root.ExecuteContext(context.WithValue(ctx, sessionKey{}, s))
	if cerr := s.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return exitOK
	}

	var eerr *exitError
	if errors.As(err, &eerr) {
		if eerr.err != nil {
			fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", eerr.err)
		}
		return eerr.code
	}
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return exitBadConfig
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().StringP("medium", "m", "", "EEPROM node or image file (overrides medium.path)")
	rootCmd.PersistentFlags().Int64("size", 0, "Medium size in bytes (overrides medium.size)")
	rootCmd.PersistentFlags().Int64("offset", -1, "Offset of the configuration inside the medium (overrides medium.base_offset)")
	rootCmd.PersistentFlags().Bool("create", false, "Create an erased image file if the medium does not exist")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides logging.level)")
}

// loadConfig resolves the configuration file. A missing default file yields
// the defaults; a missing explicit file is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if !config.ConfigExists(path) {
		if explicit {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}
