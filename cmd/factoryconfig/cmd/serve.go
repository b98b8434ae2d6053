/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/api"
	"github.com/ssargent/factoryconfig/pkg/config"
)

// autoAPIKey asks serve to generate a key for the lifetime of the process.
const autoAPIKey = "auto"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Serve the factory configuration over HTTP for provisioning stations.

Reads are open. Edits, saves and reloads need the X-API-Key header. An
api_key of "auto" generates a key at startup and logs it; an empty key
disables the write routes. Saves archive the previous medium image when
archive.dir is set.

Examples:
  factoryconfig serve --medium /sys/bus/i2c/devices/0-0050/eeprom
  factoryconfig serve --port 9090 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		if flags.Changed("port") {
			s.cfg.Server.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("bind") {
			s.cfg.Server.Bind, _ = flags.GetString("bind")
		}
		if flags.Changed("api-key") {
			s.cfg.Server.APIKey, _ = flags.GetString("api-key")
		}
		noArchive, _ := flags.GetBool("no-archive")

		apiKey, err := resolveAPIKey(s.cfg.Server.APIKey)
		if err != nil {
			return err
		}
		if s.cfg.Server.APIKey == autoAPIKey {
			s.log.WithField("api_key", apiKey).Warn("Generated API key for this session")
		}

		fc, res, err := s.load()
		if err != nil {
			return err
		}
		m, err := s.openMedium()
		if err != nil {
			return err
		}

		srv := api.NewServer(m, fc, res, api.ServerConfig{
			Bind:   s.cfg.Server.Bind,
			Port:   s.cfg.Server.Port,
			APIKey: apiKey,
			Source: s.cfg.Medium.Path,
		}, api.NewMetrics(newRegistry()), s.log, s.options()...)

		if !noArchive && s.cfg.Archive.Dir != "" {
			a, err := s.openArchive()
			if err != nil {
				return err
			}
			defer a.Close()
			srv.SetArchive(a)
		}

		factory := api.NewServerFactory()
		if container != nil {
			factory = container.GetServerFactory()
		}
		if err := factory.CreateServerStarter().StartServer(cmd.Context(), srv); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().String("bind", "", "Address to bind (overrides server.bind)")
	serveCmd.Flags().String("api-key", "", "API key for write routes (overrides server.api_key)")
	serveCmd.Flags().Bool("no-archive", false, "Do not snapshot the medium before saves")
}

func resolveAPIKey(key string) (string, error) {
	if key != autoAPIKey {
		return key, nil
	}
	return config.GenerateSecureKey(16)
}

// newRegistry returns a private registry carrying the runtime collectors, so
// each server owns its metrics.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
