package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/config"
	"github.com/ssargent/factoryconfig/pkg/di"
	"github.com/ssargent/factoryconfig/pkg/medium"
	"github.com/ssargent/factoryconfig/pkg/store"
)

type sessionKey struct{}

// session is the per-invocation state shared by the commands: resolved
// configuration, logger, the medium (opened on first use) and the decoded
// factory configuration.
type session struct {
	cfg        *config.Config
	configPath string
	log        *logrus.Logger

	opener      di.MediumOpener
	medium      medium.Medium
	closeMedium func() error

	fc      *store.FactoryConfig
	res     *store.LoadResult
	loadErr error
}

// sessionFrom returns the session of the running invocation. It is read from
// the root command, whose context is replaced on every execution.
func sessionFrom(cmd *cobra.Command) (*session, error) {
	s, ok := cmd.Root().Context().Value(sessionKey{}).(*session)
	if !ok {
		return nil, fmt.Errorf("session not found in context")
	}
	return s, nil
}

// configure resolves config file and flag overrides.
func (s *session) configure(cmd *cobra.Command) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	cfg, err := loadConfig(configPath, flags.Changed("config"))
	if err != nil {
		return err
	}

	if flags.Changed("medium") {
		cfg.Medium.Path, _ = flags.GetString("medium")
	}
	if flags.Changed("size") {
		cfg.Medium.Size, _ = flags.GetInt64("size")
	}
	if flags.Changed("offset") {
		cfg.Medium.BaseOffset, _ = flags.GetInt64("offset")
	}
	if flags.Changed("create") {
		cfg.Medium.Create, _ = flags.GetBool("create")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s.cfg, s.configPath, s.log = cfg, configPath, log
	if container != nil {
		s.opener = container.GetMediumOpener()
	} else {
		s.opener = di.OpenMedium
	}
	return nil
}

func (s *session) options() []store.Option {
	return []store.Option{store.WithLogger(s.log), store.WithRetries(s.cfg.Medium.Retries)}
}

// openMedium opens the configured medium once.
func (s *session) openMedium() (medium.Medium, error) {
	if s.medium != nil {
		return s.medium, nil
	}
	m, closeFn, err := s.opener(s.cfg.Medium)
	if err != nil {
		return nil, fmt.Errorf("open medium: %w", err)
	}
	s.medium, s.closeMedium = m, closeFn
	return m, nil
}

// load decodes the medium once, applying the fallback policy. The returned
// configuration is always usable; the result says how it was obtained.
func (s *session) load() (*store.FactoryConfig, *store.LoadResult, error) {
	if s.fc != nil {
		return s.fc, s.res, nil
	}
	m, err := s.openMedium()
	if err != nil {
		return nil, nil, &exitError{code: exitMedium, err: err}
	}
	s.fc, s.res, s.loadErr = store.Open(m, s.options()...)
	return s.fc, s.res, nil
}

// save writes fc back to the medium.
func (s *session) save(fc *store.FactoryConfig) (*store.WriteResult, error) {
	m, err := s.openMedium()
	if err != nil {
		return nil, &exitError{code: exitMedium, err: err}
	}
	res, err := store.NewWriter(m, s.options()...).Write(fc)
	if err != nil {
		code := exitBadConfig
		if medium.IsMediumError(err) {
			code = exitMedium
		}
		return res, &exitError{code: code, err: err}
	}
	return res, nil
}

func (s *session) close() error {
	if s.closeMedium == nil {
		return nil
	}
	err := s.closeMedium()
	s.closeMedium, s.medium = nil, nil
	return err
}
