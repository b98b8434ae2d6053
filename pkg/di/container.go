// Package di provides dependency injection container
package di

import (
	"github.com/sirupsen/logrus"

	"github.com/ssargent/factoryconfig/pkg/api"     //nolint:depguard
	"github.com/ssargent/factoryconfig/pkg/archive" //nolint:depguard
	"github.com/ssargent/factoryconfig/pkg/config"  //nolint:depguard
	"github.com/ssargent/factoryconfig/pkg/medium"  //nolint:depguard
)

// MediumOpener opens the medium described by cfg. The returned close
// function is never nil.
type MediumOpener func(cfg config.Medium) (medium.Medium, func() error, error)

// ArchiveOpener opens the snapshot archive in dir.
type ArchiveOpener func(dir string, log logrus.FieldLogger) (*archive.Store, error)

// Container holds all the dependencies for the application
type Container struct {
	mediumOpener  MediumOpener
	archiveOpener ArchiveOpener
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		mediumOpener:  OpenMedium,
		archiveOpener: archive.Open,
		serverFactory: api.NewServerFactory(),
	}
}

// GetMediumOpener returns the medium opener
func (c *Container) GetMediumOpener() MediumOpener {
	return c.mediumOpener
}

// SetMediumOpener allows overriding the medium opener (for testing)
func (c *Container) SetMediumOpener(opener MediumOpener) {
	c.mediumOpener = opener
}

// GetArchiveOpener returns the archive opener
func (c *Container) GetArchiveOpener() ArchiveOpener {
	return c.archiveOpener
}

// SetArchiveOpener allows overriding the archive opener (for testing)
func (c *Container) SetArchiveOpener(opener ArchiveOpener) {
	c.archiveOpener = opener
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenMedium is the default MediumOpener. An empty path selects an erased
// in-memory medium; a non-zero base offset restricts access to a region.
func OpenMedium(cfg config.Medium) (medium.Medium, func() error, error) {
	noop := func() error { return nil }

	var (
		m       medium.Medium
		closeFn = noop
	)
	if cfg.Path == "" {
		m = medium.NewMemory(int(cfg.Size))
	} else {
		f, err := medium.OpenFile(medium.FileConfig{Path: cfg.Path, Size: cfg.Size, Create: cfg.Create})
		if err != nil {
			return nil, noop, err
		}
		m, closeFn = f, f.Close
	}

	if cfg.BaseOffset > 0 {
		r, err := medium.NewRegion(m, cfg.BaseOffset)
		if err != nil {
			closeFn()
			return nil, noop, err
		}
		m = r
	}
	return m, closeFn, nil
}
