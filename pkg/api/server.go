// Package api exposes a board's factory configuration over HTTP.
//
// Reads are open; routes that change the in-memory configuration or the
// medium require the X-API-Key header.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/factoryconfig/pkg/medium"
	"github.com/ssargent/factoryconfig/pkg/store"
)

// Server holds the API server state. Requests are serialized because the
// medium supports a single user at a time.
type Server struct {
	mu       sync.Mutex
	medium   medium.Medium
	fc       *store.FactoryConfig
	lastLoad *store.LoadResult
	archive  Snapshotter
	opts     []store.Option

	config  ServerConfig
	metrics *Metrics
	log     logrus.FieldLogger
}

// NewServer creates a server over m. fc and res come from a prior
// store.Open; a nil fc triggers a load.
func NewServer(m medium.Medium, fc *store.FactoryConfig, res *store.LoadResult, config ServerConfig, metrics *Metrics, log logrus.FieldLogger, opts ...store.Option) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		medium:   m,
		fc:       fc,
		lastLoad: res,
		opts:     append([]store.Option{store.WithLogger(log)}, opts...),
		config:   config,
		metrics:  metrics,
		log:      log,
	}
	if s.fc == nil {
		_ = s.reload()
	} else {
		metrics.RecordLoad(res, fc.Blocks.Len())
	}
	return s
}

// SetArchive makes saves snapshot the previous medium contents first.
func (s *Server) SetArchive(a Snapshotter) {
	s.archive = a
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))
		r.Get("/factoryconfig", m.InstrumentHandler("GET", "/api/v1/factoryconfig", s.handleGetConfig))
		r.Get("/bootenv", m.InstrumentHandler("GET", "/api/v1/bootenv", s.handleBootEnv))

		r.Group(func(r chi.Router) {
			r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

			r.Put("/factoryconfig", m.InstrumentHandler("PUT", "/api/v1/factoryconfig", s.handlePutConfig))
			r.Post("/factoryconfig/save", m.InstrumentHandler("POST", "/api/v1/factoryconfig/save", s.handleSave))
			r.Post("/factoryconfig/reload", m.InstrumentHandler("POST", "/api/v1/factoryconfig/reload", s.handleReload))
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Starting factoryconfig API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("Shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

// reload decodes the medium again. Callers hold s.mu or own s exclusively.
func (s *Server) reload() error {
	fc, res, err := store.Open(s.medium, s.opts...)
	s.fc, s.lastLoad = fc, res
	s.metrics.RecordLoad(res, fc.Blocks.Len())
	return err
}
