package http

import (
	"context"
	"net"
	"net/http"
	"website_auditor/internal/pkg/errors"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type HTTPServer struct {
	config *HTTPServerConfig
	server *http.Server
	log    *log.Logger
}

func NewHttpServer(ctx context.Context, config *HTTPServerConfig, router *chi.Mux, log *log.Logger) *HTTPServer {
	return &HTTPServer{
		config: config,
		server: &http.Server{
			Addr:              config.Host,
			Handler:           router,
			ReadTimeout:       config.Timeouts.Read,
			ReadHeaderTimeout: config.Timeouts.ReadHeader,
			WriteTimeout:      config.Timeouts.Write,
			IdleTimeout:       config.Timeouts.Idle,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		},
		log: log,
	}
}

func (s *HTTPServer) Start() error {
	s.log.Info("Starting API server on: ", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, `api server stopped`)
	}
	return nil
}

// Stop lets in-flight requests finish within the shutdown wait.
func (s *HTTPServer) Stop() error {
	if s.server == nil {
		return errors.New("server is not initialized")
	}
	s.log.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeouts.ShutdownWait)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, `failed to shutdown api server`)
	}

	s.log.Info("API server exiting")
	return nil
}
