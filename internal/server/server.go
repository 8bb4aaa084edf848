package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"store-it/internal/handler"
	"store-it/internal/infrastructure/config"
	"store-it/internal/logger"
	"store-it/internal/middleware"
)

// Server is the HTTP server with its middleware chain attached.
type Server struct {
	Router *mux.Router
	cfg    config.ServerConfig
	http   *http.Server
}

// New builds the router. Order matters: request id first so every later
// log line carries it, then panic recovery, HTTPS redirect, CORS
// (preflight) and logging. Session and user resolution are attached to the
// API subrouter by the handler.
func New(cfg config.ServerConfig, h *handler.Handler) *Server {
	router := mux.NewRouter()

	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandlerMiddleware)
	router.Use(middleware.HTTPSRedirect(cfg.DisableHTTPSRedirect || !cfg.TLS.Enabled(), cfg.Port))
	router.Use(middleware.CorsMiddleware)
	router.Use(middleware.LoggingMiddleware)

	h.RegisterRoutes(router)

	return &Server{
		Router: router,
		cfg:    cfg,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe serves TLS when a key pair is configured and plain HTTP
// otherwise. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	var err error
	if s.cfg.TLS.Enabled() {
		logger.GetLogger().InfoCtx(logger.EventSystemStart, "HTTPS server listening",
			map[string]any{"addr": s.http.Addr}, "", "", "")
		err = s.http.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	} else {
		logger.GetLogger().InfoCtx(logger.EventSystemStart, "HTTP server listening",
			map[string]any{"addr": s.http.Addr}, "", "", "")
		err = s.http.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
