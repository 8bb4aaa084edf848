package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"store-it/internal/infrastructure/config"
	"store-it/internal/infrastructure/di"
	"store-it/internal/logger"
	"store-it/internal/server"
	"store-it/internal/telemetry"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Application.Version)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	c, err := di.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer c.Close()

	l := logger.GetLogger()
	if cfg.Session.Secret == "" {
		l.WarnCtx(logger.EventSystemStart, "session.secret is empty; sessions will not survive a restart", nil, "", "", "")
	}

	srv := server.New(cfg.Server, c.Handler)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	l.InfoCtx(logger.EventSystemStart, "server started", map[string]any{
		"addr": cfg.Server.Addr(), "tls": cfg.Server.TLS.Enabled(), "version": cfg.Application.Version,
	}, "", "", "")

	select {
	case err := <-errCh:
		if err != nil {
			l.LogError("server failed", err, nil)
		}
	case <-ctx.Done():
	}

	l.InfoCtx(logger.EventSystemStop, "shutting down", nil, "", "", "")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.LogError("forced shutdown", err, nil)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		l.LogError("flush traces", err, nil)
	}
	l.InfoCtx(logger.EventSystemStop, "server exited", nil, "", "", "")
}
