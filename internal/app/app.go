// Package app is the composition root: it loads configuration, wires the
// logging router, hub, and world store together, and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	server "cubeworld/server"
	"cubeworld/server/internal/config"
	servernet "cubeworld/server/internal/net"
	"cubeworld/server/logging"
	loggingSinks "cubeworld/server/logging/sinks"
)

func Run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logConfig := logging.DefaultConfig()
	logConfig.MinimumSeverity = severityFromName(cfg.Logging.Level)
	router := logging.NewRouter(logConfig, loggingSinks.NewConsoleSink(os.Stdout))
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hub := server.NewHubWithConfig(server.HubConfig{Logger: log.Default()})
	world := server.NewWorld()

	clientDir := cfg.Client.Dir
	if clientDir == "" {
		resolved, err := server.ResolveClientDir()
		if err != nil {
			log.Printf("client assets disabled: %v", err)
		} else {
			clientDir = resolved
		}
	}

	handler := servernet.NewHTTPHandler(hub, world, servernet.HTTPHandlerConfig{
		ClientDir: clientDir,
		Logger:    log.Default(),
		Events:    router,
	})

	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func severityFromName(name string) logging.Severity {
	switch name {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
