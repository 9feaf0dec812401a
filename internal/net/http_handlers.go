// Package net assembles the HTTP surface: health, diagnostics, Prometheus
// metrics, the websocket endpoint, and the static client assets.
package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	server "cubeworld/server"
	"cubeworld/server/internal/net/ws"
	"cubeworld/server/logging"
)

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
	Events    logging.Publisher
}

func NewHTTPHandler(hub *server.Hub, world *server.World, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string                     `json:"status"`
			ServerTime int64                      `json:"serverTime"`
			Players    []server.DiagnosticsPlayer `json:"players"`
			WorldEdits int                        `json:"worldEdits"`
			Telemetry  server.TelemetrySnapshot   `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Players:    hub.DiagnosticsSnapshot(),
			WorldEdits: world.Len(),
			Telemetry:  hub.TelemetrySnapshot(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.Handle("/metrics", promhttp.Handler())

	wsHandler := ws.NewHandler(hub, world, ws.HandlerConfig{Logger: logger, Events: cfg.Events})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.ClientDir != "" {
		mux.Handle("/", nethttp.FileServer(nethttp.Dir(cfg.ClientDir)))
	}

	return mux
}
