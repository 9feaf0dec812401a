package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricPlayersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cubeworld",
		Name:      "players_online",
		Help:      "Number of currently registered connections.",
	})
	metricBroadcastFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cubeworld",
		Name:      "broadcast_frames_total",
		Help:      "Frames written across all broadcast fan-outs.",
	})
	metricBroadcastBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cubeworld",
		Name:      "broadcast_bytes_total",
		Help:      "Bytes written across all broadcast fan-outs.",
	})
	metricBlockEdits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cubeworld",
		Name:      "block_edits_total",
		Help:      "Block changes applied to the world delta store.",
	})
	metricMalformedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cubeworld",
		Name:      "malformed_messages_total",
		Help:      "Client frames dropped as unparsable or invalid.",
	})
)
