package server

import "sync/atomic"

// telemetryCounters tracks broadcast volume in-process. The numbers feed the
// diagnostics endpoint; Prometheus collectors in metrics.go cover scraping.
type telemetryCounters struct {
	broadcasts        atomic.Uint64
	framesSent        atomic.Uint64
	bytesSent         atomic.Uint64
	messagesIn        atomic.Uint64
	malformedMessages atomic.Uint64
}

type TelemetrySnapshot struct {
	Broadcasts        uint64 `json:"broadcasts"`
	FramesSent        uint64 `json:"framesSent"`
	BytesSent         uint64 `json:"bytesSent"`
	MessagesIn        uint64 `json:"messagesIn"`
	MalformedMessages uint64 `json:"malformedMessages"`
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

// RecordBroadcast accounts one serialize-once fan-out of encodedBytes to
// conns connections.
func (t *telemetryCounters) RecordBroadcast(encodedBytes, conns int) {
	if encodedBytes < 0 {
		encodedBytes = 0
	}
	if conns < 0 {
		conns = 0
	}
	t.broadcasts.Add(1)
	t.framesSent.Add(uint64(conns))
	t.bytesSent.Add(uint64(encodedBytes) * uint64(conns))
}

func (t *telemetryCounters) RecordInbound() {
	t.messagesIn.Add(1)
}

func (t *telemetryCounters) RecordMalformed() {
	t.malformedMessages.Add(1)
}

func (t *telemetryCounters) Snapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		Broadcasts:        t.broadcasts.Load(),
		FramesSent:        t.framesSent.Load(),
		BytesSent:         t.bytesSent.Load(),
		MessagesIn:        t.messagesIn.Load(),
		MalformedMessages: t.malformedMessages.Load(),
	}
}
