package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var errSubscriberClosed = errors.New("subscriber closed")

// subscriberConn is the part of *websocket.Conn the hub writes through,
// kept narrow so tests can substitute a recording connection.
type subscriberConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber wraps one live connection with a write lock so concurrent
// broadcasts never interleave frames on the socket.
type Subscriber struct {
	conn   subscriberConn
	mu     sync.Mutex
	closed bool
}

func NewSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

func (s *Subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(data)
}

// writeLocked requires s.mu to be held.
func (s *Subscriber) writeLocked(data []byte) error {
	if s.closed {
		return errSubscriberClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close marks the subscriber unwritable and closes the underlying
// connection. Safe to call more than once.
func (s *Subscriber) Close() {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if !alreadyClosed {
		s.conn.Close()
	}
}

// Hub owns every live player record and fans outbound messages across their
// connections. It is the single source of truth for who is connected.
type Hub struct {
	mu        sync.Mutex
	players   map[*Subscriber]*playerState
	logger    *log.Logger
	telemetry *telemetryCounters
}

type HubConfig struct {
	Logger *log.Logger
}

func NewHub() *Hub {
	return NewHubWithConfig(HubConfig{})
}

func NewHubWithConfig(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		players:   make(map[*Subscriber]*playerState),
		logger:    logger,
		telemetry: newTelemetryCounters(),
	}
}

// Register creates a fresh player record for sub and returns a copy of it.
// Must be called exactly once per connection, before any other hub call
// touches that subscriber.
func (h *Hub) Register(sub *Subscriber) Player {
	return h.RegisterAndReplay(sub, nil)
}

// RegisterAndReplay registers sub and then invokes replay with a
// point-in-time view of the other players, all while holding the
// subscriber's write lock. A broadcast that races the registration either
// misses the new connection entirely or queues behind the lock, so every
// frame written through send reaches the client before any broadcast frame.
func (h *Hub) RegisterAndReplay(sub *Subscriber, replay func(self Player, peers []Player, send func(msg any))) Player {
	state := newPlayerState(time.Now())

	sub.mu.Lock()
	h.mu.Lock()
	h.players[sub] = state
	count := len(h.players)
	peers := make([]Player, 0, len(h.players)-1)
	for other, peer := range h.players {
		if other == sub {
			continue
		}
		peers = append(peers, peer.Player)
	}
	h.mu.Unlock()
	metricPlayersOnline.Set(float64(count))

	if replay != nil {
		replay(state.Player, peers, func(msg any) {
			h.sendLocked(sub, msg)
		})
	}
	sub.mu.Unlock()

	return state.Player
}

// sendLocked serializes and writes while the caller holds sub's write lock.
func (h *Hub) sendLocked(sub *Subscriber, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("failed to marshal message: %v", err)
		return
	}
	if err := sub.writeLocked(data); err != nil && !errors.Is(err, errSubscriberClosed) {
		h.logger.Printf("dropping frame for stale connection: %v", err)
	}
}

// UpdateMotion overwrites the movement fields of sub's record. An unknown
// subscriber is ignored so a move racing a disconnect stays harmless.
func (h *Hub) UpdateMotion(sub *Subscriber, position, forward Vec3, pitch float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[sub]
	if !ok {
		return false
	}
	state.Position = position
	state.Forward = forward
	state.Pitch = pitch
	return true
}

// Unregister removes and returns sub's record. The second result is false
// when the record was already removed, which makes teardown idempotent.
func (h *Hub) Unregister(sub *Subscriber) (Player, bool) {
	h.mu.Lock()
	state, ok := h.players[sub]
	if ok {
		delete(h.players, sub)
	}
	count := len(h.players)
	h.mu.Unlock()

	if !ok {
		return Player{}, false
	}
	metricPlayersOnline.Set(float64(count))
	return state.Player, true
}

// Snapshot copies every registered player record. The copies are detached
// from the registry, so callers may hold them across further mutations.
func (h *Hub) Snapshot() []Player {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]Player, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, state.Player)
	}
	return players
}

// Count reports how many connections are currently registered.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.players)
}

// SendTo serializes msg and writes it to a single subscriber. A write to a
// closed or failing connection is dropped; the reader goroutine owns the
// actual teardown.
func (h *Hub) SendTo(sub *Subscriber, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("failed to marshal message: %v", err)
		return
	}
	if err := sub.write(data); err != nil && !errors.Is(err, errSubscriberClosed) {
		h.logger.Printf("dropping frame for stale connection: %v", err)
	}
}

// BroadcastAll serializes msg once and sends it to every registered
// connection, including the origin if it is still registered.
func (h *Hub) BroadcastAll(msg any) {
	h.broadcast(msg, "")
}

// BroadcastExcept serializes msg once and sends it to every registered
// connection whose player id is not exceptID. Exclusion is by player id, not
// subscriber, so it holds even when the caller looked the id up separately.
func (h *Hub) BroadcastExcept(msg any, exceptID string) {
	h.broadcast(msg, exceptID)
}

func (h *Hub) broadcast(msg any, exceptID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("failed to marshal broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	targets := make([]*Subscriber, 0, len(h.players))
	for sub, state := range h.players {
		if exceptID != "" && state.ID == exceptID {
			continue
		}
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		if err := sub.write(data); err != nil && !errors.Is(err, errSubscriberClosed) {
			h.logger.Printf("dropping broadcast frame for stale connection: %v", err)
		}
	}

	h.telemetry.RecordBroadcast(len(data), len(targets))
	metricBroadcastFrames.Add(float64(len(targets)))
	metricBroadcastBytes.Add(float64(len(data) * len(targets)))
}

// RecordInbound counts one received client frame.
func (h *Hub) RecordInbound() {
	h.telemetry.RecordInbound()
}

// RecordMalformed counts one dropped unparsable or invalid client frame.
func (h *Hub) RecordMalformed() {
	h.telemetry.RecordMalformed()
	metricMalformedMessages.Inc()
}

// TelemetrySnapshot exposes the hub counters for the diagnostics endpoint.
func (h *Hub) TelemetrySnapshot() TelemetrySnapshot {
	return h.telemetry.Snapshot()
}

type DiagnosticsPlayer struct {
	ID          string `json:"id"`
	ConnectedAt int64  `json:"connectedAt"`
}

// DiagnosticsSnapshot lists the registered players for the diagnostics
// endpoint.
func (h *Hub) DiagnosticsSnapshot() []DiagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]DiagnosticsPlayer, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, DiagnosticsPlayer{
			ID:          state.ID,
			ConnectedAt: state.connectedAt.UnixMilli(),
		})
	}
	return players
}
