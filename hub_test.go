package server

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type recordingConn struct {
	mu        sync.Mutex
	frames    [][]byte
	deadlines int
	closed    bool
}

func (c *recordingConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	c.frames = append(c.frames, frame)
	return nil
}

func (c *recordingConn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines++
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := make([][]byte, len(c.frames))
	copy(frames, c.frames)
	return frames
}

func newTestSubscriber() (*Subscriber, *recordingConn) {
	conn := &recordingConn{}
	return &Subscriber{conn: conn}, conn
}

func decodeFrame(t *testing.T, frame []byte) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("failed to decode frame %q: %v", frame, err)
	}
	return decoded
}

func TestRegisterAssignsSpawnDefaults(t *testing.T) {
	hub := NewHub()
	sub, _ := newTestSubscriber()

	player := hub.Register(sub)

	if player.ID == "" {
		t.Fatalf("expected a non-empty player id")
	}
	if player.Position != (Vec3{0, 102, 0}) {
		t.Fatalf("unexpected spawn position %v", player.Position)
	}
	if player.Forward != (Vec3{0, 0, -1}) {
		t.Fatalf("unexpected spawn forward %v", player.Forward)
	}
	if player.Pitch != 0 {
		t.Fatalf("expected zero spawn pitch, got %v", player.Pitch)
	}
	for _, channel := range []float64{player.Color.R, player.Color.G, player.Color.B} {
		if channel < 0.3 || channel >= 1.0 {
			t.Fatalf("color channel %v outside [0.3, 1.0)", channel)
		}
	}

	other, _ := newTestSubscriber()
	second := hub.Register(other)
	if second.ID == player.ID {
		t.Fatalf("expected unique ids, both were %s", player.ID)
	}
}

func TestRegistryCountTracksLifecycle(t *testing.T) {
	hub := NewHub()

	subs := make([]*Subscriber, 0, 3)
	for i := 0; i < 3; i++ {
		sub, _ := newTestSubscriber()
		hub.Register(sub)
		subs = append(subs, sub)
	}
	if got := hub.Count(); got != 3 {
		t.Fatalf("expected 3 registered connections, got %d", got)
	}

	if _, ok := hub.Unregister(subs[0]); !ok {
		t.Fatalf("expected first unregister to return the record")
	}
	if _, ok := hub.Unregister(subs[0]); ok {
		t.Fatalf("expected second unregister of the same subscriber to report absence")
	}
	if got := hub.Count(); got != 2 {
		t.Fatalf("expected 2 registered connections after unregister, got %d", got)
	}
}

func TestUpdateMotionUnknownSubscriberIgnored(t *testing.T) {
	hub := NewHub()
	sub, _ := newTestSubscriber()

	if hub.UpdateMotion(sub, Vec3{1, 2, 3}, Vec3{0, 0, 1}, 0.5) {
		t.Fatalf("expected update for an unregistered subscriber to be ignored")
	}
}

func TestUpdateMotionOverwritesRecord(t *testing.T) {
	hub := NewHub()
	sub, _ := newTestSubscriber()
	player := hub.Register(sub)

	if !hub.UpdateMotion(sub, Vec3{4, 5, 6}, Vec3{1, 0, 0}, -0.25) {
		t.Fatalf("expected update for a registered subscriber to succeed")
	}

	snapshot := hub.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected a single record, got %d", len(snapshot))
	}
	got := snapshot[0]
	if got.ID != player.ID {
		t.Fatalf("expected record for %s, got %s", player.ID, got.ID)
	}
	if got.Position != (Vec3{4, 5, 6}) || got.Forward != (Vec3{1, 0, 0}) || got.Pitch != -0.25 {
		t.Fatalf("record not updated: %+v", got)
	}
}

func TestBroadcastExceptSkipsSenderByID(t *testing.T) {
	hub := NewHub()

	subA, connA := newTestSubscriber()
	subB, connB := newTestSubscriber()
	subC, connC := newTestSubscriber()
	playerA := hub.Register(subA)
	hub.Register(subB)
	hub.Register(subC)

	hub.BroadcastExcept(map[string]any{"type": "playerMove", "id": playerA.ID}, playerA.ID)

	if frames := connA.Frames(); len(frames) != 0 {
		t.Fatalf("expected sender to receive nothing, got %d frames", len(frames))
	}
	for name, conn := range map[string]*recordingConn{"B": connB, "C": connC} {
		frames := conn.Frames()
		if len(frames) != 1 {
			t.Fatalf("expected %s to receive exactly one frame, got %d", name, len(frames))
		}
		decoded := decodeFrame(t, frames[0])
		if decoded["type"] != "playerMove" || decoded["id"] != playerA.ID {
			t.Fatalf("unexpected frame for %s: %v", name, decoded)
		}
	}
}

func TestBroadcastAllReachesEveryConnection(t *testing.T) {
	hub := NewHub()

	conns := make([]*recordingConn, 0, 3)
	for i := 0; i < 3; i++ {
		sub, conn := newTestSubscriber()
		hub.Register(sub)
		conns = append(conns, conn)
	}

	hub.BroadcastAll(map[string]any{"type": "playerLeave", "id": "gone"})

	for i, conn := range conns {
		if frames := conn.Frames(); len(frames) != 1 {
			t.Fatalf("expected connection %d to receive one frame, got %d", i, len(frames))
		}
	}
}

func TestSendToClosedSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	sub, conn := newTestSubscriber()
	hub.Register(sub)

	sub.Close()
	hub.SendTo(sub, map[string]any{"type": "init"})

	if frames := conn.Frames(); len(frames) != 0 {
		t.Fatalf("expected no frames after close, got %d", len(frames))
	}
	if !conn.closed {
		t.Fatalf("expected underlying connection to be closed")
	}
}

func TestRegisterAndReplayDeliversReplayFirst(t *testing.T) {
	hub := NewHub()

	subA, _ := newTestSubscriber()
	playerA := hub.Register(subA)

	subB, connB := newTestSubscriber()
	var replayPeers []Player
	playerB := hub.RegisterAndReplay(subB, func(self Player, peers []Player, send func(msg any)) {
		replayPeers = peers
		send(map[string]any{"type": "init", "id": self.ID})
		for _, peer := range peers {
			send(map[string]any{"type": "playerJoin", "id": peer.ID})
		}
	})

	if len(replayPeers) != 1 || replayPeers[0].ID != playerA.ID {
		t.Fatalf("expected replay peers to contain only %s, got %+v", playerA.ID, replayPeers)
	}

	hub.BroadcastAll(map[string]any{"type": "playerMove", "id": playerA.ID})

	frames := connB.Frames()
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames for the new connection, got %d", len(frames))
	}
	if decoded := decodeFrame(t, frames[0]); decoded["type"] != "init" || decoded["id"] != playerB.ID {
		t.Fatalf("expected init first, got %v", decoded)
	}
	if decoded := decodeFrame(t, frames[1]); decoded["type"] != "playerJoin" {
		t.Fatalf("expected playerJoin second, got %v", decoded)
	}
	if decoded := decodeFrame(t, frames[2]); decoded["type"] != "playerMove" {
		t.Fatalf("expected broadcast after replay, got %v", decoded)
	}
}

func TestUnregisterReturnsFinalRecord(t *testing.T) {
	hub := NewHub()
	sub, _ := newTestSubscriber()
	player := hub.Register(sub)
	hub.UpdateMotion(sub, Vec3{7, 8, 9}, Vec3{0, 1, 0}, 1.5)

	removed, ok := hub.Unregister(sub)
	if !ok {
		t.Fatalf("expected unregister to return the record")
	}
	if removed.ID != player.ID || removed.Position != (Vec3{7, 8, 9}) {
		t.Fatalf("unexpected removed record: %+v", removed)
	}
	if got := hub.Count(); got != 0 {
		t.Fatalf("expected empty registry, got %d", got)
	}
}
