// Package ws upgrades inbound connections and runs the per-connection
// session protocol: register, handshake replay, message dispatch, teardown.
package ws

import (
	"context"
	"log"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	server "cubeworld/server"
	"cubeworld/server/internal/net/proto"
	"cubeworld/server/logging"
)

// maxFrameBytes bounds inbound frames so a hostile payload cannot balloon
// memory. Legitimate client frames stay far below this.
const maxFrameBytes = 64 * 1024

type HandlerConfig struct {
	Logger *log.Logger
	Events logging.Publisher
}

type Handler struct {
	hub      *server.Hub
	world    *server.World
	logger   *log.Logger
	events   logging.Publisher
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, world *server.World, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	events := cfg.Events
	if events == nil {
		events = logging.NopPublisher()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		world:    world,
		logger:   logger,
		events:   events,
		upgrader: upgrader,
	}
}

// Handle upgrades the request and runs the session to completion. One
// goroutine per connection; it exits when the read loop sees a close or a
// transport error, and teardown runs on every exit path.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	sub := server.NewSubscriber(conn)

	// Handshake: identity first, then the current players, then the world
	// edits. The replay runs under the subscriber's write lock, so no
	// concurrent broadcast frame can reach the client before it completes.
	player := h.hub.RegisterAndReplay(sub, func(self server.Player, peers []server.Player, send func(msg any)) {
		send(proto.NewInit(self))
		for _, peer := range peers {
			send(proto.NewPlayerJoin(peer))
		}
		if changes := h.world.Snapshot(); len(changes) > 0 {
			send(proto.NewWorldState(changes))
		}
	})
	h.events.Publish(r.Context(), logging.PlayerConnected(player.ID))
	h.hub.BroadcastExcept(proto.NewPlayerJoin(player), player.ID)

	defer h.teardown(sub)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("connection error for %s: %v", player.ID, err)
			}
			return
		}
		h.hub.RecordInbound()

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.discard(player.ID, err)
			continue
		}

		switch msg.Type {
		case proto.TypeBlockChange:
			face, layer, block, err := msg.BlockChangePayload()
			if err != nil {
				h.discard(player.ID, err)
				continue
			}
			h.world.Apply(face, layer, block)
			h.hub.BroadcastExcept(proto.NewBlockChange(face, layer, block), player.ID)
			h.events.Publish(context.Background(), logging.BlockEdited(player.ID, face, layer))
		case proto.TypePosition:
			position, forward, pitch, err := msg.PositionPayload()
			if err != nil {
				h.discard(player.ID, err)
				continue
			}
			h.hub.UpdateMotion(sub, position, forward, pitch)
			h.hub.BroadcastExcept(proto.NewPlayerMove(player.ID, position, forward, pitch), player.ID)
		default:
			h.logger.Printf("ignoring unknown message type %q from %s", msg.Type, player.ID)
		}
	}
}

// discard logs a malformed frame and leaves the connection open.
func (h *Handler) discard(playerID string, err error) {
	h.logger.Printf("discarding malformed message from %s: %v", playerID, err)
	h.hub.RecordMalformed()
	h.events.Publish(context.Background(), logging.ProtocolError(playerID, err))
}

// teardown unregisters the subscriber and announces the departure. The
// unregister result gates the broadcast, so a second call is a no-op and no
// duplicate leave notice can go out.
func (h *Handler) teardown(sub *server.Subscriber) {
	player, ok := h.hub.Unregister(sub)
	sub.Close()
	if !ok {
		return
	}
	h.hub.BroadcastAll(proto.NewPlayerLeave(player.ID))
	h.events.Publish(context.Background(), logging.PlayerDisconnected(player.ID))
}
