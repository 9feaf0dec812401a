// Package proto defines the websocket wire protocol as a closed set of
// typed messages discriminated by a "type" field. Server-to-client frames
// are plain structs; client frames decode through ClientMessage, which
// validates required fields instead of trusting dynamic access.
package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	server "cubeworld/server"
)

const (
	TypeInit        = "init"
	TypePlayerJoin  = "playerJoin"
	TypeWorldState  = "worldState"
	TypeBlockChange = "blockChange"
	TypePosition    = "position"
	TypePlayerMove  = "playerMove"
	TypePlayerLeave = "playerLeave"
)

// Init is the handshake sent to a freshly connected client.
type Init struct {
	Type  string       `json:"type" jsonschema:"title=Handshake,description=First frame sent to a new connection"`
	ID    string       `json:"id"`
	Color server.Color `json:"color"`
}

func NewInit(p server.Player) Init {
	return Init{Type: TypeInit, ID: p.ID, Color: p.Color}
}

// PlayerJoin announces a player to a client, either replayed during the
// handshake or broadcast when someone new connects.
type PlayerJoin struct {
	Type     string       `json:"type"`
	ID       string       `json:"id"`
	Color    server.Color `json:"color"`
	Position server.Vec3  `json:"position"`
	Forward  server.Vec3  `json:"forward"`
	Pitch    float64      `json:"pitch"`
}

func NewPlayerJoin(p server.Player) PlayerJoin {
	return PlayerJoin{
		Type:     TypePlayerJoin,
		ID:       p.ID,
		Color:    p.Color,
		Position: p.Position,
		Forward:  p.Forward,
		Pitch:    p.Pitch,
	}
}

// WorldState replays every accumulated block edit to a new connection. It is
// only sent when at least one edit exists.
type WorldState struct {
	Type    string               `json:"type"`
	Changes []server.BlockChange `json:"changes"`
}

func NewWorldState(changes []server.BlockChange) WorldState {
	return WorldState{Type: TypeWorldState, Changes: changes}
}

// BlockChange relays one world edit to every other client.
type BlockChange struct {
	Type  string          `json:"type"`
	Face  int             `json:"face"`
	Layer int             `json:"layer"`
	Block json.RawMessage `json:"block"`
}

func NewBlockChange(face, layer int, block json.RawMessage) BlockChange {
	return BlockChange{Type: TypeBlockChange, Face: face, Layer: layer, Block: block}
}

// PlayerMove relays a player's reported motion to every other client.
type PlayerMove struct {
	Type     string      `json:"type"`
	ID       string      `json:"id"`
	Position server.Vec3 `json:"position"`
	Forward  server.Vec3 `json:"forward"`
	Pitch    float64     `json:"pitch"`
}

func NewPlayerMove(id string, position, forward server.Vec3, pitch float64) PlayerMove {
	return PlayerMove{Type: TypePlayerMove, ID: id, Position: position, Forward: forward, Pitch: pitch}
}

// PlayerLeave tells the remaining clients that a player disconnected.
type PlayerLeave struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func NewPlayerLeave(id string) PlayerLeave {
	return PlayerLeave{Type: TypePlayerLeave, ID: id}
}

// ClientMessage is the decoded form of an inbound frame. Optional fields
// stay pointers so "absent" is distinguishable from zero where it matters;
// pitch deliberately collapses absent to 0.
type ClientMessage struct {
	Type     string          `json:"type"`
	Face     *int            `json:"face,omitempty"`
	Layer    *int            `json:"layer,omitempty"`
	Block    json.RawMessage `json:"block,omitempty"`
	Position []float64       `json:"position,omitempty"`
	Forward  []float64       `json:"forward,omitempty"`
	Pitch    *float64        `json:"pitch,omitempty"`
}

var errMissingType = errors.New("missing type discriminator")

// DecodeClientMessage parses an inbound frame. A frame that is not a JSON
// object with a string type is rejected here; per-type field validation
// happens in the payload accessors.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if msg.Type == "" {
		return ClientMessage{}, errMissingType
	}
	return msg, nil
}

// BlockChangePayload validates a blockChange frame: face, layer, and a
// non-empty block value are all required.
func (m ClientMessage) BlockChangePayload() (face, layer int, block json.RawMessage, err error) {
	if m.Face == nil {
		return 0, 0, nil, errors.New("blockChange missing face")
	}
	if m.Layer == nil {
		return 0, 0, nil, errors.New("blockChange missing layer")
	}
	if len(m.Block) == 0 {
		return 0, 0, nil, errors.New("blockChange missing block")
	}
	return *m.Face, *m.Layer, m.Block, nil
}

// PositionPayload validates a position frame: position and forward must be
// three-component arrays. A missing pitch defaults to 0.
func (m ClientMessage) PositionPayload() (position, forward server.Vec3, pitch float64, err error) {
	if len(m.Position) != 3 {
		return server.Vec3{}, server.Vec3{}, 0, fmt.Errorf("position has %d components, want 3", len(m.Position))
	}
	if len(m.Forward) != 3 {
		return server.Vec3{}, server.Vec3{}, 0, fmt.Errorf("forward has %d components, want 3", len(m.Forward))
	}
	copy(position[:], m.Position)
	copy(forward[:], m.Forward)
	if m.Pitch != nil {
		pitch = *m.Pitch
	}
	return position, forward, pitch, nil
}
