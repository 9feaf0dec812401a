package server

import "time"

// Vec3 is a three-component vector carried on the wire as a JSON array.
type Vec3 [3]float64

// Color holds the avatar tint assigned to a player at connect time.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Player is the public record kept for one live connection. Position,
// Forward and Pitch are only ever written by that player's own messages.
type Player struct {
	ID       string  `json:"id"`
	Color    Color   `json:"color"`
	Position Vec3    `json:"position"`
	Forward  Vec3    `json:"forward"`
	Pitch    float64 `json:"pitch"`
}

var (
	spawnPosition = Vec3{0, 102, 0}
	spawnForward  = Vec3{0, 0, -1}
)

// playerState wraps the wire-visible record with bookkeeping the hub keeps
// for diagnostics.
type playerState struct {
	Player
	connectedAt time.Time
}

func newPlayerState(now time.Time) *playerState {
	return &playerState{
		Player: Player{
			ID:       NewPlayerID(),
			Color:    NewPlayerColor(),
			Position: spawnPosition,
			Forward:  spawnForward,
		},
		connectedAt: now,
	}
}
