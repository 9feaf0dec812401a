package server

import (
	"math/rand"

	"github.com/google/uuid"
)

// NewPlayerID returns a fresh session identity. UUIDv4 gives 122 bits of
// randomness, plenty to keep concurrently live identities distinct.
func NewPlayerID() string {
	return uuid.NewString()
}

// NewPlayerColor draws an avatar tint with every channel in [0.3, 1.0).
// The floor keeps avatars from rendering near-black against the terrain.
func NewPlayerColor() Color {
	return Color{
		R: colorChannel(),
		G: colorChannel(),
		B: colorChannel(),
	}
}

func colorChannel() float64 {
	return 0.3 + rand.Float64()*0.7
}
