package server

import (
	"encoding/json"
	"sync"
)

// BlockKey addresses one cell of the world: a face of the cube world and a
// depth layer within that face.
type BlockKey struct {
	Face  int
	Layer int
}

// BlockChange is one world delta as it appears in snapshots and on the wire.
// The block value is opaque to the server; clients agree on its shape.
type BlockChange struct {
	Face  int             `json:"face"`
	Layer int             `json:"layer"`
	Block json.RawMessage `json:"block"`
}

// World stores the sparse block edits layered over the procedurally
// generated terrain that clients compute for themselves. A later edit at the
// same (face, layer) replaces the earlier one. Entries are never removed, so
// the map grows for the lifetime of the process; see DESIGN.md.
type World struct {
	mu     sync.Mutex
	blocks map[BlockKey]json.RawMessage
}

func NewWorld() *World {
	return &World{blocks: make(map[BlockKey]json.RawMessage)}
}

// Apply inserts or overwrites the edit at (face, layer).
func (w *World) Apply(face, layer int, block json.RawMessage) {
	w.mu.Lock()
	w.blocks[BlockKey{Face: face, Layer: layer}] = block
	w.mu.Unlock()
	metricBlockEdits.Inc()
}

// Snapshot copies every current edit for replay to a new connection.
// Iteration order is unspecified.
func (w *World) Snapshot() []BlockChange {
	w.mu.Lock()
	defer w.mu.Unlock()

	changes := make([]BlockChange, 0, len(w.blocks))
	for key, block := range w.blocks {
		changes = append(changes, BlockChange{Face: key.Face, Layer: key.Layer, Block: block})
	}
	return changes
}

// Len reports the number of edited cells.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.blocks)
}
