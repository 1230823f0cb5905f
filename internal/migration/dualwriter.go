// Package migration implements the dual-runtime migration harness (spec
// §4.J): a dual writer that mirrors inserts to a shadow engine, a shadow
// reader that compares primary/shadow traversal output, and a one-way
// cutover state machine.
package migration

import (
	"sync"

	"sqlitegraph/internal/backend"
)

// DualWriter mirrors every node/edge insert from Primary to Shadow,
// counting id/error mismatches without rolling back (spec §4.J).
type DualWriter struct {
	Primary backend.Backend
	Shadow  backend.Backend

	mu         sync.Mutex
	mismatches int
}

// NewDualWriter pairs a primary and shadow engine.
func NewDualWriter(primary, shadow backend.Backend) *DualWriter {
	return &DualWriter{Primary: primary, Shadow: shadow}
}

// InsertNode writes to Primary, then mirrors to Shadow; a mismatched id or
// differing error outcome increments Mismatches but never fails the call
// (spec §4.J "mismatch does not roll back, but is counted").
func (d *DualWriter) InsertNode(spec backend.NodeSpec) (int64, error) {
	primaryID, primaryErr := d.Primary.InsertNode(spec)
	shadowID, shadowErr := d.Shadow.InsertNode(spec)

	if (primaryErr == nil) != (shadowErr == nil) || primaryID != shadowID {
		d.recordMismatch()
	}

	return primaryID, primaryErr
}

// InsertEdge mirrors InsertNode's contract for edges.
func (d *DualWriter) InsertEdge(spec backend.EdgeSpec) (int64, error) {
	primaryID, primaryErr := d.Primary.InsertEdge(spec)
	shadowID, shadowErr := d.Shadow.InsertEdge(spec)

	if (primaryErr == nil) != (shadowErr == nil) || primaryID != shadowID {
		d.recordMismatch()
	}

	return primaryID, primaryErr
}

func (d *DualWriter) recordMismatch() {
	d.mu.Lock()
	d.mismatches++
	d.mu.Unlock()
}

// Mismatches reports the running count of write mismatches observed.
func (d *DualWriter) Mismatches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mismatches
}
