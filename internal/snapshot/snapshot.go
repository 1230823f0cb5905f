// Package snapshot implements the MVCC snapshot manager (spec §4.I): a
// process-wide, atomically swappable immutable adjacency view, published
// anew on every mutation so that a reader holding a handle never observes
// a partially-updated state.
package snapshot

import (
	"sync/atomic"

	"sqlitegraph/internal/storage"
)

// Snapshot is an immutable adjacency view plus its creation timestamp
// (spec §4.I). Readers hold a *Snapshot for the duration of a query; Go's
// garbage collector reclaims a snapshot once the last holder drops its
// reference, which is the memory discipline spec §4.I asks for.
type Snapshot struct {
	Outgoing  map[int64][]int64
	Incoming  map[int64][]int64
	CreatedAt int64
}

// Manager holds the current snapshot behind an atomic pointer.
type Manager struct {
	current atomic.Pointer[Snapshot]
}

// NewManager returns a Manager with an empty initial snapshot.
func NewManager() *Manager {
	m := &Manager{}
	m.current.Store(&Snapshot{
		Outgoing:  make(map[int64][]int64),
		Incoming:  make(map[int64][]int64),
		CreatedAt: storage.NowMillis(),
	})
	return m
}

// Acquire returns the current snapshot. The caller's reference keeps it
// alive for the duration of its query regardless of subsequent Publish
// calls (spec §4.I "a subsequent mutation cannot invalidate their view").
func (m *Manager) Acquire() *Snapshot {
	return m.current.Load()
}

// Publish clones the current snapshot's mappings, applies mutate to the
// clone, and atomically swaps it in. mutate must not retain its arguments
// past the call.
func (m *Manager) Publish(mutate func(outgoing, incoming map[int64][]int64)) {
	prev := m.current.Load()

	nextOut := make(map[int64][]int64, len(prev.Outgoing))
	for k, v := range prev.Outgoing {
		nextOut[k] = append([]int64(nil), v...)
	}
	nextIn := make(map[int64][]int64, len(prev.Incoming))
	for k, v := range prev.Incoming {
		nextIn[k] = append([]int64(nil), v...)
	}

	mutate(nextOut, nextIn)

	m.current.Store(&Snapshot{
		Outgoing:  nextOut,
		Incoming:  nextIn,
		CreatedAt: storage.NowMillis(),
	})
}

// RecordEdge is the mutate callback InsertEdge uses to publish a new
// snapshot reflecting one additional edge (spec §4.I).
func RecordEdge(from, to int64) func(outgoing, incoming map[int64][]int64) {
	return func(outgoing, incoming map[int64][]int64) {
		outgoing[from] = append(outgoing[from], to)
		incoming[to] = append(incoming[to], from)
	}
}
