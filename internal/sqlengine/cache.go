package sqlengine

import (
	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/pattern"
)

// fastPathCache exposes the engine's single-leg pattern cache to package
// pattern (spec §4.F).
func (e *Engine) fastPathCache() *pattern.Cache { return e.patternCache }

// invalidatePatternCache clears the whole fast-path cache; called from
// every mutating method.
func (e *Engine) invalidatePatternCache() { e.patternCache.Invalidate() }

// Per-node outgoing/incoming adjacency caching, grounded on the teacher's
// file-digest cache (GetOrCompute / invalidate style) but kept purely
// in-memory since adjacency lists, unlike file digests, have no stable
// external key to revalidate against — any mutation simply evicts.

func (e *Engine) cacheLookup(node int64, dir backend.Direction) ([]int64, bool) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	var m map[int64][]int64
	if dir == backend.Outgoing {
		m = e.outCache
	} else {
		m = e.inCache
	}
	v, ok := m[node]
	return v, ok
}

func (e *Engine) cacheStore(node int64, dir backend.Direction, neighbors []int64) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if dir == backend.Outgoing {
		e.outCache[node] = neighbors
	} else {
		e.inCache[node] = neighbors
	}
}

// invalidate evicts both directions' cached adjacency for node.
func (e *Engine) invalidate(node int64) {
	e.cacheMu.Lock()
	delete(e.outCache, node)
	delete(e.inCache, node)
	e.cacheMu.Unlock()
}
