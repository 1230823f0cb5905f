package sqlengine

import (
	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/pattern"
	"sqlitegraph/internal/traverse"
)

// BFS, ShortestPath, KHop, KHopFiltered and ChainQuery all reduce to
// repeated calls to Neighbors; the shared algorithm lives in package
// traverse so both engines get identical semantics and only differ in
// adjacency ordering (spec §4.E).

func (e *Engine) BFS(start int64, depth int) ([]int64, error) {
	return traverse.BFS(e, start, depth)
}

func (e *Engine) ShortestPath(start, end int64) ([]int64, bool, error) {
	return traverse.ShortestPath(e, start, end)
}

func (e *Engine) KHop(start int64, depth int, direction backend.Direction) ([]int64, error) {
	return traverse.KHop(e, start, depth, direction)
}

func (e *Engine) KHopFiltered(start int64, depth int, direction backend.Direction, allowedEdgeTypes []string) ([]int64, error) {
	return traverse.KHopFiltered(e, start, depth, direction, allowedEdgeTypes)
}

func (e *Engine) ChainQuery(start int64, steps []backend.ChainStep) ([]int64, error) {
	return traverse.ChainQuery(e, start, steps)
}

// PatternSearch delegates to package pattern, which owns the fast-path
// cache (spec §4.F); the cache itself is cleared by every mutating method
// via invalidatePatternCache (cache.go).
func (e *Engine) PatternSearch(start int64, p backend.Pattern) ([][]int64, error) {
	return pattern.Search(e, e.fastPathCache(), start, p)
}
