// Package pattern implements structural pattern matching (spec §4.F):
// triple/leg patterns, node constraints, and the single-leg fast-path
// cache, against any backend through the Matcher capability subset.
package pattern

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"sqlitegraph/internal/backend"
)

// Matcher is the subset of backend.Backend the pattern engine needs.
type Matcher interface {
	Neighbors(node int64, q backend.NeighborQuery) ([]int64, error)
	NodeExists(node int64) (bool, error)
	NodeKindName(node int64) (kind, name string, err error)
	HasLabel(node int64, label string) (bool, error)
	PropertyEquals(node int64, key, value string) (bool, error)
}

// CacheKey identifies a fast-path cache entry: (start, edge_type, kind).
type CacheKey struct {
	Start    int64
	EdgeType string
	Kind     string
}

// Cache holds fast-path results for single-leg, kind-only patterns. Any
// mutation invalidates it wholesale (spec §4.F "cache invalidation on any
// mutation").
type Cache struct {
	mu sync.Mutex
	m  map[CacheKey][]int64
}

// NewCache constructs an empty fast-path cache.
func NewCache() *Cache {
	return &Cache{m: make(map[CacheKey][]int64)}
}

func (c *Cache) get(k CacheKey) ([]int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[k]
	return v, ok
}

func (c *Cache) set(k CacheKey, v []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = v
}

// Invalidate clears every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[CacheKey][]int64)
}

// isFastPath reports whether p reduces to a single outgoing leg with an
// edge-type constraint and a kind-only next-node constraint (spec §4.F).
func isFastPath(p backend.Pattern) (edgeType, kind string, ok bool) {
	if len(p.Legs) != 1 {
		return "", "", false
	}
	leg := p.Legs[0]
	if leg.EdgeType == "" || leg.Direction != backend.Outgoing {
		return "", "", false
	}
	nc := leg.NextConstraint
	if nc.Kind == "" || nc.NamePrefix != "" || nc.HasLabel != "" || nc.PropKey != "" {
		return "", "", false
	}
	return leg.EdgeType, nc.Kind, true
}

// Search yields every sequence [start=n0, n1, ..., nk] such that each
// consecutive pair is an edge of the corresponding leg's direction/type and
// each n_i satisfies its leg's node constraint. Matches are produced in
// depth-first order with ascending neighbour order at each level;
// duplicates by sequence are suppressed. Empty pattern (no legs) yields a
// single match [start] (spec §4.F).
func Search(b Matcher, cache *Cache, start int64, p backend.Pattern) ([][]int64, error) {
	exists, err := b.NodeExists(start)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	if !matchesConstraint(b, start, p.Root) {
		return nil, nil
	}
	if len(p.Legs) == 0 {
		return [][]int64{{start}}, nil
	}

	if edgeType, kind, ok := isFastPath(p); ok {
		return fastPathSearch(b, cache, start, edgeType, kind)
	}

	seen := map[string]bool{}
	var results [][]int64
	if err := walk(b, start, p.Legs, []int64{start}, &results, seen); err != nil {
		return nil, err
	}
	return results, nil
}

func fastPathSearch(b Matcher, cache *Cache, start int64, edgeType, kind string) ([][]int64, error) {
	key := CacheKey{Start: start, EdgeType: edgeType, Kind: kind}
	if v, ok := cache.get(key); ok {
		return wrap(start, v), nil
	}

	neighbors, err := b.Neighbors(start, backend.NeighborQuery{Direction: backend.Outgoing, EdgeType: edgeType})
	if err != nil {
		return nil, err
	}

	sorted := append([]int64(nil), neighbors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var matched []int64
	for i, nb := range sorted {
		if i > 0 && nb == sorted[i-1] {
			continue
		}
		nk, _, err := b.NodeKindName(nb)
		if err != nil {
			return nil, err
		}
		if kindMatches(nk, kind) {
			matched = append(matched, nb)
		}
	}

	cache.set(key, matched)
	return wrap(start, matched), nil
}

func wrap(start int64, neighbors []int64) [][]int64 {
	out := make([][]int64, 0, len(neighbors))
	for _, nb := range neighbors {
		out = append(out, []int64{start, nb})
	}
	return out
}

func walk(b Matcher, current int64, legs []backend.Leg, path []int64, results *[][]int64, seen map[string]bool) error {
	if len(legs) == 0 {
		key := sequenceKey(path)
		if !seen[key] {
			seen[key] = true
			cp := make([]int64, len(path))
			copy(cp, path)
			*results = append(*results, cp)
		}
		return nil
	}

	leg := legs[0]
	neighbors, err := b.Neighbors(current, backend.NeighborQuery{Direction: leg.Direction, EdgeType: leg.EdgeType})
	if err != nil {
		return err
	}
	sorted := append([]int64(nil), neighbors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, nb := range sorted {
		if !matchesConstraint(b, nb, leg.NextConstraint) {
			continue
		}
		if err := walk(b, nb, legs[1:], append(path, nb), results, seen); err != nil {
			return err
		}
	}
	return nil
}

func matchesConstraint(b Matcher, node int64, c backend.NodeConstraint) bool {
	if c.Empty() {
		return true
	}
	kind, name, err := b.NodeKindName(node)
	if err != nil {
		return false
	}
	if c.Kind != "" && !kindMatches(kind, c.Kind) {
		return false
	}
	if c.NamePrefix != "" && !strings.HasPrefix(name, c.NamePrefix) {
		return false
	}
	if c.HasLabel != "" {
		ok, err := b.HasLabel(node, c.HasLabel)
		if err != nil || !ok {
			return false
		}
	}
	if c.PropKey != "" {
		ok, err := b.PropertyEquals(node, c.PropKey, c.PropValue)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// kindMatches supports an exact match or, per SPEC_FULL's doublestar
// wiring, a glob pattern (e.g. "Fn*").
func kindMatches(kind, pattern string) bool {
	if kind == pattern {
		return true
	}
	ok, err := doublestar.Match(pattern, kind)
	return err == nil && ok
}

func sequenceKey(path []int64) string {
	var sb strings.Builder
	for i, id := range path {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}
