// Package traverse implements the traversal primitives (spec §4.E) once,
// generically, over any backend's Neighbors method. Both the SQL-backed and
// native engines delegate their BFS/ShortestPath/KHop/ChainQuery methods
// here; determinism then follows entirely from each engine's own Neighbors
// ordering (SQL: ascending node-id; native: physical CSR slot order), per
// spec §4.B/§4.C.
package traverse

import (
	"sort"

	"sqlitegraph/internal/backend"
)

// Neighborer is the minimal capability traversal needs from an engine.
type Neighborer interface {
	Neighbors(node int64, q backend.NeighborQuery) ([]int64, error)
	NodeExists(node int64) (bool, error)
}

// BFS performs breadth-first search over outgoing adjacency, yielding nodes
// in discovery order starting with start (spec §4.B bfs, §4.E edge cases:
// depth 0 yields [start] when start exists).
func BFS(n Neighborer, start int64, depth int) ([]int64, error) {
	exists, err := n.NodeExists(start)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	visited := map[int64]bool{start: true}
	order := []int64{start}
	frontier := []int64{start}

	for d := 0; d < depth; d++ {
		var next []int64
		for _, node := range frontier {
			neighbors, err := n.Neighbors(node, backend.NeighborQuery{Direction: backend.Outgoing})
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					order = append(order, nb)
					next = append(next, nb)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	return order, nil
}

// ShortestPath returns the inclusive path [start, ..., end] found by BFS
// with parent tracking, or ok=false if end is unreachable (spec §4.B
// shortest_path, §4.E start==end yields Some([start])).
func ShortestPath(n Neighborer, start, end int64) ([]int64, bool, error) {
	startExists, err := n.NodeExists(start)
	if err != nil {
		return nil, false, err
	}
	if !startExists {
		return nil, false, nil
	}
	if start == end {
		return []int64{start}, true, nil
	}

	visited := map[int64]bool{start: true}
	parent := map[int64]int64{}
	frontier := []int64{start}

	for len(frontier) > 0 {
		var next []int64
		for _, node := range frontier {
			neighbors, err := n.Neighbors(node, backend.NeighborQuery{Direction: backend.Outgoing})
			if err != nil {
				return nil, false, err
			}
			for _, nb := range neighbors {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				parent[nb] = node
				if nb == end {
					return reconstructPath(parent, start, end), true, nil
				}
				next = append(next, nb)
			}
		}
		frontier = next
	}

	return nil, false, nil
}

func reconstructPath(parent map[int64]int64, start, end int64) []int64 {
	path := []int64{end}
	cur := end
	for cur != start {
		cur = parent[cur]
		path = append(path, cur)
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// KHop returns the deduplicated union of nodes reached within depth hops,
// ordered ascending by node-id (spec §4.B k_hop). depth == 0 returns nil
// (spec §4.E: diverges deliberately from BFS depth 0).
func KHop(n Neighborer, start int64, depth int, direction backend.Direction) ([]int64, error) {
	return khop(n, start, depth, direction, nil)
}

// KHopFiltered is KHop restricted to edges whose type is in allowedEdgeTypes.
// An empty allowed set returns empty (spec §4.B k_hop_filtered, §9 open
// question (b)).
func KHopFiltered(n Neighborer, start int64, depth int, direction backend.Direction, allowedEdgeTypes []string) ([]int64, error) {
	if len(allowedEdgeTypes) == 0 {
		return nil, nil
	}
	return khop(n, start, depth, direction, allowedEdgeTypes)
}

func khop(n Neighborer, start int64, depth int, direction backend.Direction, allowed []string) ([]int64, error) {
	if depth <= 0 {
		return nil, nil
	}
	exists, err := n.NodeExists(start)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	visited := map[int64]bool{start: true}
	reached := map[int64]bool{}
	frontier := []int64{start}

	for d := 0; d < depth; d++ {
		var next []int64
		for _, node := range frontier {
			var neighbors []int64
			var err error
			if allowed == nil {
				neighbors, err = n.Neighbors(node, backend.NeighborQuery{Direction: direction})
			} else {
				neighbors, err = neighborsFiltered(n, node, direction, allowed)
			}
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				reached[nb] = true
				if !visited[nb] {
					visited[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	return sortedKeys(reached), nil
}

func neighborsFiltered(n Neighborer, node int64, direction backend.Direction, allowed []string) ([]int64, error) {
	var out []int64
	seen := map[int64]bool{}
	for _, et := range allowed {
		neighbors, err := n.Neighbors(node, backend.NeighborQuery{Direction: direction, EdgeType: et})
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if !seen[nb] {
				seen[nb] = true
				out = append(out, nb)
			}
		}
	}
	return out, nil
}

// ChainQuery iteratively applies each step's (direction, optional edge-type)
// filter, carrying a frontier set; returns the terminal frontier sorted
// ascending (spec §4.B chain_query). Empty steps returns {start}; an
// invalid start returns [] (spec §4.E).
func ChainQuery(n Neighborer, start int64, steps []backend.ChainStep) ([]int64, error) {
	exists, err := n.NodeExists(start)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	if len(steps) == 0 {
		return []int64{start}, nil
	}

	frontier := map[int64]bool{start: true}
	for _, step := range steps {
		next := map[int64]bool{}
		for node := range frontier {
			neighbors, err := n.Neighbors(node, backend.NeighborQuery{Direction: step.Direction, EdgeType: step.EdgeType})
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				next[nb] = true
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	return sortedKeys(frontier), nil
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
