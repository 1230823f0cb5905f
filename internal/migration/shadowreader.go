package migration

import (
	"sort"

	"github.com/google/uuid"

	"sqlitegraph/internal/backend"
)

// NodeDepth is one job item for RunShadowJob.
type NodeDepth struct {
	Node  int64
	Depth int
}

// ShadowEntry is one comparison result (spec §4.J "sorted log of
// match/mismatch entries").
type ShadowEntry struct {
	Node  int64
	Check string // "neighbors" or "bfs"
	Match bool
}

// ShadowReport is the outcome of RunShadowJob. RunID correlates one report
// with the bench/migration log entries a caller may record alongside it
// (grounded on kailab-control's uuid.New().String() id-generator pattern).
type ShadowReport struct {
	RunID   string
	Entries []ShadowEntry
}

// Matches counts entries with Match == true.
func (r *ShadowReport) Matches() int {
	n := 0
	for _, e := range r.Entries {
		if e.Match {
			n++
		}
	}
	return n
}

// Mismatches counts entries with Match == false.
func (r *ShadowReport) Mismatches() int {
	return len(r.Entries) - r.Matches()
}

// RunShadowJob compares neighbors and bfs output between primary and
// shadow for every (node, depth) pair in job, returning a sorted log of
// match/mismatch entries (spec §4.J).
func RunShadowJob(primary, shadow backend.Backend, job []NodeDepth) (*ShadowReport, error) {
	var entries []ShadowEntry

	for _, item := range job {
		pNeighbors, err := primary.Neighbors(item.Node, backend.NeighborQuery{Direction: backend.Outgoing})
		if err != nil {
			return nil, err
		}
		sNeighbors, err := shadow.Neighbors(item.Node, backend.NeighborQuery{Direction: backend.Outgoing})
		if err != nil {
			return nil, err
		}
		entries = append(entries, ShadowEntry{
			Node:  item.Node,
			Check: "neighbors",
			Match: int64SlicesEqual(pNeighbors, sNeighbors),
		})

		pBFS, err := primary.BFS(item.Node, item.Depth)
		if err != nil {
			return nil, err
		}
		sBFS, err := shadow.BFS(item.Node, item.Depth)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ShadowEntry{
			Node:  item.Node,
			Check: "bfs",
			Match: int64SlicesEqual(pBFS, sBFS),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Node != entries[j].Node {
			return entries[i].Node < entries[j].Node
		}
		return entries[i].Check < entries[j].Check
	})

	return &ShadowReport{RunID: uuid.New().String(), Entries: entries}, nil
}

func int64SlicesEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
