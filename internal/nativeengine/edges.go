package nativeengine

import (
	"encoding/json"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/snapshot"
	"sqlitegraph/internal/storage"
)

// InsertEdge appends the next edge slot and assigns the next monotonic id
// (spec §4.B, §4.C). Does not pre-validate endpoint existence; the safety
// validator catches orphans, matching the SQL engine's policy.
func (e *Engine) InsertEdge(spec backend.EdgeSpec) (int64, error) {
	if spec.EdgeType == "" {
		return 0, storage.ErrInvalidInput("edge_type must be non-empty")
	}

	data := spec.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hdr.EdgeCount >= uint64(e.edgeCapacity) {
		return 0, storage.New(storage.KindIoFailure, "native edge capacity exhausted; reopen with a larger reserve_edge_capacity")
	}

	id := int64(e.hdr.EdgeCount) + 1
	rec := &edgeRecord{
		ID:       id,
		Source:   spec.From,
		Target:   spec.To,
		EdgeType: spec.EdgeType,
		Data:     data,
	}
	if err := e.writeEdgeSlot(rec); err != nil {
		return 0, err
	}

	e.hdr.EdgeCount++
	if err := e.writeHeader(); err != nil {
		return 0, err
	}

	e.outAdj[spec.From] = append(e.outAdj[spec.From], id)
	e.inAdj[spec.To] = append(e.inAdj[spec.To], id)

	if err := e.refreshAdjacencyTrailer(spec.From); err != nil {
		return 0, err
	}
	if err := e.refreshAdjacencyTrailer(spec.To); err != nil {
		return 0, err
	}

	e.invalidatePatternCache()
	e.snap.Publish(snapshot.RecordEdge(spec.From, spec.To))
	return id, nil
}

// refreshAdjacencyTrailer rewrites node id's on-disk adjacency metadata
// (offset of the first outgoing/incoming edge slot and the count in each
// direction) from the in-memory index, so the declared trailer fields stay
// consistent with what InsertEdge has actually recorded (spec §4.A
// adjacency metadata, §4.C corruption detection). Only updates trailer
// fields; kind/name/data are left untouched.
func (e *Engine) refreshAdjacencyTrailer(node int64) error {
	if node < 1 || uint64(node) > e.hdr.NodeCount {
		return nil
	}

	rec, err := e.readNodeSlot(node)
	if err != nil {
		return err
	}

	out := e.outAdj[node]
	in := e.inAdj[node]

	rec.OutCount = uint32(len(out))
	rec.InCount = uint32(len(in))
	rec.OutOffset = 0
	rec.InOffset = 0
	if len(out) > 0 {
		rec.OutOffset = uint64(e.edgeSlotOffset(out[0]))
	}
	if len(in) > 0 {
		rec.InOffset = uint64(e.edgeSlotOffset(in[0]))
	}

	return e.writeNodeSlot(rec)
}

// Neighbors returns the opposing endpoints of node's edges in the given
// direction, in insertion order, which coincides with physical edge-slot
// order since edge ids are assigned monotonically and never reordered
// (spec §4.C "physical slot order is the deterministic order").
func (e *Engine) Neighbors(node int64, q backend.NeighborQuery) ([]int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var edgeIDs []int64
	if q.Direction == backend.Outgoing {
		edgeIDs = e.outAdj[node]
	} else {
		edgeIDs = e.inAdj[node]
	}

	out := make([]int64, 0, len(edgeIDs))
	for _, eid := range edgeIDs {
		rec, err := e.readEdgeSlot(eid)
		if err != nil {
			return nil, err
		}
		if q.EdgeType != "" && rec.EdgeType != q.EdgeType {
			continue
		}
		if q.Direction == backend.Outgoing {
			out = append(out, rec.Target)
		} else {
			out = append(out, rec.Source)
		}
	}
	return out, nil
}

// NodeDegree returns (0,0) for absent/isolated nodes.
func (e *Engine) NodeDegree(node int64) (int, int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.outAdj[node]), len(e.inAdj[node]), nil
}
