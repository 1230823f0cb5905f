package nativeengine

import (
	"sort"

	"sqlitegraph/internal/safety"
)

var _ safety.Inspector = (*Engine)(nil)

func (e *Engine) AllEdges() ([]safety.EdgeRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]safety.EdgeRow, 0, e.hdr.EdgeCount)
	for id := int64(1); id <= int64(e.hdr.EdgeCount); id++ {
		rec, err := e.readEdgeSlot(id)
		if err != nil {
			return nil, err
		}
		out = append(out, safety.EdgeRow{ID: rec.ID, From: rec.Source, To: rec.Target, EdgeType: rec.EdgeType})
	}
	return out, nil
}

func (e *Engine) AllLabels() ([]safety.LabelRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []safety.LabelRow
	for _, node := range sortedInt64Keys(e.labels) {
		set := e.labels[node]
		labels := make([]string, 0, len(set))
		for label := range set {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			out = append(out, safety.LabelRow{NodeID: node, Label: label})
		}
	}
	return out, nil
}

func (e *Engine) AllProperties() ([]safety.PropertyRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []safety.PropertyRow
	for _, node := range sortedInt64Keys(e.props) {
		for _, key := range sortedStringKeys(e.props[node]) {
			out = append(out, safety.PropertyRow{NodeID: node, Key: key})
		}
	}
	return out, nil
}

func (e *Engine) AllNodeIDs() ([]int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]int64, 0, e.hdr.NodeCount)
	for id := int64(1); id <= int64(e.hdr.NodeCount); id++ {
		out = append(out, id)
	}
	return out, nil
}

func (e *Engine) NodeExistsForSafety(id int64) (bool, error) {
	return e.NodeExists(id)
}

func (e *Engine) NodePayload(id int64) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if id < 1 || uint64(id) > e.hdr.NodeCount {
		return nil, nil
	}
	rec, err := e.readNodeSlot(id)
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}
