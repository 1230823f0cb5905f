package nativeengine

import (
	"encoding/json"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/dump"
)

var _ dump.Source = (*Engine)(nil)

// AllNodesFull lists every node in ascending id order, for package dump.
func (e *Engine) AllNodesFull() ([]backend.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]backend.Node, 0, e.hdr.NodeCount)
	for id := int64(1); id <= int64(e.hdr.NodeCount); id++ {
		rec, err := e.readNodeSlot(id)
		if err != nil {
			return nil, err
		}
		out = append(out, backend.Node{ID: rec.ID, Kind: rec.Kind, Name: rec.Name, Data: json.RawMessage(rec.Data)})
	}
	return out, nil
}

// AllEdgesFull lists every edge in ascending id order, for package dump.
func (e *Engine) AllEdgesFull() ([]backend.Edge, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]backend.Edge, 0, e.hdr.EdgeCount)
	for id := int64(1); id <= int64(e.hdr.EdgeCount); id++ {
		rec, err := e.readEdgeSlot(id)
		if err != nil {
			return nil, err
		}
		out = append(out, backend.Edge{ID: rec.ID, From: rec.Source, To: rec.Target, EdgeType: rec.EdgeType, Data: json.RawMessage(rec.Data)})
	}
	return out, nil
}

// AllPropertiesFull lists every (node, key, value) property row in
// ascending (node, key) order, for package dump.
func (e *Engine) AllPropertiesFull() ([]dump.PropertyFull, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []dump.PropertyFull
	for node := int64(1); node <= int64(e.hdr.NodeCount); node++ {
		m, ok := e.props[node]
		if !ok {
			continue
		}
		keys := sortedStringKeys(m)
		for _, k := range keys {
			out = append(out, dump.PropertyFull{NodeID: node, Key: k, Value: m[k]})
		}
	}
	return out, nil
}
