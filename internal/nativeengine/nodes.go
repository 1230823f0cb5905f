package nativeengine

import (
	"encoding/json"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/storage"
)

// InsertNode appends the next node slot and assigns the next monotonic id
// (spec §4.B, §4.C). Rejects empty kind/name, and rejects a record whose
// encoded size would overflow the fixed node slot.
func (e *Engine) InsertNode(spec backend.NodeSpec) (int64, error) {
	if spec.Kind == "" || spec.Name == "" {
		return 0, storage.ErrInvalidInput("kind and name must be non-empty")
	}

	data := spec.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hdr.NodeCount >= uint64(e.nodeCapacity) {
		return 0, storage.New(storage.KindIoFailure, "native node capacity exhausted; reopen with a larger reserve_node_capacity")
	}

	id := int64(e.hdr.NodeCount) + 1
	rec := &nodeRecord{
		ID:   id,
		Kind: spec.Kind,
		Name: spec.Name,
		Data: data,
	}
	if rec.size() > NodeSlotBudget {
		return 0, storage.ErrInvalidInput("node record exceeds fixed slot budget")
	}

	if err := e.writeNodeSlot(rec); err != nil {
		return 0, err
	}

	e.hdr.NodeCount++
	if err := e.writeHeader(); err != nil {
		return 0, err
	}

	e.invalidatePatternCache()
	return id, nil
}

// GetNode fails with NotFound when id is outside the current node count.
func (e *Engine) GetNode(id int64) (*backend.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if id < 1 || uint64(id) > e.hdr.NodeCount {
		return nil, storage.ErrNotFound(id)
	}

	rec, err := e.readNodeSlot(id)
	if err != nil {
		return nil, err
	}

	return &backend.Node{
		ID:   rec.ID,
		Kind: rec.Kind,
		Name: rec.Name,
		Data: json.RawMessage(rec.Data),
	}, nil
}

// NodeExists reports whether id is within the current node count (absent
// nodes resolve to false rather than an error, matching the SQL engine's
// propagation policy for traverse/pattern consumers).
func (e *Engine) NodeExists(id int64) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return id >= 1 && uint64(id) <= e.hdr.NodeCount, nil
}

// NodeKindName returns ("", "", nil) for an absent node, matching the SQL
// engine.
func (e *Engine) NodeKindName(id int64) (string, string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if id < 1 || uint64(id) > e.hdr.NodeCount {
		return "", "", nil
	}
	rec, err := e.readNodeSlot(id)
	if err != nil {
		return "", "", err
	}
	return rec.Kind, rec.Name, nil
}

// HasLabel reports whether node carries label. Labels are not part of the
// bit-exact on-disk record layout (spec §4.A defines only Node and Edge
// records); this engine keeps them in an in-memory sidecar map, matching
// the scope SPEC_FULL assigns the native engine's label/property support.
func (e *Engine) HasLabel(node int64, label string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set, ok := e.labels[node]
	if !ok {
		return false, nil
	}
	return set[label], nil
}

// PropertyEquals reports whether (node, key) holds value, via the same
// in-memory sidecar as HasLabel.
func (e *Engine) PropertyEquals(node int64, key, value string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.props[node]
	if !ok {
		return false, nil
	}
	stored, ok := m[key]
	if !ok {
		return false, nil
	}
	return stored == value, nil
}

// InsertLabel adds a (node, label) association to the sidecar map.
func (e *Engine) InsertLabel(node int64, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.labels[node] == nil {
		e.labels[node] = make(map[string]bool)
	}
	e.labels[node][label] = true
	e.invalidatePatternCache()
	return nil
}

// InsertProperty sets (node, key) = value in the sidecar map.
func (e *Engine) InsertProperty(node int64, key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.props[node] == nil {
		e.props[node] = make(map[string]string)
	}
	e.props[node][key] = value
	e.invalidatePatternCache()
	return nil
}
