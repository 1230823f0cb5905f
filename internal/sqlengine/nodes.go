package sqlengine

import (
	"database/sql"
	"encoding/json"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/storage"
)

// InsertNode assigns an id via autoincrement; rejects empty kind/name with
// InvalidInput (spec §4.B).
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

	var filePath sql.NullString
	if spec.FilePath != "" {
		filePath = sql.NullString{String: spec.FilePath, Valid: true}
	}

	result, err := e.db().Exec(
		"INSERT INTO "+storage.TableEntities+" (kind, name, file_path, data) VALUES (?, ?, ?, ?)",
		spec.Kind, spec.Name, filePath, string(data),
	)
	if err != nil {
		return 0, storage.Wrap(storage.KindQueryFailure, err, "inserting node")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, storage.Wrap(storage.KindQueryFailure, err, "reading inserted node id")
	}
	e.invalidatePatternCache()
	return id, nil
}

// GetNode fails with NotFound when the id is absent (spec §4.B).
func (e *Engine) GetNode(id int64) (*backend.Node, error) {
	var kind, name string
	var filePath sql.NullString
	var data string

	err := e.conn.QueryRow(
		"SELECT kind, name, file_path, data FROM "+storage.TableEntities+" WHERE id = ?", id,
	).Scan(&kind, &name, &filePath, &data)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound(id)
	}
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "querying node")
	}

	return &backend.Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		FilePath: filePath.String,
		Data:     json.RawMessage(data),
	}, nil
}

// NodeExists reports whether id resolves to a node, without erroring on
// absence (used by traverse/pattern, which treat absent nodes as empty
// results rather than NotFound — spec §7 propagation policy).
func (e *Engine) NodeExists(id int64) (bool, error) {
	var count int
	err := e.conn.QueryRow("SELECT COUNT(*) FROM "+storage.TableEntities+" WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, storage.Wrap(storage.KindQueryFailure, err, "checking node existence")
	}
	return count > 0, nil
}

// NodeKindName returns a node's kind and name for pattern/safety constraint
// checks.
func (e *Engine) NodeKindName(id int64) (string, string, error) {
	var kind, name string
	err := e.conn.QueryRow(
		"SELECT kind, name FROM "+storage.TableEntities+" WHERE id = ?", id,
	).Scan(&kind, &name)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", storage.Wrap(storage.KindQueryFailure, err, "querying node kind/name")
	}
	return kind, name, nil
}

// HasLabel reports whether (node, label) exists.
func (e *Engine) HasLabel(node int64, label string) (bool, error) {
	var count int
	err := e.conn.QueryRow(
		"SELECT COUNT(*) FROM "+storage.TableLabels+" WHERE entity_id = ? AND label = ?", node, label,
	).Scan(&count)
	if err != nil {
		return false, storage.Wrap(storage.KindQueryFailure, err, "checking label")
	}
	return count > 0, nil
}

// PropertyEquals reports whether (node, key) holds value.
func (e *Engine) PropertyEquals(node int64, key, value string) (bool, error) {
	var stored string
	err := e.conn.QueryRow(
		"SELECT value FROM "+storage.TableProperties+" WHERE entity_id = ? AND key = ?", node, key,
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storage.Wrap(storage.KindQueryFailure, err, "checking property")
	}
	return stored == value, nil
}

// InsertLabel adds a (node, label) association; (node, label) is unique
// (spec §3 invariant 3 is enforced by the safety validator, not here).
// Re-adding an existing pair is a silent no-op via INSERT OR IGNORE on the
// primary key.
func (e *Engine) InsertLabel(node int64, label string) error {
	_, err := e.db().Exec(
		"INSERT OR IGNORE INTO "+storage.TableLabels+" (entity_id, label) VALUES (?, ?)", node, label,
	)
	if err != nil {
		return storage.Wrap(storage.KindQueryFailure, err, "inserting label")
	}
	e.invalidatePatternCache()
	return nil
}

// InsertProperty sets (node, key) = value; (node, key) is unique.
func (e *Engine) InsertProperty(node int64, key, value string) error {
	_, err := e.db().Exec(
		"INSERT INTO "+storage.TableProperties+" (entity_id, key, value) VALUES (?, ?, ?) "+
			"ON CONFLICT(entity_id, key) DO UPDATE SET value = excluded.value",
		node, key, value,
	)
	if err != nil {
		return storage.Wrap(storage.KindQueryFailure, err, "inserting property")
	}
	e.invalidatePatternCache()
	return nil
}
