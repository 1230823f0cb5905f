package sqlengine

import (
	"database/sql"
	"encoding/json"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/dump"
	"sqlitegraph/internal/storage"
)

var _ dump.Source = (*Engine)(nil)

// AllNodesFull lists every node in ascending id order, for package dump.
func (e *Engine) AllNodesFull() ([]backend.Node, error) {
	rows, err := e.conn.Query("SELECT id, kind, name, file_path, data FROM " + storage.TableEntities + " ORDER BY id")
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing nodes")
	}
	defer rows.Close()

	var out []backend.Node
	for rows.Next() {
		var n backend.Node
		var filePath sql.NullString
		var data string
		if err := rows.Scan(&n.ID, &n.Kind, &n.Name, &filePath, &data); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning node row")
		}
		n.FilePath = filePath.String
		n.Data = json.RawMessage(data)
		out = append(out, n)
	}
	return out, rows.Err()
}

// AllEdgesFull lists every edge in ascending id order, for package dump.
func (e *Engine) AllEdgesFull() ([]backend.Edge, error) {
	rows, err := e.conn.Query("SELECT id, from_id, to_id, edge_type, data FROM " + storage.TableEdges + " ORDER BY id")
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing edges")
	}
	defer rows.Close()

	var out []backend.Edge
	for rows.Next() {
		var e2 backend.Edge
		var data string
		if err := rows.Scan(&e2.ID, &e2.From, &e2.To, &e2.EdgeType, &data); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning edge row")
		}
		e2.Data = json.RawMessage(data)
		out = append(out, e2)
	}
	return out, rows.Err()
}

// AllPropertiesFull lists every (node, key, value) property row in
// ascending (entity_id, key) order, for package dump.
func (e *Engine) AllPropertiesFull() ([]dump.PropertyFull, error) {
	rows, err := e.conn.Query(
		"SELECT entity_id, key, value FROM " + storage.TableProperties + " ORDER BY entity_id, key")
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing properties")
	}
	defer rows.Close()

	var out []dump.PropertyFull
	for rows.Next() {
		var p dump.PropertyFull
		if err := rows.Scan(&p.NodeID, &p.Key, &p.Value); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning property row")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
