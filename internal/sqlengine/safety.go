package sqlengine

import (
	"sqlitegraph/internal/safety"
	"sqlitegraph/internal/storage"
)

var _ safety.Inspector = (*Engine)(nil)

func (e *Engine) AllEdges() ([]safety.EdgeRow, error) {
	rows, err := e.conn.Query("SELECT id, from_id, to_id, edge_type FROM " + storage.TableEdges)
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing edges")
	}
	defer rows.Close()

	var out []safety.EdgeRow
	for rows.Next() {
		var r safety.EdgeRow
		if err := rows.Scan(&r.ID, &r.From, &r.To, &r.EdgeType); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning edge row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (e *Engine) AllLabels() ([]safety.LabelRow, error) {
	rows, err := e.conn.Query("SELECT entity_id, label FROM " + storage.TableLabels)
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing labels")
	}
	defer rows.Close()

	var out []safety.LabelRow
	for rows.Next() {
		var r safety.LabelRow
		if err := rows.Scan(&r.NodeID, &r.Label); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning label row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (e *Engine) AllProperties() ([]safety.PropertyRow, error) {
	rows, err := e.conn.Query("SELECT entity_id, key FROM " + storage.TableProperties)
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing properties")
	}
	defer rows.Close()

	var out []safety.PropertyRow
	for rows.Next() {
		var r safety.PropertyRow
		if err := rows.Scan(&r.NodeID, &r.Key); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning property row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (e *Engine) AllNodeIDs() ([]int64, error) {
	rows, err := e.conn.Query("SELECT id FROM " + storage.TableEntities + " ORDER BY id")
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "listing node ids")
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning node id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (e *Engine) NodeExistsForSafety(id int64) (bool, error) {
	return e.NodeExists(id)
}

func (e *Engine) NodePayload(id int64) ([]byte, error) {
	var data string
	err := e.conn.QueryRow("SELECT data FROM "+storage.TableEntities+" WHERE id = ?", id).Scan(&data)
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "reading node payload")
	}
	return []byte(data), nil
}
