package sqlengine

import (
	"database/sql"
	"encoding/json"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/snapshot"
	"sqlitegraph/internal/storage"
)

// InsertEdge rejects empty edge-type; does not pre-validate endpoint
// existence (the safety validator catches orphans) (spec §4.B).
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

	result, err := e.db().Exec(
		"INSERT INTO "+storage.TableEdges+" (from_id, to_id, edge_type, data) VALUES (?, ?, ?, ?)",
		spec.From, spec.To, spec.EdgeType, string(data),
	)
	if err != nil {
		return 0, storage.Wrap(storage.KindQueryFailure, err, "inserting edge")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, storage.Wrap(storage.KindQueryFailure, err, "reading inserted edge id")
	}

	e.invalidate(spec.From)
	e.invalidate(spec.To)
	e.invalidatePatternCache()
	e.snap.Publish(snapshot.RecordEdge(spec.From, spec.To))

	return id, nil
}

// Neighbors returns, for node and q.Direction, the opposing endpoints of
// every matching edge, ordered ORDER BY to_id, id (outgoing) or
// ORDER BY from_id, id (incoming) (spec §4.B). Empty when node absent or
// isolated.
func (e *Engine) Neighbors(node int64, q backend.NeighborQuery) ([]int64, error) {
	cached, ok := e.cacheLookup(node, q.Direction)
	if ok && q.EdgeType == "" {
		return cached, nil
	}

	var rows *sql.Rows
	var err error
	if q.Direction == backend.Outgoing {
		if q.EdgeType == "" {
			rows, err = e.conn.Query(
				"SELECT to_id FROM "+storage.TableEdges+" WHERE from_id = ? ORDER BY to_id, id", node)
		} else {
			rows, err = e.conn.Query(
				"SELECT to_id FROM "+storage.TableEdges+" WHERE from_id = ? AND edge_type = ? ORDER BY to_id, id",
				node, q.EdgeType)
		}
	} else {
		if q.EdgeType == "" {
			rows, err = e.conn.Query(
				"SELECT from_id FROM "+storage.TableEdges+" WHERE to_id = ? ORDER BY from_id, id", node)
		} else {
			rows, err = e.conn.Query(
				"SELECT from_id FROM "+storage.TableEdges+" WHERE to_id = ? AND edge_type = ? ORDER BY from_id, id",
				node, q.EdgeType)
		}
	}
	if err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "querying neighbors")
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storage.Wrap(storage.KindQueryFailure, err, "scanning neighbor row")
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(storage.KindQueryFailure, err, "iterating neighbor rows")
	}

	if q.EdgeType == "" {
		e.cacheStore(node, q.Direction, out)
	}

	return out, nil
}

// NodeDegree returns (0,0) for absent nodes (spec §4.B).
func (e *Engine) NodeDegree(node int64) (int, int, error) {
	var out, in int
	if err := e.conn.QueryRow(
		"SELECT COUNT(*) FROM "+storage.TableEdges+" WHERE from_id = ?", node,
	).Scan(&out); err != nil {
		return 0, 0, storage.Wrap(storage.KindQueryFailure, err, "counting outgoing edges")
	}
	if err := e.conn.QueryRow(
		"SELECT COUNT(*) FROM "+storage.TableEdges+" WHERE to_id = ?", node,
	).Scan(&in); err != nil {
		return 0, 0, storage.Wrap(storage.KindQueryFailure, err, "counting incoming edges")
	}
	return out, in, nil
}
