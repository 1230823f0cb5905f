// Package dump implements the recovery dump/restore format (spec §6
// "Recovery dump format"): a line-delimited JSON stream that a fresh
// engine can replay under a single pass to reconstruct the node, edge,
// label, and property multisets exactly (spec §8 invariant 5).
package dump

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"lukechampine.com/blake3"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/safety"
	"sqlitegraph/internal/storage"
)

// PropertyFull is one (node, key, value) property row, the value-carrying
// counterpart to safety.PropertyRow (which the safety validator doesn't
// need the value for).
type PropertyFull struct {
	NodeID int64
	Key    string
	Value  string
}

// Source is the read side a dumpable engine must implement.
type Source interface {
	AllNodesFull() ([]backend.Node, error)
	AllEdgesFull() ([]backend.Edge, error)
	AllLabels() ([]safety.LabelRow, error)
	AllPropertiesFull() ([]PropertyFull, error)
}

// Destination is the write side a restore target must implement.
type Destination interface {
	backend.Backend
	InsertLabel(node int64, label string) error
	InsertProperty(node int64, key, value string) error
}

// Transactor lets Restore wrap its replay loop in a real transaction (spec
// §6 "Restore replays lines in order under a single transaction"), so a
// destination-level failure partway through a stream rolls back instead of
// leaving a partially-applied graph. Implementing it is optional: a
// Destination without atomic transaction support (the native engine's
// fixed-slot file layout has no multi-operation rollback) still gets
// protection from Restore's up-front decode pass, which rejects a malformed
// or unrecognized line before anything at all is applied.
type Transactor interface {
	BeginRestore() (commit func() error, rollback func(), err error)
}

type controlLine struct {
	SchemaVersion int    `json:"schema_version"`
	Checksum      string `json:"checksum,omitempty"`
}

type entityLine struct {
	Kind     string          `json:"kind"`
	ID       int64           `json:"id"`
	NodeKind string          `json:"node_kind"`
	Name     string          `json:"name"`
	FilePath string          `json:"file_path,omitempty"`
	Data     json.RawMessage `json:"data"`
}

type edgeLine struct {
	Kind     string          `json:"kind"`
	ID       int64           `json:"id"`
	From     int64           `json:"from"`
	To       int64           `json:"to"`
	EdgeType string          `json:"edge_type"`
	Data     json.RawMessage `json:"data"`
}

type labelLine struct {
	Kind   string `json:"kind"`
	NodeID int64  `json:"entity_id"`
	Label  string `json:"label"`
}

type propertyLine struct {
	Kind   string `json:"kind"`
	NodeID int64  `json:"entity_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// Dump writes the recovery dump stream for src to w, at schemaVersion
// (spec §6). Body lines are built first so a blake3 checksum over them can
// be placed in the control line (SPEC_FULL's blake3 wiring for this
// format).
func Dump(src Source, schemaVersion int, w io.Writer) error {
	var body []byte

	nodes, err := src.AllNodesFull()
	if err != nil {
		return err
	}
	for _, n := range nodes {
		line, err := json.Marshal(entityLine{
			Kind: "entity", ID: n.ID, NodeKind: n.Kind, Name: n.Name, FilePath: n.FilePath, Data: n.Data,
		})
		if err != nil {
			return storage.Wrap(storage.KindIoFailure, err, "encoding entity line")
		}
		body = append(body, line...)
		body = append(body, '\n')
	}

	edges, err := src.AllEdgesFull()
	if err != nil {
		return err
	}
	for _, e := range edges {
		line, err := json.Marshal(edgeLine{
			Kind: "edge", ID: e.ID, From: e.From, To: e.To, EdgeType: e.EdgeType, Data: e.Data,
		})
		if err != nil {
			return storage.Wrap(storage.KindIoFailure, err, "encoding edge line")
		}
		body = append(body, line...)
		body = append(body, '\n')
	}

	labels, err := src.AllLabels()
	if err != nil {
		return err
	}
	for _, l := range labels {
		line, err := json.Marshal(labelLine{Kind: "label", NodeID: l.NodeID, Label: l.Label})
		if err != nil {
			return storage.Wrap(storage.KindIoFailure, err, "encoding label line")
		}
		body = append(body, line...)
		body = append(body, '\n')
	}

	props, err := src.AllPropertiesFull()
	if err != nil {
		return err
	}
	for _, p := range props {
		line, err := json.Marshal(propertyLine{Kind: "property", NodeID: p.NodeID, Key: p.Key, Value: p.Value})
		if err != nil {
			return storage.Wrap(storage.KindIoFailure, err, "encoding property line")
		}
		body = append(body, line...)
		body = append(body, '\n')
	}

	sum := blake3.Sum256(body)
	control, err := json.Marshal(controlLine{SchemaVersion: schemaVersion, Checksum: hex.EncodeToString(sum[:])})
	if err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "encoding control line")
	}

	if _, err := fmt.Fprintf(w, "%s\n", control); err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "writing control line")
	}
	if _, err := w.Write(body); err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "writing dump body")
	}
	return nil
}

// Restore replays a dump stream into dest, which must be empty so that
// freshly assigned monotonic ids line up with the dumped ones (spec §6
// "Restore replays lines in order"; the format has no delete operation, so
// an empty destination's autoincrement sequence reproduces the dumped ids
// exactly).
func Restore(r io.Reader, dest Destination) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return storage.New(storage.KindMigrationError, "empty dump stream")
	}
	var ctrl controlLine
	if err := json.Unmarshal(scanner.Bytes(), &ctrl); err != nil {
		return storage.Wrap(storage.KindMigrationError, err, "parsing dump control line")
	}

	var body []byte
	var lines [][]byte
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		lines = append(lines, line)
		body = append(body, line...)
		body = append(body, '\n')
	}
	if err := scanner.Err(); err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "reading dump stream")
	}

	if ctrl.Checksum != "" {
		sum := blake3.Sum256(body)
		if hex.EncodeToString(sum[:]) != ctrl.Checksum {
			return storage.New(storage.KindCorruptRecord, "dump checksum mismatch")
		}
	}

	// Decode every line before applying any of them, so a malformed line or
	// an unrecognized kind anywhere in the stream is caught up front rather
	// than after some earlier lines have already mutated dest.
	ops := make([]restoreOp, 0, len(lines))
	for _, raw := range lines {
		op, err := decodeRestoreOp(raw)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	if tx, ok := dest.(Transactor); ok {
		commit, rollback, err := tx.BeginRestore()
		if err != nil {
			return err
		}
		for _, op := range ops {
			if err := applyRestoreOp(dest, op); err != nil {
				rollback()
				return err
			}
		}
		return commit()
	}

	for _, op := range ops {
		if err := applyRestoreOp(dest, op); err != nil {
			return err
		}
	}
	return nil
}

// restoreOp is one decoded dump line, ready to apply to a Destination.
type restoreOp struct {
	kind     string
	entity   entityLine
	edge     edgeLine
	label    labelLine
	property propertyLine
}

// decodeRestoreOp parses raw into a restoreOp, failing on malformed JSON or
// an unrecognized kind without touching any Destination.
func decodeRestoreOp(raw []byte) (restoreOp, error) {
	var tagged struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return restoreOp{}, storage.Wrap(storage.KindMigrationError, err, "parsing dump line")
	}

	op := restoreOp{kind: tagged.Kind}
	switch tagged.Kind {
	case "entity":
		if err := json.Unmarshal(raw, &op.entity); err != nil {
			return restoreOp{}, storage.Wrap(storage.KindMigrationError, err, "parsing entity line")
		}
	case "edge":
		if err := json.Unmarshal(raw, &op.edge); err != nil {
			return restoreOp{}, storage.Wrap(storage.KindMigrationError, err, "parsing edge line")
		}
	case "label":
		if err := json.Unmarshal(raw, &op.label); err != nil {
			return restoreOp{}, storage.Wrap(storage.KindMigrationError, err, "parsing label line")
		}
	case "property":
		if err := json.Unmarshal(raw, &op.property); err != nil {
			return restoreOp{}, storage.Wrap(storage.KindMigrationError, err, "parsing property line")
		}
	default:
		return restoreOp{}, storage.New(storage.KindMigrationError, "unknown dump line kind").WithDetail("kind", tagged.Kind)
	}
	return op, nil
}

// applyRestoreOp writes one decoded op to dest.
func applyRestoreOp(dest Destination, op restoreOp) error {
	switch op.kind {
	case "entity":
		_, err := dest.InsertNode(backend.NodeSpec{Kind: op.entity.NodeKind, Name: op.entity.Name, FilePath: op.entity.FilePath, Data: op.entity.Data})
		return err
	case "edge":
		_, err := dest.InsertEdge(backend.EdgeSpec{From: op.edge.From, To: op.edge.To, EdgeType: op.edge.EdgeType, Data: op.edge.Data})
		return err
	case "label":
		return dest.InsertLabel(op.label.NodeID, op.label.Label)
	case "property":
		return dest.InsertProperty(op.property.NodeID, op.property.Key, op.property.Value)
	}
	return nil
}
