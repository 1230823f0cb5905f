package nativeengine

import (
	"sqlitegraph/internal/storage"
)

// nodeSlotOffset returns the byte offset of node id's fixed-size slot.
func (e *Engine) nodeSlotOffset(id int64) int64 {
	return int64(e.hdr.NodeDataOffset) + (id-1)*NodeSlotBudget
}

// edgeSlotOffset returns the byte offset of edge id's fixed-size slot.
func (e *Engine) edgeSlotOffset(id int64) int64 {
	return int64(e.hdr.EdgeDataOffset) + (id-1)*storage.EdgeSlotSize
}

func (e *Engine) readNodeSlot(id int64) (*nodeRecord, error) {
	if err := e.injectFault("read_node"); err != nil {
		return nil, err
	}
	buf := make([]byte, NodeSlotBudget)
	if _, err := e.file.ReadAt(buf, e.nodeSlotOffset(id)); err != nil {
		return nil, storage.Wrap(storage.KindIoFailure, err, "reading node slot")
	}
	rec, _, err := decodeNodeRecord(buf)
	if err != nil {
		return nil, err
	}
	if rec.ID != id {
		return nil, storage.ErrCorruptRecord(id, "node slot id mismatch")
	}
	return rec, nil
}

func (e *Engine) writeNodeSlot(rec *nodeRecord) error {
	if err := e.injectFault("write_node"); err != nil {
		return err
	}
	buf := rec.encode()
	if len(buf) > NodeSlotBudget {
		return storage.ErrInvalidInput("node record exceeds fixed slot budget")
	}
	padded := make([]byte, NodeSlotBudget)
	copy(padded, buf)
	_, err := e.file.WriteAt(padded, e.nodeSlotOffset(rec.ID))
	if err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "writing node slot")
	}
	return nil
}

func (e *Engine) readEdgeSlot(id int64) (*edgeRecord, error) {
	if err := e.injectFault("read_edge"); err != nil {
		return nil, err
	}
	buf := make([]byte, storage.EdgeSlotSize)
	if _, err := e.file.ReadAt(buf, e.edgeSlotOffset(id)); err != nil {
		return nil, storage.Wrap(storage.KindIoFailure, err, "reading edge slot")
	}
	rec, err := decodeEdgeRecord(buf, id)
	if err != nil {
		return nil, err
	}
	if rec.ID != id {
		return nil, storage.ErrCorruptRecord(id, "edge slot id mismatch")
	}
	return rec, nil
}

func (e *Engine) writeEdgeSlot(rec *edgeRecord) error {
	if err := e.injectFault("write_edge"); err != nil {
		return err
	}
	buf, err := rec.encode()
	if err != nil {
		return err
	}
	if _, err := e.file.WriteAt(buf, e.edgeSlotOffset(rec.ID)); err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "writing edge slot")
	}
	return nil
}

func (e *Engine) writeHeader() error {
	if _, err := e.file.WriteAt(e.hdr.encode(), 0); err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "writing native file header")
	}
	return nil
}
