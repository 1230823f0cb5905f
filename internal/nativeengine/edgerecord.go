package nativeengine

import (
	"encoding/binary"

	"sqlitegraph/internal/storage"
)

// edgeRecord mirrors the on-disk fixed-stride edge slot (spec §4.A):
// 1-byte record-header; 8-byte id; 8-byte source; 8-byte target;
// 2-byte type-len; 2-byte flags; 4-byte data-len; type bytes; payload
// bytes; zero-padded to storage.EdgeSlotSize.
type edgeRecord struct {
	ID       int64
	Source   int64
	Target   int64
	Flags    uint16
	EdgeType string
	Data     []byte
}

const edgeRecordHeaderVersion = 1
const edgeFixedHeaderSize = 1 + 8 + 8 + 8 + 2 + 2 + 4 // 33 bytes
const edgePayloadCapacity = storage.EdgeSlotSize - edgeFixedHeaderSize

func (e *edgeRecord) encode() ([]byte, error) {
	if len(e.EdgeType)+len(e.Data) > edgePayloadCapacity {
		return nil, storage.ErrInvalidInput("edge type + payload exceed fixed slot capacity")
	}

	buf := make([]byte, storage.EdgeSlotSize)
	buf[0] = byte(edgeRecordHeaderVersion<<4) & 0xF0
	binary.BigEndian.PutUint64(buf[1:9], uint64(e.ID))
	binary.BigEndian.PutUint64(buf[9:17], uint64(e.Source))
	binary.BigEndian.PutUint64(buf[17:25], uint64(e.Target))
	binary.BigEndian.PutUint16(buf[25:27], uint16(len(e.EdgeType)))
	binary.BigEndian.PutUint16(buf[27:29], e.Flags)
	binary.BigEndian.PutUint32(buf[29:33], uint32(len(e.Data)))

	pos := edgeFixedHeaderSize
	copy(buf[pos:pos+len(e.EdgeType)], e.EdgeType)
	pos += len(e.EdgeType)
	copy(buf[pos:pos+len(e.Data)], e.Data)

	return buf, nil
}

// decodeEdgeRecord reads one fixed-size slot. A never-written (all-zero)
// slot is not special-cased here: it decodes to ID 0, which readEdgeSlot
// then rejects as an id mismatch.
func decodeEdgeRecord(buf []byte, slotIndex int64) (*edgeRecord, error) {
	if len(buf) < storage.EdgeSlotSize {
		return nil, storage.New(storage.KindCorruptRecord, "edge slot truncated").WithDetail("id", slotIndex)
	}

	e := &edgeRecord{}
	e.ID = int64(binary.BigEndian.Uint64(buf[1:9]))
	e.Source = int64(binary.BigEndian.Uint64(buf[9:17]))
	e.Target = int64(binary.BigEndian.Uint64(buf[17:25]))
	typeLen := int(binary.BigEndian.Uint16(buf[25:27]))
	e.Flags = binary.BigEndian.Uint16(buf[27:29])
	dataLen := int(binary.BigEndian.Uint32(buf[29:33]))

	if edgeFixedHeaderSize+typeLen+dataLen > storage.EdgeSlotSize {
		return nil, storage.ErrCorruptRecord(slotIndex, "edge slot declared lengths exceed slot size")
	}

	pos := edgeFixedHeaderSize
	e.EdgeType = string(buf[pos : pos+typeLen])
	pos += typeLen
	e.Data = append([]byte(nil), buf[pos:pos+dataLen]...)

	return e, nil
}
