package nativeengine

import (
	"encoding/binary"

	"sqlitegraph/internal/storage"
)

// nodeRecord mirrors the on-disk variable-length node record (spec §4.A):
// 1-byte record-header; 8-byte id; 4-byte flags; 2-byte kind-len;
// 2-byte name-len; 4-byte data-len; kind bytes; name bytes; JSON payload;
// then a 24-byte adjacency metadata trailer.
type nodeRecord struct {
	ID       int64
	Flags    uint32
	Kind     string
	Name     string
	Data     []byte
	OutOffset uint64
	InOffset  uint64
	OutCount  uint32
	InCount   uint32
}

const nodeRecordHeaderVersion = 1

// size returns the total on-disk byte size of the record.
func (n *nodeRecord) size() int {
	return 1 + 8 + 4 + 2 + 2 + 4 + len(n.Kind) + len(n.Name) + len(n.Data) + storage.NodeAdjacencyMetaSize
}

func (n *nodeRecord) encode() []byte {
	buf := make([]byte, n.size())
	buf[0] = byte(nodeRecordHeaderVersion<<4) & 0xF0
	binary.BigEndian.PutUint64(buf[1:9], uint64(n.ID))
	binary.BigEndian.PutUint32(buf[9:13], n.Flags)
	binary.BigEndian.PutUint16(buf[13:15], uint16(len(n.Kind)))
	binary.BigEndian.PutUint16(buf[15:17], uint16(len(n.Name)))
	binary.BigEndian.PutUint32(buf[17:21], uint32(len(n.Data)))

	pos := 21
	copy(buf[pos:pos+len(n.Kind)], n.Kind)
	pos += len(n.Kind)
	copy(buf[pos:pos+len(n.Name)], n.Name)
	pos += len(n.Name)
	copy(buf[pos:pos+len(n.Data)], n.Data)
	pos += len(n.Data)

	binary.BigEndian.PutUint64(buf[pos:pos+8], n.OutOffset)
	binary.BigEndian.PutUint64(buf[pos+8:pos+16], n.InOffset)
	binary.BigEndian.PutUint32(buf[pos+16:pos+20], n.OutCount)
	binary.BigEndian.PutUint32(buf[pos+20:pos+24], n.InCount)

	return buf
}

// decodeNodeRecord reads one node record starting at buf[0]. It returns the
// record and the number of bytes consumed.
func decodeNodeRecord(buf []byte) (*nodeRecord, int, error) {
	if len(buf) < 21 {
		return nil, 0, storage.New(storage.KindCorruptRecord, "node record truncated before fixed header")
	}

	n := &nodeRecord{}
	n.ID = int64(binary.BigEndian.Uint64(buf[1:9]))
	n.Flags = binary.BigEndian.Uint32(buf[9:13])
	kindLen := int(binary.BigEndian.Uint16(buf[13:15]))
	nameLen := int(binary.BigEndian.Uint16(buf[15:17]))
	dataLen := int(binary.BigEndian.Uint32(buf[17:21]))

	need := 21 + kindLen + nameLen + dataLen + storage.NodeAdjacencyMetaSize
	if len(buf) < need {
		return nil, 0, storage.ErrCorruptRecord(n.ID, "node record shorter than declared lengths")
	}

	pos := 21
	n.Kind = string(buf[pos : pos+kindLen])
	pos += kindLen
	n.Name = string(buf[pos : pos+nameLen])
	pos += nameLen
	n.Data = append([]byte(nil), buf[pos:pos+dataLen]...)
	pos += dataLen

	n.OutOffset = binary.BigEndian.Uint64(buf[pos : pos+8])
	n.InOffset = binary.BigEndian.Uint64(buf[pos+8 : pos+16])
	n.OutCount = binary.BigEndian.Uint32(buf[pos+16 : pos+20])
	n.InCount = binary.BigEndian.Uint32(buf[pos+20 : pos+24])

	return n, need, nil
}
