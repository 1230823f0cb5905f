// Package nativeengine implements the native binary-file storage engine
// (spec §4.C, §4.A "Native record layout", §6 "Native file format"). All
// multi-byte scalars are big-endian; the file starts with a fixed 64-byte
// header, followed by a node-data region and a fixed-128-byte-stride
// edge-data region.
package nativeengine

import (
	"encoding/binary"

	"sqlitegraph/internal/storage"
)

// header is the in-memory mirror of the on-disk 64-byte file header (spec
// §4.A).
type header struct {
	Magic             [8]byte
	FormatVersion     uint32
	FeatureFlags      uint32
	NodeCount         uint64
	EdgeCount         uint64
	SchemaVersion     uint64
	NodeDataOffset    uint64
	EdgeDataOffset    uint64
}

func newHeader() *header {
	h := &header{
		FormatVersion:  storage.NativeFormatVersion,
		SchemaVersion:  storage.CurrentSchemaVersion,
		NodeDataOffset: storage.HeaderSize,
		EdgeDataOffset: storage.HeaderSize,
	}
	h.Magic = storage.NativeMagic
	return h
}

// encode serialises the header to its fixed 64-byte on-disk form, appending
// the checksum as the last 8 bytes (spec §4.A).
func (h *header) encode() []byte {
	buf := make([]byte, storage.HeaderSize)
	copy(buf[0:8], h.Magic[:])
	binary.BigEndian.PutUint32(buf[8:12], h.FormatVersion)
	binary.BigEndian.PutUint32(buf[12:16], h.FeatureFlags)
	binary.BigEndian.PutUint64(buf[16:24], h.NodeCount)
	binary.BigEndian.PutUint64(buf[24:32], h.EdgeCount)
	binary.BigEndian.PutUint64(buf[32:40], h.SchemaVersion)
	binary.BigEndian.PutUint64(buf[40:48], h.NodeDataOffset)
	binary.BigEndian.PutUint64(buf[48:56], h.EdgeDataOffset)
	binary.BigEndian.PutUint64(buf[56:64], checksum(buf[0:56]))
	return buf
}

// checksum sums the preceding bytes interpreted as 7 x uint64 big-endian,
// wrapping add (spec §4.A).
func checksum(data []byte) uint64 {
	var sum uint64
	for i := 0; i+8 <= len(data); i += 8 {
		sum += binary.BigEndian.Uint64(data[i : i+8])
	}
	return sum
}

// decodeHeader parses and validates the 64-byte header, applying the
// open/refusal rules of spec §4.A: magic mismatch -> FormatMismatch; format
// version too new -> UnsupportedVersion; checksum mismatch -> CorruptHeader;
// schema version too new -> UnsupportedVersion.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < storage.HeaderSize {
		return nil, storage.New(storage.KindCorruptHeader, "file shorter than header size")
	}

	var magic [8]byte
	copy(magic[:], buf[0:8])
	if magic != storage.NativeMagic {
		return nil, storage.New(storage.KindFormatMismatch, "magic bytes do not match")
	}

	h := &header{Magic: magic}
	h.FormatVersion = binary.BigEndian.Uint32(buf[8:12])
	h.FeatureFlags = binary.BigEndian.Uint32(buf[12:16])
	h.NodeCount = binary.BigEndian.Uint64(buf[16:24])
	h.EdgeCount = binary.BigEndian.Uint64(buf[24:32])
	h.SchemaVersion = binary.BigEndian.Uint64(buf[32:40])
	h.NodeDataOffset = binary.BigEndian.Uint64(buf[40:48])
	h.EdgeDataOffset = binary.BigEndian.Uint64(buf[48:56])
	storedChecksum := binary.BigEndian.Uint64(buf[56:64])

	if h.FormatVersion > storage.NativeFormatVersion {
		return nil, storage.New(storage.KindUnsupportedVersion, "native format version newer than compiled constant").
			WithDetail("found", h.FormatVersion).WithDetail("max", storage.NativeFormatVersion)
	}

	if checksum(buf[0:56]) != storedChecksum {
		return nil, storage.New(storage.KindCorruptHeader, "header checksum mismatch")
	}

	if h.SchemaVersion > storage.CurrentSchemaVersion {
		return nil, storage.New(storage.KindUnsupportedVersion, "schema version newer than compiled constant").
			WithDetail("found", h.SchemaVersion).WithDetail("max", storage.CurrentSchemaVersion)
	}

	return h, nil
}
