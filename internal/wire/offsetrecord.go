package wire

import (
	"encoding/binary"
	"fmt"
)

// OffsetRecordSize is the fixed on-disk size of a CompressionOffsetRecord:
// one uint64 base offset plus 16 uint16 size-minus-one fields.
const OffsetRecordSize = 8 + EntriesPerOffsetRecord*2

// OffsetRecord covers the on-disk placement of EntriesPerOffsetRecord
// consecutive compressed blocks. Block i of the record starts at
// BaseOffset + sum(Sizes[j]+1 for j < i) and is Sizes[i]+1 bytes long.
type OffsetRecord struct {
	BaseOffset uint64
	Sizes      [EntriesPerOffsetRecord]uint16 // stored size minus one
}

// BlockSize returns the on-disk compressed size of block i within the
// record (0 <= i < EntriesPerOffsetRecord).
func (r OffsetRecord) BlockSize(i int) uint64 {
	return uint64(r.Sizes[i]) + 1
}

// BlockOffset returns the on-disk byte offset of block i within the
// record.
func (r OffsetRecord) BlockOffset(i int) uint64 {
	off := r.BaseOffset
	for j := 0; j < i; j++ {
		off += r.BlockSize(j)
	}
	return off
}

// SetBlockSize stores the compressed size of block i, which must be in
// [1, 65536].
func (r *OffsetRecord) SetBlockSize(i int, size uint64) error {
	if size < 1 || size > BlockSize {
		return fmt.Errorf("wire: block size %d out of range", size)
	}
	r.Sizes[i] = uint16(size - 1)
	return nil
}

// Marshal encodes the record into its fixed big-endian disk form.
func (r OffsetRecord) Marshal(dst []byte) {
	_ = dst[OffsetRecordSize-1]
	binary.BigEndian.PutUint64(dst[0:8], r.BaseOffset)
	for i, s := range r.Sizes {
		binary.BigEndian.PutUint16(dst[8+i*2:10+i*2], s)
	}
}

// UnmarshalOffsetRecord decodes one OffsetRecordSize-byte big-endian disk
// record.
func UnmarshalOffsetRecord(src []byte) OffsetRecord {
	_ = src[OffsetRecordSize-1]
	var r OffsetRecord
	r.BaseOffset = binary.BigEndian.Uint64(src[0:8])
	for i := range r.Sizes {
		r.Sizes[i] = binary.BigEndian.Uint16(src[8+i*2 : 10+i*2])
	}
	return r
}

// MarshalOffsetRecords encodes records into dst, which must be
// len(records)*OffsetRecordSize bytes.
func MarshalOffsetRecords(records []OffsetRecord, dst []byte) {
	for i, r := range records {
		r.Marshal(dst[i*OffsetRecordSize : (i+1)*OffsetRecordSize])
	}
}

// UnmarshalOffsetRecords decodes a whole number of OffsetRecordSize
// records from src.
func UnmarshalOffsetRecords(src []byte) []OffsetRecord {
	count := len(src) / OffsetRecordSize
	records := make([]OffsetRecord, count)
	for i := range records {
		records[i] = UnmarshalOffsetRecord(src[i*OffsetRecordSize : (i+1)*OffsetRecordSize])
	}
	return records
}
