package wire

// BlockSize is the size of one uncompressed data block. The final block of
// the compressed-data section is zero-padded up to this size.
const BlockSize = 64 * 1024

// EntriesPerOffsetRecord is the number of consecutive blocks one
// CompressionOffsetRecord covers.
const EntriesPerOffsetRecord = 16

// Magic and Version identify a ZArchive footer. Version also functions as
// an extended magic value.
const (
	Magic   uint32 = 0x169f52d6
	Version uint32 = 0x61bf3a01
)

// RootNameOffset is the sentinel name-table offset stored by the root
// directory entry, which has no name.
const RootNameOffset uint32 = 0x7FFFFFFF

// InvalidNode is the sentinel node handle meaning "not found".
const InvalidNode uint32 = 0xFFFFFFFF

// Size limits enforced when a reader loads a footer's sections.
const (
	MaxOffsetRecordsSize uint64 = 0xFFFFFFFF
	MaxNameTableSize     uint64 = 0x7FFFFFFF
	MaxFileTreeSize      uint64 = 0xFFFFFFFF
)
