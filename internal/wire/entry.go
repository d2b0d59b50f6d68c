package wire

import "encoding/binary"

// EntrySize is the fixed on-disk size of one FileDirectoryEntry.
const EntrySize = 16

// fileFlag is the MSB of nameOffsetAndTypeFlag: set for files, clear for
// directories.
const fileFlag uint32 = 0x80000000

// Entry is the in-memory form of a fixed 16-byte directory/file tree
// record. The three trailing 32-bit words are reused as either a file
// record (offset/size, split low/high) or a directory record
// (child range). Which interpretation applies is selected by IsFile.
type Entry struct {
	nameOffsetAndTypeFlag uint32
	word1                 uint32 // fileOffsetLow | nodeStartIndex
	word2                 uint32 // fileSizeLow | count
	word3                 uint32 // offsetHigh16|sizeHigh16 | reserved
}

// NewFileEntry builds an Entry describing a file.
func NewFileEntry(nameOffset uint32, fileOffset, fileSize uint64) Entry {
	var e Entry
	e.SetTypeAndNameOffset(true, nameOffset)
	e.SetFileOffset(fileOffset)
	e.SetFileSize(fileSize)
	return e
}

// NewDirEntry builds an Entry describing a directory with the given
// contiguous child range.
func NewDirEntry(nameOffset, nodeStartIndex, count uint32) Entry {
	var e Entry
	e.SetTypeAndNameOffset(false, nameOffset)
	e.word1 = nodeStartIndex
	e.word2 = count
	e.word3 = 0
	return e
}

// SetTypeAndNameOffset sets the file/directory flag and the name-table
// byte offset (low 31 bits).
func (e *Entry) SetTypeAndNameOffset(isFile bool, nameOffset uint32) {
	e.nameOffsetAndTypeFlag = nameOffset & 0x7FFFFFFF
	if isFile {
		e.nameOffsetAndTypeFlag |= fileFlag
	}
}

// IsFile reports whether this entry describes a file (as opposed to a
// directory).
func (e Entry) IsFile() bool {
	return e.nameOffsetAndTypeFlag&fileFlag != 0
}

// NameOffset returns the byte offset of this entry's name in the name
// table, or RootNameOffset for the unnamed root.
func (e Entry) NameOffset() uint32 {
	return e.nameOffsetAndTypeFlag &^ fileFlag
}

// FileOffset returns the file's byte offset within the uncompressed
// input stream. Only meaningful when IsFile is true.
func (e Entry) FileOffset() uint64 {
	return uint64(e.word1) | (uint64(e.word3&0xFFFF) << 32)
}

// FileSize returns the file's uncompressed byte length. Only meaningful
// when IsFile is true.
func (e Entry) FileSize() uint64 {
	return uint64(e.word2) | (uint64(e.word3&0xFFFF0000) << 16)
}

// SetFileOffset sets the file offset, preserving the size-high bits
// packed into word3.
func (e *Entry) SetFileOffset(offset uint64) {
	e.word1 = uint32(offset)
	e.word3 = (e.word3 & 0xFFFF0000) | uint32(offset>>32)&0xFFFF
}

// SetFileSize sets the file size, preserving the offset-high bits packed
// into word3.
func (e *Entry) SetFileSize(size uint64) {
	e.word2 = uint32(size)
	e.word3 = (e.word3 & 0x0000FFFF) | (uint32(size>>32)&0xFFFF)<<16
}

// NodeStartIndex returns the first child index of a directory's
// contiguous child range. Only meaningful when IsFile is false.
func (e Entry) NodeStartIndex() uint32 {
	return e.word1
}

// Count returns the number of children in a directory's child range.
// Only meaningful when IsFile is false.
func (e Entry) Count() uint32 {
	return e.word2
}

// Marshal encodes the entry into its 16-byte big-endian disk form.
func (e Entry) Marshal(dst []byte) {
	_ = dst[EntrySize-1]
	binary.BigEndian.PutUint32(dst[0:4], e.nameOffsetAndTypeFlag)
	binary.BigEndian.PutUint32(dst[4:8], e.word1)
	binary.BigEndian.PutUint32(dst[8:12], e.word2)
	binary.BigEndian.PutUint32(dst[12:16], e.word3)
}

// UnmarshalEntry decodes one 16-byte big-endian disk record.
func UnmarshalEntry(src []byte) Entry {
	_ = src[EntrySize-1]
	return Entry{
		nameOffsetAndTypeFlag: binary.BigEndian.Uint32(src[0:4]),
		word1:                 binary.BigEndian.Uint32(src[4:8]),
		word2:                 binary.BigEndian.Uint32(src[8:12]),
		word3:                 binary.BigEndian.Uint32(src[12:16]),
	}
}

// MarshalEntries encodes a BFS-ordered slice of entries into dst, which
// must be len(entries)*EntrySize bytes.
func MarshalEntries(entries []Entry, dst []byte) {
	for i, e := range entries {
		e.Marshal(dst[i*EntrySize : (i+1)*EntrySize])
	}
}

// UnmarshalEntries decodes a whole number of EntrySize records from src.
func UnmarshalEntries(src []byte) []Entry {
	count := len(src) / EntrySize
	entries := make([]Entry, count)
	for i := range entries {
		entries[i] = UnmarshalEntry(src[i*EntrySize : (i+1)*EntrySize])
	}
	return entries
}
