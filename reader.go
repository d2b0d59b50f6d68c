package zarchive

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/exzap/zarchive/internal/blockcache"
	"github.com/exzap/zarchive/internal/progress"
	"github.com/exzap/zarchive/internal/wire"
)

// NodeHandle addresses one entry in an open archive's file tree. The
// root directory is always node 0. InvalidNode is returned by lookups
// that fail.
type NodeHandle = uint32

// InvalidNode is the sentinel handle meaning "not found".
const InvalidNode NodeHandle = wire.InvalidNode

// defaultCacheSize is the reader's default block cache budget (4 MiB,
// 64 blocks of 64 KiB).
const defaultCacheSize = 4 << 20

// DirEntry describes one child of a directory, as returned by
// GetDirEntry.
type DirEntry struct {
	Name        string
	IsFile      bool
	IsDirectory bool
	Size        uint64 // only meaningful for files
}

// byteSource is the subset of *os.File a Reader needs; satisfied by
// *os.File and by anything else providing random access plus a known
// size.
type byteSource interface {
	io.ReaderAt
	io.Closer
}

// Reader serves random-access reads from a finished archive. Reads are
// safe for concurrent use: all cache access is serialized behind a
// single mutex.
type Reader struct {
	source byteSource

	offsetRecords []wire.OffsetRecord
	nameTable     []byte
	fileTree      []wire.Entry

	compressedDataOffset uint64
	compressedDataSize   uint64
	blockCount           uint64
	totalSize            uint64
	integrityHash        [32]byte

	mu          sync.Mutex
	cache       *blockcache.Cache
	decoderPool sync.Pool

	cacheSize int
	logger    *slog.Logger
	progress  progress.Func

	infoOnce sync.Once
	info     Info
}

// Open opens the archive at path.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewReader opens the archive held in f, reading through f.ReadAt and
// taking the archive's total size from f.Stat.
func NewReader(f *os.File, opts ...ReaderOption) (*Reader, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return newReader(f, fi.Size(), opts...)
}

func newReader(source byteSource, size int64, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{source: source, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(r)
	}

	if size <= wire.FooterSize {
		return nil, ErrTooSmall
	}
	footerBuf := make([]byte, wire.FooterSize)
	if _, err := source.ReadAt(footerBuf, size-wire.FooterSize); err != nil {
		return nil, fmt.Errorf("zarchive: read footer: %w", err)
	}
	footer, err := wire.UnmarshalFooter(footerBuf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotArchive, err)
	}
	if footer.TotalSize != uint64(size) {
		return nil, fmt.Errorf("%w: footer total size %d does not match file size %d", ErrCorrupt, footer.TotalSize, size)
	}
	for _, s := range footer.Sections {
		if s.Offset+s.Size > uint64(size) {
			return nil, fmt.Errorf("%w: section out of range", ErrCorrupt)
		}
	}
	offsetInfo := footer.Section(wire.SectionOffsetRecords)
	nameInfo := footer.Section(wire.SectionNameTable)
	treeInfo := footer.Section(wire.SectionFileTree)
	if offsetInfo.Size > wire.MaxOffsetRecordsSize {
		return nil, fmt.Errorf("%w: offset records section too large", ErrCorrupt)
	}
	if nameInfo.Size > wire.MaxNameTableSize {
		return nil, fmt.Errorf("%w: name table too large", ErrCorrupt)
	}
	if treeInfo.Size > wire.MaxFileTreeSize {
		return nil, fmt.Errorf("%w: file tree too large", ErrCorrupt)
	}

	offsetBuf, err := readSection(source, offsetInfo)
	if err != nil || len(offsetBuf)%wire.OffsetRecordSize != 0 {
		return nil, fmt.Errorf("%w: offset records", ErrCorrupt)
	}
	nameTable, err := readSection(source, nameInfo)
	if err != nil {
		return nil, fmt.Errorf("%w: name table: %s", ErrCorrupt, err)
	}
	treeBuf, err := readSection(source, treeInfo)
	if err != nil || len(treeBuf) == 0 || len(treeBuf)%wire.EntrySize != 0 {
		return nil, fmt.Errorf("%w: file tree", ErrCorrupt)
	}

	fileTree := wire.UnmarshalEntries(treeBuf)
	if fileTree[0].IsFile() {
		return nil, fmt.Errorf("%w: first entry must be the root directory", ErrCorrupt)
	}
	if fileTree[0].NameOffset() != wire.RootNameOffset {
		return nil, fmt.Errorf("%w: root node must not have a name", ErrCorrupt)
	}

	r.offsetRecords = wire.UnmarshalOffsetRecords(offsetBuf)
	r.nameTable = nameTable
	r.fileTree = fileTree
	compressedInfo := footer.Section(wire.SectionCompressedData)
	r.compressedDataOffset = compressedInfo.Offset
	r.compressedDataSize = compressedInfo.Size
	r.blockCount = uint64(len(r.offsetRecords)) * wire.EntriesPerOffsetRecord
	r.totalSize = footer.TotalSize
	r.integrityHash = footer.IntegrityHash
	r.cache = blockcache.New(wire.BlockSize, r.cacheSize)
	r.decoderPool.New = func() any {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil
		}
		return dec
	}
	return r, nil
}

func readSection(source io.ReaderAt, info wire.OffsetInfo) ([]byte, error) {
	buf := make([]byte, info.Size)
	if info.Size == 0 {
		return buf, nil
	}
	if _, err := source.ReadAt(buf, int64(info.Offset)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.source.Close()
}

// LookUp resolves path to a node handle, descending one path segment at
// a time from the root. It returns InvalidNode if any segment is
// missing, if a non-final segment names a file, or if the final segment
// exists but is rejected by allowFile/allowDirectory.
func (r *Reader) LookUp(path string, allowFile, allowDirectory bool) NodeHandle {
	current := uint32(0)
	rest := path
	for {
		name, next, ok := wire.NextPathNode(rest)
		if !ok {
			entry := r.fileTree[current]
			if entry.IsFile() && !allowFile {
				return InvalidNode
			}
			if !entry.IsFile() && !allowDirectory {
				return InvalidNode
			}
			return current
		}
		rest = next
		entry := r.fileTree[current]
		if entry.IsFile() {
			return InvalidNode
		}
		start := entry.NodeStartIndex()
		end := start + entry.Count()
		match := InvalidNode
		for i := start; i < end; i++ {
			itName, _, err := wire.DecodeName(r.nameTable, r.fileTree[i].NameOffset())
			if err != nil {
				continue
			}
			if wire.EqualNodeName(name, itName) {
				match = i
				break
			}
		}
		if match == InvalidNode {
			return InvalidNode
		}
		current = match
	}
}

// IsDirectory reports whether nodeHandle names a directory.
func (r *Reader) IsDirectory(nodeHandle NodeHandle) bool {
	if nodeHandle >= uint32(len(r.fileTree)) {
		return false
	}
	return !r.fileTree[nodeHandle].IsFile()
}

// IsFile reports whether nodeHandle names a file.
func (r *Reader) IsFile(nodeHandle NodeHandle) bool {
	if nodeHandle >= uint32(len(r.fileTree)) {
		return false
	}
	return r.fileTree[nodeHandle].IsFile()
}

// GetDirEntryCount returns the number of children of nodeHandle, or 0 if
// it names a file or doesn't exist.
func (r *Reader) GetDirEntryCount(nodeHandle NodeHandle) uint32 {
	if nodeHandle >= uint32(len(r.fileTree)) {
		return 0
	}
	entry := r.fileTree[nodeHandle]
	if entry.IsFile() {
		return 0
	}
	return entry.Count()
}

// GetDirEntry returns the index-th child of nodeHandle.
func (r *Reader) GetDirEntry(nodeHandle NodeHandle, index uint32) (DirEntry, error) {
	if nodeHandle >= uint32(len(r.fileTree)) {
		return DirEntry{}, ErrNotFound
	}
	dir := r.fileTree[nodeHandle]
	if dir.IsFile() {
		return DirEntry{}, ErrNotDirectory
	}
	if index >= dir.Count() {
		return DirEntry{}, ErrNotFound
	}
	entry := r.fileTree[dir.NodeStartIndex()+index]
	name, _, err := wire.DecodeName(r.nameTable, entry.NameOffset())
	if err != nil || name == "" {
		return DirEntry{}, fmt.Errorf("%w: bad name", ErrCorrupt)
	}
	de := DirEntry{Name: name, IsFile: entry.IsFile(), IsDirectory: !entry.IsFile()}
	if entry.IsFile() {
		de.Size = entry.FileSize()
	}
	return de, nil
}

// GetFileSize returns the uncompressed size of nodeHandle, or 0 if it
// names a directory or doesn't exist.
func (r *Reader) GetFileSize(nodeHandle NodeHandle) uint64 {
	if nodeHandle >= uint32(len(r.fileTree)) {
		return 0
	}
	entry := r.fileTree[nodeHandle]
	if !entry.IsFile() {
		return 0
	}
	return entry.FileSize()
}

// ReadFromFile reads up to len(buffer) bytes of nodeHandle's content
// starting at offset, returning the number of bytes copied into buffer.
// It returns 0 if nodeHandle doesn't name a file or offset is at or past
// the file's end.
func (r *Reader) ReadFromFile(nodeHandle NodeHandle, offset uint64, buffer []byte) (int, error) {
	if nodeHandle >= uint32(len(r.fileTree)) {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.fileTree[nodeHandle]
	if !entry.IsFile() {
		return 0, nil
	}
	fileSize := entry.FileSize()
	if offset >= fileSize {
		return 0, nil
	}
	bytesToRead := uint64(len(buffer))
	if remaining := fileSize - offset; bytesToRead > remaining {
		bytesToRead = remaining
	}

	rawOffset := entry.FileOffset() + offset
	remaining := bytesToRead
	dst := buffer
	for remaining > 0 {
		blockIdx := rawOffset / wire.BlockSize
		blockOffset := rawOffset % wire.BlockSize
		step := wire.BlockSize - blockOffset
		if step > remaining {
			step = remaining
		}
		block, err := r.cache.Get(blockIdx, func(out []byte) error {
			return r.loadBlock(blockIdx, out)
		})
		if err != nil {
			return 0, err
		}
		n := copy(dst, block[blockOffset:blockOffset+step])
		dst = dst[n:]
		rawOffset += step
		remaining -= step
	}
	return int(bytesToRead), nil
}

// loadBlock reads and, if necessary, decompresses block blockIdx
// directly into dst, which is exactly wire.BlockSize bytes.
func (r *Reader) loadBlock(blockIdx uint64, dst []byte) error {
	if blockIdx >= r.blockCount {
		return fmt.Errorf("block %d out of range", blockIdx)
	}
	recordIdx := blockIdx / wire.EntriesPerOffsetRecord
	subIdx := int(blockIdx % wire.EntriesPerOffsetRecord)
	if recordIdx >= uint64(len(r.offsetRecords)) {
		return fmt.Errorf("block %d has no offset record", blockIdx)
	}
	record := r.offsetRecords[recordIdx]
	offset := record.BlockOffset(subIdx)
	compressedSize := record.BlockSize(subIdx)
	if offset+compressedSize > r.compressedDataSize {
		return fmt.Errorf("block %d extends past compressed data section", blockIdx)
	}
	offset += r.compressedDataOffset

	if compressedSize == wire.BlockSize {
		_, err := r.source.ReadAt(dst, int64(offset))
		return err
	}

	compressed := make([]byte, compressedSize)
	if _, err := r.source.ReadAt(compressed, int64(offset)); err != nil {
		return err
	}
	dec := r.decoderPool.Get().(*zstd.Decoder)
	defer r.decoderPool.Put(dec)
	out, err := dec.DecodeAll(compressed, make([]byte, 0, wire.BlockSize))
	if err != nil {
		return fmt.Errorf("decompress block %d: %w", blockIdx, err)
	}
	if len(out) != wire.BlockSize {
		return fmt.Errorf("block %d decompressed to %d bytes, want %d", blockIdx, len(out), wire.BlockSize)
	}
	copy(dst, out)
	return nil
}
