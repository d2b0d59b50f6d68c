package zarchive

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"log/slog"

	"github.com/klauspost/compress/zstd"

	"github.com/exzap/zarchive/internal/pathtree"
	"github.com/exzap/zarchive/internal/progress"
	"github.com/exzap/zarchive/internal/wire"
)

// compressionLevel is the fixed zstd level used for every block.
const compressionLevel = 6

// Writer builds a new archive by streaming file contents through a
// byte-sink callback. A Writer is single-threaded and append-only: it
// has no support for editing or removing entries once written, and its
// methods must not be called concurrently.
type Writer struct {
	sink OutputSink
	tree *pathtree.Tree

	activeFile int // node index of the file AppendData targets, or -1

	writeBuffer []byte // partial block, always < wire.BlockSize
	encoder     *zstd.Encoder
	compressBuf []byte

	outputOffset uint64 // bytes written to the sink so far (excluding the final footer)
	inputOffset  uint64 // uncompressed bytes appended so far

	offsetRecords []wire.OffsetRecord
	writtenBlocks uint64

	hasher    hash.Hash
	finalized bool

	logger   *slog.Logger
	progress progress.Func
}

// NewWriter creates a Writer that emits an archive through sink.
// NewOutputFile(-1) is called once before this function returns.
func NewWriter(sink OutputSink, opts ...WriterOption) (*Writer, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	if err != nil {
		return nil, fmt.Errorf("zarchive: create zstd encoder: %w", err)
	}
	w := &Writer{
		sink:       sink,
		tree:       pathtree.New(),
		activeFile: -1,
		encoder:    enc,
		hasher:     sha256.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := sink.NewOutputFile(-1); err != nil {
		return nil, err
	}
	return w, nil
}

// StartNewFile creates a new file entry at path and makes it the active
// file for subsequent AppendData calls. path's parent directory must
// already exist.
func (w *Writer) StartNewFile(path string) error {
	if w.finalized {
		return ErrFinalized
	}
	idx, err := w.tree.StartNewFile(path, w.inputOffset)
	if err != nil {
		return mapTreeErr(err)
	}
	w.activeFile = idx
	return nil
}

// AppendData appends data to the currently active file. It fails with
// ErrNoActiveFile if StartNewFile hasn't been called since the last file
// was completed by starting a new one.
func (w *Writer) AppendData(data []byte) error {
	if w.finalized {
		return ErrFinalized
	}
	if w.activeFile < 0 {
		return ErrNoActiveFile
	}
	if err := w.appendBytes(data); err != nil {
		return err
	}
	w.tree.AddFileBytes(w.activeFile, uint64(len(data)))
	w.inputOffset += uint64(len(data))
	return nil
}

// appendBytes buffers and flushes full blocks, independent of whether a
// file is active (Finalize's padding reuses this).
func (w *Writer) appendBytes(data []byte) error {
	for len(data) > 0 {
		if len(w.writeBuffer) == 0 && len(data) >= wire.BlockSize {
			if err := w.storeBlock(data[:wire.BlockSize]); err != nil {
				return err
			}
			data = data[wire.BlockSize:]
			continue
		}
		n := wire.BlockSize - len(w.writeBuffer)
		if n > len(data) {
			n = len(data)
		}
		w.writeBuffer = append(w.writeBuffer, data[:n]...)
		data = data[n:]
		if len(w.writeBuffer) == wire.BlockSize {
			if err := w.storeBlock(w.writeBuffer); err != nil {
				return err
			}
			w.writeBuffer = w.writeBuffer[:0]
		}
	}
	return nil
}

// MakeDir creates a directory at path. If recursive is false, only the
// final segment is created and its parent must already exist.
func (w *Writer) MakeDir(path string, recursive bool) error {
	if w.finalized {
		return ErrFinalized
	}
	if err := w.tree.MakeDir(path, recursive); err != nil {
		return mapTreeErr(err)
	}
	return nil
}

func mapTreeErr(err error) error {
	switch {
	case errors.Is(err, pathtree.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrParentNotFound, err)
	case errors.Is(err, pathtree.ErrExists):
		return fmt.Errorf("%w: %s", ErrAlreadyExists, err)
	case errors.Is(err, pathtree.ErrNotDirectory):
		return fmt.Errorf("%w: %s", ErrNotDirectory, err)
	default:
		return err
	}
}

// storeBlock compresses exactly one full block and writes it out,
// falling back to storing it verbatim if compression doesn't shrink it.
func (w *Writer) storeBlock(block []byte) error {
	compressedWriteOffset := w.outputOffset
	compressed := w.encoder.EncodeAll(block, w.compressBuf[:0])
	w.compressBuf = compressed[:0]

	var toWrite []byte
	if len(compressed) >= wire.BlockSize {
		toWrite = block
	} else {
		toWrite = compressed
	}
	if err := w.output(toWrite); err != nil {
		return err
	}

	if w.writtenBlocks%wire.EntriesPerOffsetRecord == 0 {
		w.offsetRecords = append(w.offsetRecords, wire.OffsetRecord{BaseOffset: compressedWriteOffset})
	}
	record := &w.offsetRecords[len(w.offsetRecords)-1]
	if err := record.SetBlockSize(int(w.writtenBlocks%wire.EntriesPerOffsetRecord), uint64(len(toWrite))); err != nil {
		return err
	}
	w.writtenBlocks++
	return nil
}

// output writes data to the sink, tracking the running output offset and
// feeding the archive-wide integrity hash.
func (w *Writer) output(data []byte) error {
	if err := w.sink.WriteOutputData(data); err != nil {
		return err
	}
	w.outputOffset += uint64(len(data))
	w.hasher.Write(data)
	return nil
}

// Finalize pads and closes the active block, writes the offset records,
// name table, file tree and footer, and marks the writer closed. It must
// be called exactly once.
func (w *Writer) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	w.finalized = true
	w.activeFile = -1

	if len(w.writeBuffer) > 0 {
		pad := make([]byte, wire.BlockSize-len(w.writeBuffer))
		if err := w.appendBytes(pad); err != nil {
			return err
		}
	}

	var footer wire.Footer
	footer.SetSection(wire.SectionCompressedData, wire.OffsetInfo{Offset: 0, Size: w.outputOffset})

	for w.outputOffset%8 != 0 {
		if err := w.output([]byte{0}); err != nil {
			return err
		}
	}

	offsetStart := w.outputOffset
	offsetBuf := make([]byte, len(w.offsetRecords)*wire.OffsetRecordSize)
	wire.MarshalOffsetRecords(w.offsetRecords, offsetBuf)
	if err := w.output(offsetBuf); err != nil {
		return err
	}
	footer.SetSection(wire.SectionOffsetRecords, wire.OffsetInfo{Offset: offsetStart, Size: w.outputOffset - offsetStart})

	fin, err := w.tree.Finalize()
	if err != nil {
		return err
	}

	nameStart := w.outputOffset
	if err := w.output(fin.NameTable); err != nil {
		return err
	}
	footer.SetSection(wire.SectionNameTable, wire.OffsetInfo{Offset: nameStart, Size: w.outputOffset - nameStart})

	treeStart := w.outputOffset
	entryBuf := make([]byte, len(fin.Entries)*wire.EntrySize)
	wire.MarshalEntries(fin.Entries, entryBuf)
	if err := w.output(entryBuf); err != nil {
		return err
	}
	footer.SetSection(wire.SectionFileTree, wire.OffsetInfo{Offset: treeStart, Size: w.outputOffset - treeStart})

	metaOffset := w.outputOffset
	footer.SetSection(wire.SectionMetaDirectory, wire.OffsetInfo{Offset: metaOffset, Size: 0})
	footer.SetSection(wire.SectionMetaData, wire.OffsetInfo{Offset: metaOffset, Size: 0})

	footer.Magic = wire.Magic
	footer.Version = wire.Version
	footer.TotalSize = w.outputOffset + wire.FooterSize

	w.hasher.Write(footer.MarshalZeroedHash())
	copy(footer.IntegrityHash[:], w.hasher.Sum(nil))

	// The final footer write is intentionally excluded from the hash: the
	// digest covers everything up to and including the footer with its
	// hash field zeroed, not the footer that carries the finished digest.
	return w.sink.WriteOutputData(footer.Marshal())
}
