package zarchive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// memSink is an OutputSink that appends every write to an in-memory
// buffer, for tests that don't need a real file.
type memSink struct {
	buf bytes.Buffer
}

func (s *memSink) NewOutputFile(partIndex int) error { return nil }

func (s *memSink) WriteOutputData(data []byte) error {
	_, err := s.buf.Write(data)
	return err
}

func newTestWriter(t *testing.T) (*Writer, *memSink) {
	t.Helper()
	sink := &memSink{}
	w, err := NewWriter(sink)
	require.NoError(t, err)
	return w, sink
}

func TestWriterStartNewFileRequiresParent(t *testing.T) {
	t.Parallel()
	w, _ := newTestWriter(t)
	err := w.StartNewFile("missing/file.txt")
	require.ErrorIs(t, err, ErrParentNotFound)
}

func TestWriterAppendDataRequiresActiveFile(t *testing.T) {
	t.Parallel()
	w, _ := newTestWriter(t)
	err := w.AppendData([]byte("hello"))
	require.ErrorIs(t, err, ErrNoActiveFile)
}

func TestWriterRejectsDuplicateFile(t *testing.T) {
	t.Parallel()
	w, _ := newTestWriter(t)
	require.NoError(t, w.StartNewFile("a.txt"))
	require.NoError(t, w.AppendData([]byte("one")))
	err := w.StartNewFile("a.txt")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestWriterMethodsFailAfterFinalize(t *testing.T) {
	t.Parallel()
	w, _ := newTestWriter(t)
	require.NoError(t, w.Finalize())
	require.ErrorIs(t, w.StartNewFile("a.txt"), ErrFinalized)
	require.ErrorIs(t, w.MakeDir("dir", false), ErrFinalized)
	require.ErrorIs(t, w.Finalize(), ErrFinalized)
}

func TestWriterFinalizeProducesValidFooter(t *testing.T) {
	t.Parallel()
	w, sink := newTestWriter(t)
	require.NoError(t, w.MakeDir("sub", false))
	require.NoError(t, w.StartNewFile("sub/a.txt"))
	require.NoError(t, w.AppendData([]byte("hello world")))
	require.NoError(t, w.Finalize())

	data := sink.buf.Bytes()
	require.Greater(t, len(data), 128)

	r, err := newReader(&bytesSource{data: data}, int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	handle := r.LookUp("sub/a.txt", true, false)
	require.NotEqual(t, InvalidNode, handle)
	require.Equal(t, uint64(len("hello world")), r.GetFileSize(handle))

	buf := make([]byte, 64)
	n, err := r.ReadFromFile(handle, 0, buf)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(buf[:n]))
}

func TestWriterEmptyArchiveHasRootOnly(t *testing.T) {
	t.Parallel()
	w, sink := newTestWriter(t)
	require.NoError(t, w.Finalize())

	data := sink.buf.Bytes()
	r, err := newReader(&bytesSource{data: data}, int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.IsDirectory(0))
	require.Equal(t, uint32(0), r.GetDirEntryCount(0))
}

func TestWriterBlockBoundaryFile(t *testing.T) {
	t.Parallel()
	w, sink := newTestWriter(t)
	require.NoError(t, w.StartNewFile("big.bin"))

	content := make([]byte, 64*1024+17)
	for i := range content {
		content[i] = byte(i)
	}
	require.NoError(t, w.AppendData(content[:40000]))
	require.NoError(t, w.AppendData(content[40000:]))
	require.NoError(t, w.Finalize())

	data := sink.buf.Bytes()
	r, err := newReader(&bytesSource{data: data}, int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	handle := r.LookUp("big.bin", true, false)
	require.NotEqual(t, InvalidNode, handle)

	out := make([]byte, len(content))
	var off uint64
	for off < uint64(len(out)) {
		n, err := r.ReadFromFile(handle, off, out[off:])
		require.NoError(t, err)
		require.Greater(t, n, 0)
		off += uint64(n)
	}
	require.Equal(t, content, out)
}
