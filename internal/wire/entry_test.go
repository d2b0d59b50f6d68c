package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileEntryRoundTrip(t *testing.T) {
	e := NewFileEntry(1234, 0x1_0000_0001, 0x2_0000_0002)
	require.True(t, e.IsFile())
	require.Equal(t, uint32(1234), e.NameOffset())
	require.Equal(t, uint64(0x1_0000_0001), e.FileOffset())
	require.Equal(t, uint64(0x2_0000_0002), e.FileSize())

	buf := make([]byte, EntrySize)
	e.Marshal(buf)
	decoded := UnmarshalEntry(buf)
	require.Equal(t, e, decoded)
}

func TestDirEntryRoundTrip(t *testing.T) {
	e := NewDirEntry(RootNameOffset, 1, 7)
	require.False(t, e.IsFile())
	require.Equal(t, RootNameOffset, e.NameOffset())
	require.Equal(t, uint32(1), e.NodeStartIndex())
	require.Equal(t, uint32(7), e.Count())

	buf := make([]byte, EntrySize)
	e.Marshal(buf)
	decoded := UnmarshalEntry(buf)
	require.Equal(t, e, decoded)
}

func TestEntrySliceRoundTrip(t *testing.T) {
	entries := []Entry{
		NewDirEntry(RootNameOffset, 1, 2),
		NewFileEntry(0, 0, 100),
		NewFileEntry(10, 100, 9999999999),
	}
	buf := make([]byte, len(entries)*EntrySize)
	MarshalEntries(entries, buf)
	decoded := UnmarshalEntries(buf)
	require.Equal(t, entries, decoded)
}

func TestFileOffsetSizeHighBitsIndependent(t *testing.T) {
	var e Entry
	e.SetTypeAndNameOffset(true, 0)
	e.SetFileOffset(0xFFFF_FFFF_FFFF)
	e.SetFileSize(0xAAAA_0000_0000)
	require.Equal(t, uint64(0xFFFF_FFFF_FFFF), e.FileOffset())
	require.Equal(t, uint64(0xAAAA_0000_0000), e.FileSize())
}
