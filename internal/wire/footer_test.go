package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFooterRoundTrip(t *testing.T) {
	f := &Footer{
		Magic:     Magic,
		Version:   Version,
		TotalSize: 123456,
	}
	f.SetSection(SectionCompressedData, OffsetInfo{Offset: FooterSize, Size: 1000})
	f.SetSection(SectionOffsetRecords, OffsetInfo{Offset: 2000, Size: 48})
	f.SetSection(SectionNameTable, OffsetInfo{Offset: 3000, Size: 64})
	f.SetSection(SectionFileTree, OffsetInfo{Offset: 4000, Size: 32})
	for i := range f.IntegrityHash {
		f.IntegrityHash[i] = byte(i)
	}

	buf := f.Marshal()
	require.Len(t, buf, FooterSize)

	decoded, err := UnmarshalFooter(buf)
	require.NoError(t, err)
	require.Equal(t, f, decoded)
}

func TestFooterRejectsBadMagic(t *testing.T) {
	f := &Footer{Magic: 0xdeadbeef, Version: Version}
	buf := f.Marshal()
	_, err := UnmarshalFooter(buf)
	require.Error(t, err)
}

func TestFooterRejectsWrongSize(t *testing.T) {
	_, err := UnmarshalFooter(make([]byte, FooterSize-1))
	require.Error(t, err)
}

func TestFooterMarshalZeroedHash(t *testing.T) {
	f := &Footer{Magic: Magic, Version: Version}
	for i := range f.IntegrityHash {
		f.IntegrityHash[i] = 0xFF
	}
	buf := f.MarshalZeroedHash()
	decoded, err := UnmarshalFooter(buf)
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, decoded.IntegrityHash)
	// original footer is untouched
	require.Equal(t, byte(0xFF), f.IntegrityHash[0])
}
