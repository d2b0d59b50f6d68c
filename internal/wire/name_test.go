package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameRoundTripShort(t *testing.T) {
	table, err := EncodeName(nil, "hello.txt")
	require.NoError(t, err)
	require.Len(t, table, 1+len("hello.txt"))

	name, next, err := DecodeName(table, 0)
	require.NoError(t, err)
	require.Equal(t, "hello.txt", name)
	require.Equal(t, uint32(len(table)), next)
}

func TestNameRoundTripAtSingleByteBoundary(t *testing.T) {
	// 127 bytes must still use the single-byte length form.
	name := strings.Repeat("a", 127)
	table, err := EncodeName(nil, name)
	require.NoError(t, err)
	require.Len(t, table, 1+127)
	require.Equal(t, byte(127), table[0])

	decoded, _, err := DecodeName(table, 0)
	require.NoError(t, err)
	require.Equal(t, name, decoded)
}

func TestNameRoundTripJustOverBoundaryUsesExtendedForm(t *testing.T) {
	// 128 bytes must switch to the two-byte extended length form, and
	// decoding must read the actual second byte (not re-read the first).
	name := strings.Repeat("b", 128)
	table, err := EncodeName(nil, name)
	require.NoError(t, err)
	require.Len(t, table, 2+128)
	require.NotEqual(t, byte(0), table[0]&0x80)

	decoded, next, err := DecodeName(table, 0)
	require.NoError(t, err)
	require.Equal(t, name, decoded)
	require.Equal(t, uint32(len(table)), next)
}

func TestNameRoundTripAtMaxLength(t *testing.T) {
	name := strings.Repeat("c", MaxNameLength)
	table, err := EncodeName(nil, name)
	require.NoError(t, err)

	decoded, _, err := DecodeName(table, 0)
	require.NoError(t, err)
	require.Equal(t, name, decoded)
}

func TestNameRejectsOversizedInput(t *testing.T) {
	name := strings.Repeat("d", MaxNameLength+1)
	_, err := EncodeName(nil, name)
	require.Error(t, err)
}

func TestMultipleNamesInOneTable(t *testing.T) {
	var table []byte
	var err error
	table, err = EncodeName(table, "first")
	require.NoError(t, err)
	offsetSecond := uint32(len(table))
	table, err = EncodeName(table, strings.Repeat("x", 200))
	require.NoError(t, err)
	offsetThird := uint32(len(table))
	table, err = EncodeName(table, "last")
	require.NoError(t, err)

	name1, next1, err := DecodeName(table, 0)
	require.NoError(t, err)
	require.Equal(t, "first", name1)
	require.Equal(t, offsetSecond, next1)

	name2, next2, err := DecodeName(table, offsetSecond)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("x", 200), name2)
	require.Equal(t, offsetThird, next2)

	name3, _, err := DecodeName(table, offsetThird)
	require.NoError(t, err)
	require.Equal(t, "last", name3)
}

func TestDecodeNameRejectsTruncatedTable(t *testing.T) {
	_, _, err := DecodeName([]byte{0x85}, 0) // extended flag, no second byte
	require.Error(t, err)

	_, _, err = DecodeName([]byte{5, 'a', 'b'}, 0) // length 5 but only 2 bytes follow
	require.Error(t, err)
}

func TestDecodeNameRejectsOffsetOutOfRange(t *testing.T) {
	_, _, err := DecodeName([]byte{1, 'a'}, 10)
	require.Error(t, err)
}
