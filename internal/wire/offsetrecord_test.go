package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOffsetRecordRoundTrip(t *testing.T) {
	var r OffsetRecord
	r.BaseOffset = 4096
	for i := 0; i < EntriesPerOffsetRecord; i++ {
		require.NoError(t, r.SetBlockSize(i, uint64(1000+i)))
	}

	buf := make([]byte, OffsetRecordSize)
	r.Marshal(buf)
	decoded := UnmarshalOffsetRecord(buf)
	require.Equal(t, r, decoded)

	for i := 0; i < EntriesPerOffsetRecord; i++ {
		require.Equal(t, uint64(1000+i), decoded.BlockSize(i))
	}
}

func TestOffsetRecordBlockOffsetsAreCumulative(t *testing.T) {
	var r OffsetRecord
	r.BaseOffset = 100
	require.NoError(t, r.SetBlockSize(0, 50))
	require.NoError(t, r.SetBlockSize(1, 75))
	require.NoError(t, r.SetBlockSize(2, 10))

	require.Equal(t, uint64(100), r.BlockOffset(0))
	require.Equal(t, uint64(150), r.BlockOffset(1))
	require.Equal(t, uint64(225), r.BlockOffset(2))
}

func TestOffsetRecordSetBlockSizeRejectsOutOfRange(t *testing.T) {
	var r OffsetRecord
	require.Error(t, r.SetBlockSize(0, 0))
	require.Error(t, r.SetBlockSize(0, BlockSize+1))
	require.NoError(t, r.SetBlockSize(0, BlockSize))
	require.NoError(t, r.SetBlockSize(0, 1))
}

func TestOffsetRecordsSliceRoundTrip(t *testing.T) {
	records := make([]OffsetRecord, 3)
	for i := range records {
		records[i].BaseOffset = uint64(i) * 1000
		for j := 0; j < EntriesPerOffsetRecord; j++ {
			require.NoError(t, records[i].SetBlockSize(j, uint64(j+1)))
		}
	}
	buf := make([]byte, len(records)*OffsetRecordSize)
	MarshalOffsetRecords(records, buf)
	decoded := UnmarshalOffsetRecords(buf)
	require.Equal(t, records, decoded)
}
