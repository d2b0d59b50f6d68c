package blockcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fillWith(b byte) func(dst []byte) error {
	return func(dst []byte) error {
		for i := range dst {
			dst[i] = b
		}
		return nil
	}
}

func TestGetLoadsOnMiss(t *testing.T) {
	c := New(16, 16*4)
	require.Equal(t, 4, c.SlotCount())

	loads := 0
	data, err := c.Get(0, func(dst []byte) error {
		loads++
		return fillWith(0xAA)(dst)
	})
	require.NoError(t, err)
	require.Equal(t, 1, loads)
	require.Equal(t, byte(0xAA), data[0])
}

func TestGetHitsCacheWithoutReloading(t *testing.T) {
	c := New(16, 16*4)
	loads := 0
	load := func(dst []byte) error {
		loads++
		return fillWith(0xAA)(dst)
	}
	_, err := c.Get(5, load)
	require.NoError(t, err)
	_, err = c.Get(5, load)
	require.NoError(t, err)
	require.Equal(t, 1, loads)
}

func TestLRUEvictsOldestUnused(t *testing.T) {
	c := New(16, 16*4) // 4 slots
	for i := uint64(0); i < 4; i++ {
		_, err := c.Get(i, fillWith(byte(i)))
		require.NoError(t, err)
	}
	// touch block 0 so it's no longer the LRU entry
	_, err := c.Get(0, fillWith(0))
	require.NoError(t, err)

	// loading a 5th distinct block must evict block 1 (now LRU), not block 0
	_, err = c.Get(4, fillWith(9))
	require.NoError(t, err)

	loads := 0
	_, err = c.Get(0, func(dst []byte) error {
		loads++
		return fillWith(0)(dst)
	})
	require.NoError(t, err)
	require.Equal(t, 0, loads, "block 0 should still be cached")

	loads = 0
	_, err = c.Get(1, func(dst []byte) error {
		loads++
		return fillWith(1)(dst)
	})
	require.NoError(t, err)
	require.Equal(t, 1, loads, "block 1 should have been evicted")
}

func TestGetPropagatesLoadError(t *testing.T) {
	c := New(16, 16*2)
	sentinel := errors.New("read failed")
	_, err := c.Get(0, func(dst []byte) error {
		return sentinel
	})
	require.Error(t, err)
	require.ErrorIs(t, err, sentinel)
}

func TestRecycledSlotIsUnregisteredBeforeReload(t *testing.T) {
	c := New(16, 16*1) // single slot forces eviction on every distinct block
	_, err := c.Get(0, fillWith(1))
	require.NoError(t, err)
	_, err = c.Get(1, fillWith(2))
	require.NoError(t, err)

	loads := 0
	_, err = c.Get(0, func(dst []byte) error {
		loads++
		return fillWith(1)(dst)
	})
	require.NoError(t, err)
	require.Equal(t, 1, loads, "block 0 must have been evicted by block 1")
}

func TestTotalBytesRoundedUpToBlockSize(t *testing.T) {
	c := New(16, 17)
	require.Equal(t, 2, c.SlotCount())
}
