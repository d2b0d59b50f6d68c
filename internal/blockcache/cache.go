package blockcache

import "fmt"

const noSlot = -1

// slot holds one cached block plus its place in the intrusive LRU list.
// blockIndex is invalidIndex when the slot has never been loaded.
type slot struct {
	blockIndex uint64
	prev, next int
}

const invalidIndex = ^uint64(0)

// Cache is a fixed-capacity in-memory LRU cache of equally sized blocks.
// It is not safe for concurrent use; callers that need concurrency
// serialize access with their own lock.
type Cache struct {
	blockSize int
	buffer    []byte
	slots     []slot
	lookup    map[uint64]int

	lruFirst int // least recently used slot
	lruLast  int // most recently used slot
}

// New creates a cache holding totalBytes/blockSize blocks of blockSize
// bytes each. totalBytes is rounded up to a multiple of blockSize.
func New(blockSize, totalBytes int) *Cache {
	if blockSize <= 0 {
		panic("blockcache: blockSize must be positive")
	}
	if totalBytes%blockSize != 0 {
		totalBytes += blockSize - (totalBytes % blockSize)
	}
	slotCount := totalBytes / blockSize
	if slotCount < 1 {
		slotCount = 1
	}
	c := &Cache{
		blockSize: blockSize,
		buffer:    make([]byte, slotCount*blockSize),
		slots:     make([]slot, slotCount),
		lookup:    make(map[uint64]int, slotCount),
	}
	for i := range c.slots {
		c.slots[i].blockIndex = invalidIndex
		c.slots[i].prev = i - 1
		c.slots[i].next = i + 1
	}
	c.slots[slotCount-1].next = noSlot
	c.lruFirst = 0
	c.lruLast = slotCount - 1
	return c
}

// SlotCount returns the number of blocks the cache can hold at once.
func (c *Cache) SlotCount() int {
	return len(c.slots)
}

// Get returns the bytes of the requested block, loading it via load on a
// cache miss. The returned slice aliases cache-internal storage and is
// only valid until the next call to Get recycles the same slot; callers
// must copy out what they need before calling Get again.
func (c *Cache) Get(blockIndex uint64, load func(dst []byte) error) ([]byte, error) {
	if i, ok := c.lookup[blockIndex]; ok {
		c.markMRU(i)
		return c.slotData(i), nil
	}
	i := c.lruFirst
	c.unregister(i)
	dst := c.slotData(i)
	if err := load(dst); err != nil {
		return nil, fmt.Errorf("blockcache: load block %d: %w", blockIndex, err)
	}
	c.register(i, blockIndex)
	c.markMRU(i)
	return dst, nil
}

func (c *Cache) slotData(i int) []byte {
	return c.buffer[i*c.blockSize : (i+1)*c.blockSize]
}

func (c *Cache) register(i int, blockIndex uint64) {
	c.slots[i].blockIndex = blockIndex
	c.lookup[blockIndex] = i
}

func (c *Cache) unregister(i int) {
	if c.slots[i].blockIndex != invalidIndex {
		delete(c.lookup, c.slots[i].blockIndex)
	}
	c.slots[i].blockIndex = invalidIndex
}

// markMRU moves slot i to the tail of the LRU list (most recently used).
func (c *Cache) markMRU(i int) {
	if c.lruLast == i {
		return // already MRU
	}
	s := &c.slots[i]
	// detach
	if s.prev != noSlot {
		c.slots[s.prev].next = s.next
	} else {
		c.lruFirst = s.next
	}
	if s.next != noSlot {
		c.slots[s.next].prev = s.prev
	}
	// append at tail
	s.prev = c.lruLast
	s.next = noSlot
	c.slots[c.lruLast].next = i
	c.lruLast = i
}
