// Package blockcache implements the reader's fixed-size in-memory LRU
// cache of decompressed blocks. It owns one contiguous buffer sized to
// hold a fixed number of blocks and recycles the least recently used
// slot whenever a miss requires a new block to be loaded.
package blockcache
