package zarchive

import (
	"github.com/opencontainers/go-digest"
)

// Info summarizes an archive's contents. It is computed once per Reader
// by walking the whole file tree and cached for subsequent calls.
type Info struct {
	FileCount       int
	DirectoryCount  int
	TotalSize       uint64 // sum of uncompressed file sizes
	OnDiskSize      uint64 // total archive file size, including footer
	CompressionRatio float64 // on-disk compressed data / total uncompressed size; 1.0 if no files
	Digest          digest.Digest
}

// Info returns aggregate statistics about the archive. The first call
// walks every entry in the file tree; the result is cached.
func (r *Reader) Info() Info {
	r.infoOnce.Do(func() {
		var info Info
		info.OnDiskSize = r.totalSize
		info.Digest = digest.NewDigestFromBytes(digest.SHA256, r.integrityHash[:])
		// Index 0 is always the synthetic root directory, not a user entry.
		for _, e := range r.fileTree[1:] {
			if e.IsFile() {
				info.FileCount++
				info.TotalSize += e.FileSize()
			} else {
				info.DirectoryCount++
			}
		}
		if info.TotalSize > 0 {
			info.CompressionRatio = float64(r.compressedDataSize) / float64(info.TotalSize)
		} else {
			info.CompressionRatio = 1.0
		}
		r.info = info
	})
	return r.info
}
