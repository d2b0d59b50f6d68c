// Package zarchive reads and writes ZArchive files: a read-optimized,
// content-hashed archive format that packs a directory tree into
// zstd-compressed fixed-size blocks behind a random-access name index.
//
// A [Writer] streams files into a new archive one at a time; a [Reader]
// opens a finished archive and serves random-access reads through a
// bounded in-memory block cache.
package zarchive
