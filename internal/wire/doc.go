// Package wire defines the on-disk binary records of the ZArchive format:
// the footer, compression offset records, the name table, and the fixed
// directory/file tree entries. All multi-byte integers are big-endian on
// disk; this package owns every byte-for-byte layout decision and the
// endian conversion between host and disk representation.
package wire
