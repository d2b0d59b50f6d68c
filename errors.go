package zarchive

import "errors"

// Errors returned while opening or reading an archive.
var (
	// ErrNotArchive is returned when a file's footer does not carry the
	// expected magic and version.
	ErrNotArchive = errors.New("zarchive: not a zarchive file")

	// ErrCorrupt is returned when an archive's structure is internally
	// inconsistent (a total size that does not match the file, bad
	// section bounds, an unparsable name, and similar). The footer's
	// integrity hash is not checked when an archive is opened.
	ErrCorrupt = errors.New("zarchive: corrupt archive")

	// ErrTooSmall is returned when a file is no larger than a bare footer.
	ErrTooSmall = errors.New("zarchive: file too small to contain a footer")

	// ErrNotFound is returned by GetDirEntry for an unknown node handle or
	// an out-of-range child index, and by ExtractDir when a listed entry
	// cannot be resolved. LookUp reports a missing path as InvalidNode and
	// the fs.FS adapter as fs.ErrNotExist.
	ErrNotFound = errors.New("zarchive: not found")

	// ErrNotDirectory is returned when a directory operation is applied
	// to a node that is a file: by GetDirEntry, and by the Writer's
	// StartNewFile and MakeDir when a path segment names a file.
	ErrNotDirectory = errors.New("zarchive: not a directory")
)

// Errors returned while building an archive with a [Writer].
var (
	// ErrNoActiveFile is returned by AppendData when no file is active.
	ErrNoActiveFile = errors.New("zarchive: no active file")

	// ErrAlreadyExists is returned by StartNewFile and MakeDir when an
	// entry with that name already exists.
	ErrAlreadyExists = errors.New("zarchive: entry already exists")

	// ErrParentNotFound is returned by StartNewFile and non-recursive
	// MakeDir when the parent directory doesn't exist.
	ErrParentNotFound = errors.New("zarchive: parent directory not found")

	// ErrFinalized is returned by any writer method called after
	// Finalize has already run.
	ErrFinalized = errors.New("zarchive: writer already finalized")
)
