package zarchive

import (
	"io"
	"io/fs"
	"time"
)

// Interface compliance.
var (
	_ fs.FS         = (*Reader)(nil)
	_ fs.StatFS     = (*Reader)(nil)
	_ fs.ReadFileFS = (*Reader)(nil)
	_ fs.ReadDirFS  = (*Reader)(nil)
)

// Open implements fs.FS. A returned regular file supports io.ReaderAt in
// addition to fs.File; a returned directory supports fs.ReadDirFile.
func (r *Reader) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	handle := r.LookUp(fsPath(name), true, true)
	if handle == InvalidNode {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if r.IsDirectory(handle) {
		return &openDir{r: r, name: name, handle: handle}, nil
	}
	return &openFile{r: r, name: name, handle: handle}, nil
}

// Stat implements fs.StatFS.
func (r *Reader) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	handle := r.LookUp(fsPath(name), true, true)
	if handle == InvalidNode {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return r.fileInfo(handle, baseName(name)), nil
}

// ReadFile implements fs.ReadFileFS.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	handle := r.LookUp(fsPath(name), true, false)
	if handle == InvalidNode {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	size := r.GetFileSize(handle)
	buf := make([]byte, size)
	var off uint64
	for off < size {
		n, err := r.ReadFromFile(handle, off, buf[off:])
		if err != nil {
			return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
		}
		if n == 0 {
			break
		}
		off += uint64(n)
	}
	return buf, nil
}

// ReadDir implements fs.ReadDirFS. Entries are returned in the archive's
// stored order, which is already ascending case-insensitive by name.
func (r *Reader) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	handle := r.LookUp(fsPath(name), false, true)
	if handle == InvalidNode {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	count := r.GetDirEntryCount(handle)
	entries := make([]fs.DirEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		de, err := r.GetDirEntry(handle, i)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
		}
		entries = append(entries, dirEntryAdapter{de})
	}
	return entries, nil
}

// fsPath maps an fs.FS-valid name ("." for root, slash-separated
// elsewhere) onto the path syntax LookUp expects.
func fsPath(name string) string {
	if name == "." {
		return ""
	}
	return name
}

func baseName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}

func (r *Reader) fileInfo(handle NodeHandle, name string) fs.FileInfo {
	if r.IsFile(handle) {
		return fileInfo{name: name, size: int64(r.GetFileSize(handle))}
	}
	return fileInfo{name: name, dir: true}
}

// fileInfo implements fs.FileInfo. Archives carry no modification times or
// permission bits, so ModTime is the zero time and Mode reports fixed
// read-only permissions: 0444 for files, 0555 plus the directory bit for
// directories.
type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi fileInfo) Name() string { return fi.name }
func (fi fileInfo) Size() int64  { return fi.size }
func (fi fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.dir }
func (fi fileInfo) Sys() any           { return nil }

// dirEntryAdapter adapts a DirEntry to fs.DirEntry.
type dirEntryAdapter struct {
	de DirEntry
}

func (d dirEntryAdapter) Name() string { return d.de.Name }
func (d dirEntryAdapter) IsDir() bool  { return d.de.IsDirectory }
func (d dirEntryAdapter) Type() fs.FileMode {
	if d.de.IsDirectory {
		return fs.ModeDir
	}
	return 0
}
func (d dirEntryAdapter) Info() (fs.FileInfo, error) {
	if d.de.IsDirectory {
		return fileInfo{name: d.de.Name, dir: true}, nil
	}
	return fileInfo{name: d.de.Name, size: int64(d.de.Size)}, nil
}

// openFile implements fs.File and io.ReaderAt over a single archive file.
type openFile struct {
	r      *Reader
	name   string
	handle NodeHandle
	offset uint64
}

func (f *openFile) Stat() (fs.FileInfo, error) {
	return f.r.fileInfo(f.handle, baseName(f.name)), nil
}

func (f *openFile) Read(p []byte) (int, error) {
	n, err := f.r.ReadFromFile(f.handle, f.offset, p)
	if err != nil {
		return n, err
	}
	f.offset += uint64(n)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *openFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &fs.PathError{Op: "readat", Path: f.name, Err: fs.ErrInvalid}
	}
	n, err := f.r.ReadFromFile(f.handle, uint64(off), p)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *openFile) Close() error { return nil }

// openDir implements fs.File for a directory opened via Open.
type openDir struct {
	r       *Reader
	name    string
	handle  NodeHandle
	entries []fs.DirEntry
	pos     int
	started bool
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return d.r.fileInfo(d.handle, baseName(d.name)), nil
}

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Close() error { return nil }

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.started {
		entries, err := d.r.ReadDir(d.name)
		if err != nil {
			return nil, err
		}
		d.entries = entries
		d.started = true
	}
	if n <= 0 {
		out := d.entries[d.pos:]
		d.pos = len(d.entries)
		return out, nil
	}
	if d.pos >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.pos + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.pos:end]
	d.pos = end
	return out, nil
}
