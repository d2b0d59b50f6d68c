package pathtree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/exzap/zarchive/internal/wire"
)

const rootIndex = 0

// Sentinel errors returned by tree mutation methods. Callers can use
// errors.Is to distinguish them; the messages are wrapped with the
// offending path segment via fmt.Errorf.
var (
	ErrNotFound     = errors.New("path not found")
	ErrExists       = errors.New("path already exists")
	ErrNotDirectory = errors.New("not a directory")
)

type node struct {
	isFile   bool
	nameIdx  uint32
	children []int // node indices, insertion order until Finalize sorts them

	fileOffset uint64
	fileSize   uint64

	nodeStartIndex uint32 // assigned by Finalize
}

// Tree is the writer's in-memory directory tree, addressed by index into
// a flat arena rather than by owning pointer. Node 0 is always the root.
type Tree struct {
	nodes      []node
	names      []string
	nameLookup map[string]uint32
}

// New returns a tree containing only the root directory.
func New() *Tree {
	return &Tree{
		nodes:      []node{{isFile: false}},
		nameLookup: make(map[string]uint32),
	}
}

func (t *Tree) internName(name string) uint32 {
	if idx, ok := t.nameLookup[name]; ok {
		return idx
	}
	idx := uint32(len(t.names))
	t.names = append(t.names, name)
	t.nameLookup[name] = idx
	return idx
}

// findChild returns the index of parent's child named name, if any.
func (t *Tree) findChild(parent int, name string) (int, bool) {
	for _, c := range t.nodes[parent].children {
		if wire.EqualNodeName(t.names[t.nodes[c].nameIdx], name) {
			return c, true
		}
	}
	return 0, false
}

// resolveDir walks path (directory segments only) from the root,
// returning the index of the directory it names. An empty path resolves
// to the root. Fails if any segment is missing or names a file.
func (t *Tree) resolveDir(path string) (int, error) {
	current := rootIndex
	rest := path
	for {
		var name string
		var ok bool
		name, rest, ok = wire.NextPathNode(rest)
		if !ok {
			return current, nil
		}
		child, found := t.findChild(current, name)
		if !found {
			return 0, fmt.Errorf("pathtree: directory %q: %w", name, ErrNotFound)
		}
		if t.nodes[child].isFile {
			return 0, fmt.Errorf("pathtree: %q: %w", name, ErrNotDirectory)
		}
		current = child
	}
}

// StartNewFile creates a new file node at path and returns its index.
// Fails if the parent directory doesn't exist or an entry with that name
// already exists there.
func (t *Tree) StartNewFile(path string, fileOffset uint64) (int, error) {
	parentPath, filename := wire.SplitFilenameFromPath(path)
	dir, err := t.resolveDir(parentPath)
	if err != nil {
		return 0, err
	}
	if _, exists := t.findChild(dir, filename); exists {
		return 0, fmt.Errorf("pathtree: %q: %w", filename, ErrExists)
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{
		isFile:     true,
		nameIdx:    t.internName(filename),
		fileOffset: fileOffset,
	})
	t.nodes[dir].children = append(t.nodes[dir].children, idx)
	return idx, nil
}

// SetFileSize sets the uncompressed size recorded for the file node at
// idx.
func (t *Tree) SetFileSize(idx int, size uint64) {
	t.nodes[idx].fileSize = size
}

// AddFileBytes adds n bytes to the running size of the file node at idx.
func (t *Tree) AddFileBytes(idx int, n uint64) {
	t.nodes[idx].fileSize += n
}

// MakeDir creates a directory at path. If recursive is false, only the
// final path segment is created and its parent must already exist; if
// true, any missing intermediate directories are created along the way.
func (t *Tree) MakeDir(path string, recursive bool) error {
	for len(path) > 0 && (path[len(path)-1] == '/' || path[len(path)-1] == '\\') {
		path = path[:len(path)-1]
	}
	if !recursive {
		parentPath, dirName := wire.SplitFilenameFromPath(path)
		dir, err := t.resolveDir(parentPath)
		if err != nil {
			return err
		}
		if _, exists := t.findChild(dir, dirName); exists {
			return fmt.Errorf("pathtree: %q: %w", dirName, ErrExists)
		}
		t.addChildDir(dir, dirName)
		return nil
	}
	current := rootIndex
	rest := path
	for {
		var name string
		var ok bool
		name, rest, ok = wire.NextPathNode(rest)
		if !ok {
			return nil
		}
		child, found := t.findChild(current, name)
		if found {
			if t.nodes[child].isFile {
				return fmt.Errorf("pathtree: %q: %w", name, ErrNotDirectory)
			}
			current = child
			continue
		}
		current = t.addChildDir(current, name)
	}
}

func (t *Tree) addChildDir(parent int, name string) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{isFile: false, nameIdx: t.internName(name)})
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx
}

// Finalized is the output of Finalize: entries in final BFS node-index
// order, and the name table their name offsets refer into.
type Finalized struct {
	Entries   []wire.Entry
	NameTable []byte
}

// Finalize assigns each directory's contiguous child range and produces
// the BFS-ordered entry list plus the name table. Child ordering within
// a directory is ascending, ASCII case-insensitive by name.
//
// The original index-assignment pass and the serialization pass are
// fused into a single breadth-first walk here: both passes visit nodes
// in the same order (the sort order fixed before either pass begins), so
// a node's position in the walk is already its final tree index.
func (t *Tree) Finalize() (Finalized, error) {
	nameOffsets := make([]uint32, len(t.names))
	var table []byte
	for i, name := range t.names {
		nameOffsets[i] = uint32(len(table))
		var err error
		table, err = wire.EncodeName(table, name)
		if err != nil {
			return Finalized{}, err
		}
	}

	order := make([]int, 0, len(t.nodes))
	queue := []int{rootIndex}
	nextIndex := uint32(1)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		order = append(order, idx)
		n := &t.nodes[idx]
		if n.isFile {
			continue
		}
		sort.Slice(n.children, func(i, j int) bool {
			return wire.CompareNodeName(t.names[t.nodes[n.children[i]].nameIdx], t.names[t.nodes[n.children[j]].nameIdx]) < 0
		})
		n.nodeStartIndex = nextIndex
		nextIndex += uint32(len(n.children))
		queue = append(queue, n.children...)
	}

	entries := make([]wire.Entry, len(order))
	for pos, idx := range order {
		n := t.nodes[idx]
		nameOffset := wire.RootNameOffset
		if idx != rootIndex {
			nameOffset = nameOffsets[n.nameIdx]
		}
		if n.isFile {
			entries[pos] = wire.NewFileEntry(nameOffset, n.fileOffset, n.fileSize)
		} else {
			entries[pos] = wire.NewDirEntry(nameOffset, n.nodeStartIndex, uint32(len(n.children)))
		}
	}
	return Finalized{Entries: entries, NameTable: table}, nil
}
