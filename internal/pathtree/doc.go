// Package pathtree implements the writer's in-memory directory tree.
// Nodes live in a flat arena addressed by index rather than by owning
// pointer, so the tree can be built incrementally while files are
// appended and then walked breadth-first to assign the contiguous node
// ranges the on-disk format requires.
package pathtree
