//go:build !unix

package zarchive

import (
	"io/fs"
	"os"
)

// openNoFollow opens path relative to root without following a trailing
// symlink, reporting errSkipSymlink instead of descending into it.
func openNoFollow(root *os.Root, path string) (*os.File, error) {
	info, err := root.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, errSkipSymlink
	}
	return root.Open(path)
}
