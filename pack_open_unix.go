//go:build unix

package zarchive

import (
	"errors"
	"os"
	"syscall"
)

// openNoFollow opens path relative to root without following a trailing
// symlink, reporting errSkipSymlink instead of descending into it.
func openNoFollow(root *os.Root, path string) (*os.File, error) {
	f, err := root.OpenFile(path, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
	if err != nil {
		if errors.Is(err, syscall.ELOOP) {
			return nil, errSkipSymlink
		}
		return nil, err
	}
	return f, nil
}
