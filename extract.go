package zarchive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/exzap/zarchive/internal/progress"
)

// ExtractDirOptions configures ExtractDir.
type ExtractDirOptions struct {
	// Concurrency is the number of files extracted at once. Zero means 4.
	Concurrency int
}

// ExtractDir writes every file and directory in r to destDir, recreating
// the archive's tree relative to destDir. Files are extracted
// concurrently, each through a temporary file renamed into place on
// completion so a reader of destDir never observes a partially written
// file at its final path.
func ExtractDir(ctx context.Context, r *Reader, destDir string, opts ExtractDirOptions) error {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return err
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return err
	}
	defer root.Close()

	type job struct {
		path   string
		handle NodeHandle
	}
	var jobs []job
	var walk func(path string, handle NodeHandle) error
	walk = func(path string, handle NodeHandle) error {
		count := r.GetDirEntryCount(handle)
		for i := uint32(0); i < count; i++ {
			entry, err := r.GetDirEntry(handle, i)
			if err != nil {
				return err
			}
			childPath := joinArchivePath(path, entry.Name)
			childHandle := r.LookUp(childPath, true, true)
			if childHandle == InvalidNode {
				return fmt.Errorf("zarchive: extract: %s: %w", childPath, ErrNotFound)
			}
			if entry.IsDirectory {
				if err := root.MkdirAll(filepath.FromSlash(childPath), 0o750); err != nil {
					return err
				}
				if err := walk(childPath, childHandle); err != nil {
					return err
				}
				continue
			}
			jobs = append(jobs, job{path: childPath, handle: childHandle})
		}
		return nil
	}
	if err := walk("", 0); err != nil {
		return err
	}

	r.reportProgress(progress.Event{Stage: progress.StageExtracting, FilesTotal: len(jobs)})

	var filesDone atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := extractOne(r, root, j.path, j.handle); err != nil {
				return err
			}
			r.reportProgress(progress.Event{
				Stage:      progress.StageExtracting,
				Path:       j.path,
				FilesDone:  int(filesDone.Add(1)),
				FilesTotal: len(jobs),
			})
			return nil
		})
	}
	return g.Wait()
}

func joinArchivePath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// extractOne writes one file's content to a temp file in the same
// directory as its final path, then renames it into place.
func extractOne(r *Reader, root *os.Root, relPath string, handle NodeHandle) error {
	destRel := filepath.FromSlash(relPath)
	dir := filepath.Dir(destRel)
	if dir != "." {
		if err := root.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	tempFile, tempRel, err := createExtractTempFile(root, dir)
	if err != nil {
		return fmt.Errorf("zarchive: extract %s: %w", relPath, err)
	}

	if err := copyFileContent(tempFile, r, handle); err != nil {
		tempFile.Close()
		root.Remove(tempRel)
		return fmt.Errorf("zarchive: extract %s: %w", relPath, err)
	}
	if err := tempFile.Close(); err != nil {
		root.Remove(tempRel)
		return fmt.Errorf("zarchive: extract %s: close: %w", relPath, err)
	}
	if err := root.Rename(tempRel, destRel); err != nil {
		root.Remove(tempRel)
		return fmt.Errorf("zarchive: extract %s: rename: %w", relPath, err)
	}
	return nil
}

func copyFileContent(dst io.Writer, r *Reader, handle NodeHandle) error {
	size := r.GetFileSize(handle)
	buf := make([]byte, 256*1024)
	var offset uint64
	for offset < size {
		n, err := r.ReadFromFile(handle, offset, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			return err
		}
		offset += uint64(n)
	}
	return nil
}

func createExtractTempFile(root *os.Root, dir string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		suffix, err := randomHex(8)
		if err != nil {
			return nil, "", err
		}
		rel := filepath.Join(dir, ".zarchive-"+suffix)
		f, err := root.OpenFile(rel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, rel, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("zarchive: create temp file: exhausted retries")
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
