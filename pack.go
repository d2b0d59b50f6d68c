package zarchive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/exzap/zarchive/internal/progress"
)

// PackDir walks dir and writes every regular file and directory it
// contains into w, using slash-separated paths relative to dir.
// Directories are created before the files they contain; empty
// directories are preserved. Symbolic links are skipped rather than
// followed or copied.
func PackDir(w *Writer, dir string) error {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()

	w.reportProgress(progress.Event{Stage: progress.StageEnumerating})

	buf := make([]byte, 256*1024)
	var filesDone int
	var bytesDone uint64

	return fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == "." {
			return nil
		}
		slashPath := filepath.ToSlash(path)

		if d.IsDir() {
			if err := w.MakeDir(slashPath, false); err != nil {
				return fmt.Errorf("zarchive: pack %s: %w", path, err)
			}
			return nil
		}

		f, err := openNoFollow(root, path)
		if errors.Is(err, errSkipSymlink) {
			w.log().Warn("skipping symbolic link", "path", slashPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("zarchive: pack %s: %w", path, err)
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		if err := w.StartNewFile(slashPath); err != nil {
			return fmt.Errorf("zarchive: pack %s: %w", path, err)
		}
		for {
			n, readErr := f.Read(buf)
			if n > 0 {
				if err := w.AppendData(buf[:n]); err != nil {
					return fmt.Errorf("zarchive: pack %s: %w", path, err)
				}
				bytesDone += uint64(n)
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return readErr
			}
			if n == 0 {
				break
			}
		}
		filesDone++
		w.reportProgress(progress.Event{
			Stage:     progress.StageCompressing,
			Path:      slashPath,
			BytesDone: bytesDone,
			FilesDone: filesDone,
		})
		return nil
	})
}

var errSkipSymlink = errors.New("zarchive: symbolic link skipped")
