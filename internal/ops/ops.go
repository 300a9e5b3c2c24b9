// Package ops holds the filesystem helpers the CLI calls around a run:
// glob cleanup of build droppings, directory copies, existence checks.
// The orchestration core never touches these.
package ops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// CleanFiles removes every file matching the doublestar pattern
// (e.g. "target/**/*.tmp"). Directories are left alone.
func CleanFiles(pattern string) error {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("bad glob %q: %w", pattern, err)
	}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return err
		}
		if info.IsDir() {
			continue
		}
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("removing %q: %w", m, err)
		}
	}
	return nil
}

// RemoveFile removes a single file.
func RemoveFile(path string) error {
	return os.Remove(path)
}

// RemoveDir removes a directory and its contents.
func RemoveDir(path string) error {
	return os.RemoveAll(path)
}

// Exists reports whether the path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyContents copies the contents of one directory into another, creating
// the destination if needed. Existing destination files are only replaced
// when overwrite is set. Returns the total bytes copied.
func CopyContents(from, to string, overwrite bool) (int64, error) {
	var total int64
	err := filepath.WalkDir(from, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(to, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if !overwrite && Exists(dst) {
			return nil
		}
		n, err := copyFile(path, dst)
		total += n
		return err
	})
	return total, err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return n, err
	}
	return n, out.Close()
}
