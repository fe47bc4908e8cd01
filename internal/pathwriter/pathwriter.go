// Package pathwriter atomically materializes fetched payloads under an
// output directory, mirroring the server-side layout path for path.
package pathwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const chunkSize = 4096

// Writer roots every relative path it writes inside Root.
type Writer struct {
	Root string
}

// New returns a Writer rooted at root.
func New(root string) *Writer {
	return &Writer{Root: root}
}

func (w *Writer) abs(relPath string) string {
	return filepath.Join(w.Root, filepath.FromSlash(relPath))
}

// Exists reports whether relPath has already been materialized -- the basis
// for the "already downloaded" idempotent-rerun skip.
func (w *Writer) Exists(relPath string) bool {
	_, err := os.Stat(w.abs(relPath))
	return err == nil
}

// Write streams body to relPath in chunkSize pieces via a temp file plus
// rename, so a reader never observes a partially written file. Overwrite is
// permitted: a second crawl may legitimately replace a partial file.
func (w *Writer) Write(relPath string, body io.Reader) error {
	dst := w.abs(relPath)
	dir := filepath.Dir(dst)

	if err := w.mkdirAll(dir); err != nil {
		return fmt.Errorf("pathwriter: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("pathwriter: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(tmp, body, buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("pathwriter: writing %s: %w", relPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("pathwriter: closing %s: %w", relPath, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("pathwriter: renaming into %s: %w", dst, err)
	}
	return nil
}

// WriteBytes is Write for an already-materialized payload (the ref/log text
// scanners need the bytes in hand anyway to scan them).
func (w *Writer) WriteBytes(relPath string, data []byte) error {
	return w.Write(relPath, newByteReader(data))
}

// Read returns the full contents of a previously written file.
func (w *Writer) Read(relPath string) ([]byte, error) {
	return os.ReadFile(w.abs(relPath))
}

// mkdirAll creates dir and every missing intermediate directory, tolerating
// the "already exists" race from a concurrent worker creating the same
// ancestor. It refuses to walk through a symlink that would place the
// directory outside Root.
func (w *Writer) mkdirAll(dir string) error {
	rootAbs, err := filepath.Abs(w.Root)
	if err != nil {
		return err
	}

	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(rootAbs, dirAbs)
	if err != nil || escapesRoot(rel) {
		return fmt.Errorf("pathwriter: %s escapes root %s", dir, rootAbs)
	}

	cur := rootAbs
	for _, part := range splitRel(rel) {
		cur = filepath.Join(cur, part)
		if fi, err := os.Lstat(cur); err == nil {
			if fi.Mode()&os.ModeSymlink != 0 {
				target, err := filepath.EvalSymlinks(cur)
				if err != nil || !within(rootAbs, target) {
					return fmt.Errorf("pathwriter: refusing to follow symlink %s outside root", cur)
				}
				continue
			}
			if !fi.IsDir() {
				return fmt.Errorf("pathwriter: %s exists and is not a directory", cur)
			}
			continue
		}
		if err := os.Mkdir(cur, 0o755); err != nil && !os.IsExist(err) {
			return err
		}
	}
	return nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	return err == nil && !escapesRoot(rel)
}

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func splitRel(rel string) []string {
	if rel == "." || rel == "" {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}
