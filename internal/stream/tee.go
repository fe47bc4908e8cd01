// Package stream tees a fetched response body to disk and into memory at
// the same time, so a strategy that both persists and scans a file (ref
// discovery, object discovery) never has to choose between streaming the
// write and buffering the whole body up front.
package stream

import (
	"bytes"
	"io"

	"github.com/danielloader/gitdump/internal/pathwriter"
)

// TeeToDisk writes body to relPath under writer while simultaneously
// accumulating it in memory, and returns the accumulated bytes once the
// write completes. A write failure is returned verbatim; the caller
// decides whether a file that failed to persist can still be scanned from
// the bytes already read.
func TeeToDisk(writer *pathwriter.Writer, relPath string, body io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	tee := io.TeeReader(body, &buf)

	if err := writer.Write(relPath, tee); err != nil {
		return buf.Bytes(), err
	}
	return buf.Bytes(), nil
}
