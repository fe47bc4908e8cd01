// Package validate classifies an HTTP response as usable, directory-index,
// or rejected -- the boundary between "the server said something" and "the
// server said something we can trust as real repository content".
package validate

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Result is the outcome of validating a response. Reason is empty when
// Valid is true.
type Result struct {
	Valid  bool
	Reason string
}

// Response applies the three rejection rules in order, earliest condition
// wins: non-200 status, a Content-Length of exactly 0, or an HTML body when
// the caller hasn't opted into HTML (the directory-index crawler does, via
// allowHTML).
func Response(status int, header http.Header, allowHTML bool) Result {
	if status != http.StatusOK {
		return Result{false, fmt.Sprintf("responded with status code %d", status)}
	}
	if n, err := strconv.Atoi(header.Get("Content-Length")); err == nil && n == 0 {
		return Result{false, "responded with a zero-length body"}
	}
	if !allowHTML && IsHTML(header) {
		return Result{false, "responded with HTML"}
	}
	return Result{true, ""}
}

// IsHTML reports whether a response's Content-Type indicates an HTML body,
// the signal used both for soft-404 rejection and directory-index
// detection.
func IsHTML(header http.Header) bool {
	return strings.Contains(header.Get("Content-Type"), "text/html")
}
