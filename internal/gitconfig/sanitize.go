// Package gitconfig neutralizes hostile keys in a fetched .git/config
// before the external checkout runs, and offers a best-effort read of
// the same file for logging.
package gitconfig

import (
	"bytes"
	"regexp"
)

// hostileKeyRe matches a config line assigning one of the keys git (or a
// checkout helper) would shell out to. The match is anchored to the key
// position so "# fsmonitor = ..." and "myfsmonitor = ..." are left alone.
var hostileKeyRe = regexp.MustCompile(`(?i)^(\s*)(fsmonitor|sshCommand|askPass|editor|pager)(\s*=)`)

// Sanitize comments out every hostile key assignment in raw, prefixing the
// key with "# ". Lines that don't match are returned byte-for-byte; the
// file's final newline, if any, is not written back. This is
// a line rewrite, never a parse-then-reserialize round trip, so malformed
// or deliberately adversarial lines are neutralized in place instead of
// silently reformatted or dropped.
func Sanitize(raw []byte) []byte {
	lines := bytes.Split(raw, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	var out bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.Write(sanitizeLine(line))
	}
	return out.Bytes()
}

func sanitizeLine(line []byte) []byte {
	loc := hostileKeyRe.FindSubmatchIndex(line)
	if loc == nil {
		return line
	}
	indent := line[loc[2]:loc[3]]
	rest := line[loc[4]:]
	out := make([]byte, 0, len(line)+2)
	out = append(out, indent...)
	out = append(out, "# "...)
	out = append(out, rest...)
	return out
}
