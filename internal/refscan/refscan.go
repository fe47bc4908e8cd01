// Package refscan holds the four textual scanners that seed and extend the
// object graph from metadata files: ref bodies, bare hashes, the binary
// staging index, and objects/info/packs.
package refscan

import (
	"regexp"
	"strings"
)

var refBodyRe = regexp.MustCompile(`refs(/[A-Za-z0-9._\-*]+)+`)

// RefTasks is the pair of download tasks a discovered ref expands to.
type RefTasks struct {
	Ref     string // ".git/<ref>"
	RefLogs string // ".git/logs/<ref>"
}

// ScanRefBodies finds every refs/... path mentioned in text and returns the
// two follow-up tasks each accepted ref produces. A ref ending in "*" (a
// glob, not a real path) is discarded.
func ScanRefBodies(text string) []RefTasks {
	var out []RefTasks
	for _, m := range refBodyRe.FindAllString(text, -1) {
		if strings.HasSuffix(m, "*") {
			continue
		}
		out = append(out, RefTasks{
			Ref:     ".git/" + m,
			RefLogs: ".git/logs/" + m,
		})
	}
	return out
}

var hash40Re = regexp.MustCompile(`(?m)(?:^|\s)([a-f0-9]{40})(?:$|\s)`)

// ScanHashes finds every bare 40-hex-character hash in text, the form found
// in packed-refs, info/refs, FETCH_HEAD, ORIG_HEAD, and files under refs/
// or logs/.
func ScanHashes(text string) []string {
	matches := hash40Re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

var headShapeRe = regexp.MustCompile(`^(ref:.*|[0-9a-f]{40})$`)

// ValidHEAD reports whether a .git/HEAD body, after trimming surrounding
// whitespace, looks like a real HEAD file: either a symbolic ref line or a
// bare 40-hex hash.
func ValidHEAD(body string) bool {
	return headShapeRe.MatchString(strings.TrimSpace(body))
}

var infoPacksRe = regexp.MustCompile(`pack-([a-f0-9]{40})\.pack`)

// PackTasks is the pair of download tasks one pack entry in
// objects/info/packs expands to.
type PackTasks struct {
	Idx  string
	Pack string
}

// ScanInfoPacks finds every pack-<sha>.pack reference in objects/info/packs
// and returns the .idx/.pack download tasks for each.
func ScanInfoPacks(text string) []PackTasks {
	matches := infoPacksRe.FindAllStringSubmatch(text, -1)
	out := make([]PackTasks, 0, len(matches))
	for _, m := range matches {
		sha := m[1]
		out = append(out, PackTasks{
			Idx:  ".git/objects/pack/pack-" + sha + ".idx",
			Pack: ".git/objects/pack/pack-" + sha + ".pack",
		})
	}
	return out
}
