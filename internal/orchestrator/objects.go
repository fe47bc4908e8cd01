package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/danielloader/gitdump/internal/gitobj"
	"github.com/danielloader/gitdump/internal/refscan"
	"github.com/danielloader/gitdump/internal/strategy"
	"github.com/danielloader/gitdump/internal/task"
)

// discoverObjects assembles every hash reachable from what's already on
// disk -- the fixed source files, every ref/log file ref discovery wrote,
// the staging index, and any downloaded pack -- then drains the resulting
// object graph through ObjectDiscovery. Hashes already materialized inside
// a pack are pre-seeded into the queue's seen set so they are never
// re-fetched as loose objects.
func (o *Orchestrator) discoverObjects(ctx context.Context) {
	var initial []task.Task
	var preseeded []task.Task

	for _, h := range o.scanHashSources() {
		initial = append(initial, task.Task(h))
	}

	if raw, err := o.Writer.Read(".git/index"); err == nil {
		for _, h := range refscan.Hashes(refscan.ParseIndex(raw)) {
			initial = append(initial, task.Task(h))
		}
	}

	packed, referenced := o.enumerateDownloadedPacks()
	for _, h := range packed {
		preseeded = append(preseeded, task.Task(h))
	}
	for _, h := range referenced {
		initial = append(initial, task.Task(h))
	}

	// The object graph grows as commits and trees are parsed, so the final
	// task count isn't known up front -- render an indeterminate spinner
	// rather than a bar claiming a false total.
	o.Reporter.StartPhase("discovering objects", -1)
	defer o.Reporter.FinishPhase()

	base := strategy.ObjectDiscovery{Deps: o.rootDeps()}
	handler := task.HandlerFunc(func(ctx context.Context, t task.Task) []task.Task {
		defer o.Reporter.Advance()
		return base.Execute(ctx, t)
	})

	o.runQueue(ctx, handler, initial, preseeded)
}

// scanHashSources reads the fixed object-source files plus every file under
// .git/refs and .git/logs already written to disk, and bare-hash-scans
// their contents.
func (o *Orchestrator) scanHashSources() []string {
	var paths []string
	paths = append(paths, objectSourceFiles...)
	paths = append(paths, o.walkWrittenFiles(".git/refs")...)
	paths = append(paths, o.walkWrittenFiles(".git/logs")...)

	var hashes []string
	for _, p := range paths {
		raw, err := o.Writer.Read(p)
		if err != nil {
			continue
		}
		hashes = append(hashes, refscan.ScanHashes(string(raw))...)
	}
	return hashes
}

// walkWrittenFiles returns every repository-relative path under relDir that
// has already been materialized on disk.
func (o *Orchestrator) walkWrittenFiles(relDir string) []string {
	root := filepath.Join(o.Writer.Root, filepath.FromSlash(relDir))
	var out []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(o.Writer.Root, path)
		if relErr != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out
}

// enumerateDownloadedPacks walks .git/objects/pack for every *.pack whose
// matching *.idx was also downloaded and enumerates its contents.
func (o *Orchestrator) enumerateDownloadedPacks() (packed, referenced []string) {
	packDir := filepath.Join(o.Writer.Root, ".git", "objects", "pack")
	matches, _ := filepath.Glob(filepath.Join(packDir, "pack-*.pack"))
	for _, packPath := range matches {
		idxPath := packPath[:len(packPath)-len(".pack")] + ".idx"
		if _, err := os.Stat(idxPath); err != nil {
			continue
		}
		contents, err := gitobj.EnumeratePack(packPath, idxPath)
		if err != nil {
			o.Reporter.Warn("enumerating pack %s: %v", packPath, err)
			continue
		}
		packed = append(packed, contents.Packed...)
		referenced = append(referenced, contents.Referenced...)
	}
	return packed, referenced
}
