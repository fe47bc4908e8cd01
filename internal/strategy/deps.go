// Package strategy holds the four task.Handler implementations that
// interpret an HTTP response differently depending on which phase of the
// crawl is running: a plain file fetch, a directory-listing mirror, a ref
// text-file fetch that also scans for more refs, and an object fetch that
// also parses for more hashes.
package strategy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/pathwriter"
	"github.com/danielloader/gitdump/internal/progress"
)

// Deps is the shared read-only collaborator set every strategy closes over.
// BaseURL has no trailing slash; a task's path is joined onto it verbatim.
// Reporter is optional -- nil in tests that don't care about progress
// output.
type Deps struct {
	HTTP     *httpfetch.Client
	Writer   *pathwriter.Writer
	BaseURL  string
	Reporter *progress.Reporter
}

// fetch performs the shared first half of every strategy: build the URL for
// relPath, GET it, and report the outcome. A transport-level failure is
// logged and treated as "no follow-ups", consistent with a single task
// failure never hanging or aborting the run.
func (d *Deps) fetch(ctx context.Context, relPath string) (*httpfetch.Response, bool) {
	u := d.BaseURL + "/" + strings.TrimPrefix(relPath, "/")
	resp, err := d.HTTP.Get(ctx, u)
	if err != nil {
		slog.Warn("fetch failed", "path", relPath, "error", err)
		if d.Reporter != nil {
			d.Reporter.Fetch(u, 0)
		}
		return nil, false
	}
	if d.Reporter != nil {
		d.Reporter.Fetch(u, resp.StatusCode)
	}
	return resp, true
}
