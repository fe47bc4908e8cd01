package strategy

import (
	"context"
	"log/slog"

	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/task"
	"github.com/danielloader/gitdump/internal/validate"
)

// PlainDownload fetches Task's path and streams the body to the matching
// path under the output directory. It never produces follow-up tasks.
// Re-running against an already-materialized path is a no-op, making a
// second crawl of the same target idempotent.
type PlainDownload struct {
	*Deps
}

func (s PlainDownload) Execute(ctx context.Context, t task.Task) []task.Task {
	relPath := string(t)
	if s.Writer.Exists(relPath) {
		return nil
	}

	resp, ok := s.fetch(ctx, relPath)
	if !ok {
		return nil
	}
	defer resp.Body.Close()

	if v := validate.Response(resp.StatusCode, resp.Header, false); !v.Valid {
		err := &httpfetch.HTTPStatusError{URL: relPath, Status: resp.StatusCode, Reason: v.Reason}
		slog.Warn("rejecting response", "path", relPath, "error", err)
		return nil
	}

	if err := s.Writer.Write(relPath, resp.Body); err != nil {
		slog.Error("write failed", "path", relPath, "error", err)
	}
	return nil
}
