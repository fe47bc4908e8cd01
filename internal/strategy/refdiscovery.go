package strategy

import (
	"context"
	"log/slog"

	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/refscan"
	"github.com/danielloader/gitdump/internal/stream"
	"github.com/danielloader/gitdump/internal/task"
	"github.com/danielloader/gitdump/internal/validate"
)

// RefDiscovery is a plain download that additionally scans the fetched body
// for refs/... paths, queuing both the ref and its reflog as follow-ups.
type RefDiscovery struct {
	*Deps
}

func (s RefDiscovery) Execute(ctx context.Context, t task.Task) []task.Task {
	relPath := string(t)

	if s.Writer.Exists(relPath) {
		body, err := s.Writer.Read(relPath)
		if err != nil {
			return nil
		}
		return refTasksFrom(body)
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

	body, err := stream.TeeToDisk(s.Writer, relPath, resp.Body)
	if err != nil {
		slog.Error("write failed", "path", relPath, "error", err)
	}

	return refTasksFrom(body)
}

func refTasksFrom(body []byte) []task.Task {
	pairs := refscan.ScanRefBodies(string(body))
	out := make([]task.Task, 0, len(pairs)*2)
	for _, p := range pairs {
		out = append(out, task.Task(p.Ref), task.Task(p.RefLogs))
	}
	return out
}
