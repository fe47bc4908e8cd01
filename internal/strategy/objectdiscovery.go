package strategy

import (
	"context"
	"log/slog"

	"github.com/danielloader/gitdump/internal/gitobj"
	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/stream"
	"github.com/danielloader/gitdump/internal/task"
	"github.com/danielloader/gitdump/internal/validate"
)

// ObjectDiscovery treats Task as a bare 40-character hex hash, fetches
// (or re-reads) the loose object at .git/objects/<hash[:2]>/<hash[2:]>, and
// parses it for further referenced hashes. A parse failure ends that task's
// branch of the graph without affecting the rest of the run.
type ObjectDiscovery struct {
	*Deps
}

func (s ObjectDiscovery) Execute(ctx context.Context, t task.Task) []task.Task {
	hash := string(t)
	if len(hash) != 40 {
		slog.Warn("object discovery task is not a 40-character hash", "task", hash)
		return nil
	}
	relPath := objectPath(hash)

	var raw []byte
	if s.Writer.Exists(relPath) {
		body, err := s.Writer.Read(relPath)
		if err != nil {
			slog.Error("read failed", "path", relPath, "error", err)
			return nil
		}
		raw = body
	} else {
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
		raw = body
	}

	obj, err := gitobj.Parse(raw)
	if err != nil {
		slog.Warn("object parse failed", "hash", hash, "error", err)
		return nil
	}

	refs := obj.References()
	out := make([]task.Task, len(refs))
	for i, h := range refs {
		out[i] = task.Task(h)
	}
	return out
}

// objectPath is the repository-relative path of a loose object given its
// full hex hash.
func objectPath(hash string) string {
	return ".git/objects/" + hash[:2] + "/" + hash[2:]
}
