package strategy

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/task"
	"github.com/danielloader/gitdump/internal/validate"
)

// RecursiveMirror is used only against servers that expose directory
// listings. A task ending in "/" is treated as a directory: its body is
// parsed as an HTML index and one follow-up task is returned per anchor
// href. Any other task is a plain file fetch. A 301/302 whose Location
// differs from the request only by a trailing slash is followed with a
// single follow-up task for the slashed path; any other redirect is a
// dead end.
type RecursiveMirror struct {
	*Deps
}

func (s RecursiveMirror) Execute(ctx context.Context, t task.Task) []task.Task {
	relPath := string(t)
	isDir := strings.HasSuffix(relPath, "/")

	if !isDir && s.Writer.Exists(relPath) {
		return nil
	}

	resp, ok := s.fetch(ctx, relPath)
	if !ok {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		if slashed, ok := sameExceptTrailingSlash(relPath, resp.Header.Get("Location")); ok {
			return []task.Task{task.Task(slashed)}
		}
		return nil
	}

	if v := validate.Response(resp.StatusCode, resp.Header, isDir); !v.Valid {
		err := &httpfetch.HTTPStatusError{URL: relPath, Status: resp.StatusCode, Reason: v.Reason}
		slog.Warn("rejecting response", "path", relPath, "error", err)
		return nil
	}

	if isDir {
		hrefs, err := validate.IndexedFiles(resp.Body)
		if err != nil {
			slog.Warn("directory index parse failed", "path", relPath, "error", err)
			return nil
		}
		out := make([]task.Task, len(hrefs))
		for i, href := range hrefs {
			out[i] = task.Task(relPath + href)
		}
		return out
	}

	if err := s.Writer.Write(relPath, resp.Body); err != nil {
		slog.Error("write failed", "path", relPath, "error", err)
	}
	return nil
}

// sameExceptTrailingSlash reports whether location is requestPath with
// exactly one trailing "/" appended, tolerating location being either a
// bare path or an absolute URL ending in that path.
func sameExceptTrailingSlash(requestPath, location string) (string, bool) {
	if location == "" {
		return "", false
	}
	want := requestPath + "/"
	if strings.HasSuffix(location, want) || location == want {
		return want, true
	}
	return "", false
}
