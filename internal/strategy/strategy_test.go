package strategy

import (
	"bytes"
	"compress/zlib"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/pathwriter"
	"github.com/danielloader/gitdump/internal/task"
)

func newDeps(t *testing.T, srv *httptest.Server) *Deps {
	t.Helper()
	return &Deps{
		HTTP:    httpfetch.New(httpfetch.Config{Retry: 0, Timeout: 2 * time.Second}),
		Writer:  pathwriter.New(t.TempDir()),
		BaseURL: srv.URL,
	}
}

func TestPlainDownloadWritesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := PlainDownload{deps}

	follow := s.Execute(context.Background(), task.Task(".git/description"))
	assert.Empty(t, follow)

	got, err := deps.Writer.Read(".git/description")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestPlainDownloadSkipsExistingFile(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	require.NoError(t, deps.Writer.WriteBytes(".git/description", []byte("already here")))

	s := PlainDownload{deps}
	s.Execute(context.Background(), task.Task(".git/description"))
	assert.Equal(t, 0, hits)
}

func TestPlainDownloadRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := PlainDownload{deps}
	s.Execute(context.Background(), task.Task(".git/description"))

	assert.False(t, deps.Writer.Exists(".git/description"))
}

func TestRefDiscoveryReturnsRefAndReflogTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0000000000000000000000000000000000000000 refs/heads/main\x00\n"))
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := RefDiscovery{deps}

	follow := s.Execute(context.Background(), task.Task("packed-refs"))
	var tasks []string
	for _, f := range follow {
		tasks = append(tasks, string(f))
	}
	assert.Contains(t, tasks, ".git/refs/heads/main")
	assert.Contains(t, tasks, ".git/logs/refs/heads/main")
}

func TestObjectDiscoveryReturnsReferencedHashes(t *testing.T) {
	// deflated commit pointing at one tree, no parents
	raw, tree := deflatedCommit(t)
	hash := "dddddddddddddddddddddddddddddddddddddddd"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.git/objects/dd/dddddddddddddddddddddddddddddddddddddd", r.URL.Path)
		w.Write(raw)
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := ObjectDiscovery{deps}

	follow := s.Execute(context.Background(), task.Task(hash))
	require.Len(t, follow, 1)
	assert.Equal(t, tree, string(follow[0]))

	assert.True(t, deps.Writer.Exists(".git/objects/dd/dddddddddddddddddddddddddddddddddddddd"))
}

func TestObjectDiscoveryRejectsMalformedTaskWithoutFetching(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := ObjectDiscovery{deps}
	follow := s.Execute(context.Background(), task.Task("not-a-hash"))
	assert.Nil(t, follow)
	assert.Equal(t, 0, hits)
}

func TestRecursiveMirrorExpandsDirectoryIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="HEAD">HEAD</a><a href="../up">up</a><a href="objects/">objects/</a></body></html>`))
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := RecursiveMirror{deps}

	follow := s.Execute(context.Background(), task.Task(".git/"))
	var tasks []string
	for _, f := range follow {
		tasks = append(tasks, string(f))
	}
	assert.Contains(t, tasks, ".git/HEAD")
	assert.Contains(t, tasks, ".git/objects/")
	assert.NotContains(t, tasks, ".git/../up")
}

func TestRecursiveMirrorFollowsTrailingSlashRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.git" {
			w.Header().Set("Location", r.URL.Path+"/")
			w.WriteHeader(http.StatusMovedPermanently)
			return
		}
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := RecursiveMirror{deps}

	follow := s.Execute(context.Background(), task.Task(".git"))
	require.Len(t, follow, 1)
	assert.Equal(t, ".git/", string(follow[0]))
}

func TestRecursiveMirrorWritesPlainFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("core.ignorecase=true\n"))
	}))
	defer srv.Close()

	deps := newDeps(t, srv)
	s := RecursiveMirror{deps}

	follow := s.Execute(context.Background(), task.Task(".gitignore"))
	assert.Empty(t, follow)

	got, err := deps.Writer.Read(".gitignore")
	require.NoError(t, err)
	assert.Equal(t, "core.ignorecase=true\n", string(got))
}

// deflatedCommit returns a zlib-compressed commit object body referencing
// one tree hash, for the object-discovery test above.
func deflatedCommit(t *testing.T) ([]byte, string) {
	t.Helper()
	tree := "cccccccccccccccccccccccccccccccccccccccc"
	body := []byte("tree " + tree + "\nauthor a <a@b> 0 +0000\n\nmsg\n")
	header := []byte("commit " + itoaLen(len(body)) + "\x00")

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(append(header, body...))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes(), tree
}

func itoaLen(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
