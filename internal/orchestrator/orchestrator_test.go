package orchestrator

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

	"github.com/danielloader/gitdump/internal/config"
	"github.com/danielloader/gitdump/internal/progress"
)

// fakeCheckout records whether Run was invoked, standing in for the real
// external "git checkout ." so tests never shell out.
type fakeCheckout struct {
	ran *bool
}

func (f fakeCheckout) Run() { *f.ran = true }

func newTestOrchestrator(t *testing.T, srv *httptest.Server) (*Orchestrator, *bool) {
	t.Helper()
	rc := &config.RunContext{
		BaseURL:   srv.URL,
		OutputDir: t.TempDir(),
		Jobs:      4,
		Retry:     0,
		Timeout:   2 * time.Second,
	}
	orch, err := New(rc, progress.New(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	ran := false
	orch.Checkout = fakeCheckout{ran: &ran}
	return orch, &ran
}

func deflateBlob(t *testing.T, body []byte) []byte {
	t.Helper()
	header := []byte("blob " + itoa(len(body)) + "\x00")
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(append(header, body...))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func itoa(n int) string {
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

func TestRunAbortsWhenProbeGetsSoft404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not found</html>"))
	}))
	defer srv.Close()

	orch, ran := newTestOrchestrator(t, srv)
	code := orch.Run(context.Background())

	assert.Equal(t, ExitProbeFailure, code)
	assert.False(t, *ran, "checkout must never run after a failed probe")
}

func TestRunWithDirectoryListingMirrorsTree(t *testing.T) {
	head := "1111111111111111111111111111111111111111\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.git/HEAD":
			w.Write([]byte(head))
		case "/.git/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><a href="HEAD">HEAD</a><a href="config">config</a></body></html>`))
		case "/.gitignore":
			w.WriteHeader(http.StatusNotFound)
		case "/.git/config":
			w.Write([]byte("[core]\n\trepositoryformatversion = 0\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	orch, ran := newTestOrchestrator(t, srv)
	code := orch.Run(context.Background())

	require.Equal(t, ExitOK, code)
	assert.True(t, *ran)

	got, err := orch.Writer.Read(".git/HEAD")
	require.NoError(t, err)
	assert.Equal(t, head, string(got))

	// sanitizeConfig rewrites the file line-by-line without a handler for
	// hostile keys in this config, so content is unchanged except that the
	// rewrite doesn't preserve a final trailing newline.
	got, err = orch.Writer.Read(".git/config")
	require.NoError(t, err)
	assert.Equal(t, "[core]\n\trepositoryformatversion = 0", string(got))
}

func TestRunWithoutListingDiscoversRefsAndObjects(t *testing.T) {
	head := "1111111111111111111111111111111111111111\n"
	hash := "1111111111111111111111111111111111111111"
	blobRaw := deflateBlob(t, []byte("hello\n"))

	hostileConfig := []byte("[core]\n\tsshCommand = evil-command\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.git/HEAD":
			w.Write([]byte(head))
		case "/.git/":
			// no directory listing available
			w.WriteHeader(http.StatusForbidden)
		case "/.git/refs/heads/master":
			w.Write([]byte(hash + "\n"))
		case "/.git/config":
			w.Write(hostileConfig)
		case "/.git/objects/11/11111111111111111111111111111111111111":
			w.Write(blobRaw)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	orch, ran := newTestOrchestrator(t, srv)
	code := orch.Run(context.Background())

	require.Equal(t, ExitOK, code)
	assert.True(t, *ran)

	assert.True(t, orch.Writer.Exists(".git/refs/heads/master"))
	assert.True(t, orch.Writer.Exists(".git/objects/11/11111111111111111111111111111111111111"))

	sanitized, err := orch.Writer.Read(".git/config")
	require.NoError(t, err)
	assert.Contains(t, string(sanitized), "# sshCommand = evil-command")
}

func TestRunToleratesCorruptedIndexWithoutCrashing(t *testing.T) {
	head := "1111111111111111111111111111111111111111\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.git/HEAD":
			w.Write([]byte(head))
		case "/.git/":
			w.WriteHeader(http.StatusForbidden)
		case "/.git/index":
			// truncated DIRC header -- must not crash discovery
			w.Write([]byte("DIRC\x00\x00"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	orch, ran := newTestOrchestrator(t, srv)

	assert.NotPanics(t, func() {
		code := orch.Run(context.Background())
		assert.Equal(t, ExitOK, code)
	})
	assert.True(t, *ran)
}
