package validate

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseRejectsNon200(t *testing.T) {
	r := Response(http.StatusNotFound, http.Header{}, false)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Reason, "404")
}

func TestResponseRejectsZeroLength(t *testing.T) {
	h := http.Header{"Content-Length": {"0"}}
	r := Response(http.StatusOK, h, false)
	assert.False(t, r.Valid)
}

func TestResponseRejectsHTMLUnlessAllowed(t *testing.T) {
	h := http.Header{"Content-Type": {"text/html; charset=utf-8"}}

	r := Response(http.StatusOK, h, false)
	assert.False(t, r.Valid)

	r = Response(http.StatusOK, h, true)
	assert.True(t, r.Valid)
}

func TestResponseAcceptsPlainBinary(t *testing.T) {
	h := http.Header{"Content-Type": {"application/octet-stream"}, "Content-Length": {"42"}}
	r := Response(http.StatusOK, h, false)
	assert.True(t, r.Valid)
}

func TestResponseEarliestConditionWins(t *testing.T) {
	// Non-200 wins even when the body would also be zero-length HTML.
	h := http.Header{"Content-Length": {"0"}, "Content-Type": {"text/html"}}
	r := Response(http.StatusNotFound, h, true)
	assert.Contains(t, r.Reason, "404")
}

func TestIndexedFilesDiscardsNavigationAndAbsolute(t *testing.T) {
	page := `<html><body>
		<a href=".">.</a>
		<a href="..">..</a>
		<a href="../">parent</a>
		<a href="/etc/passwd">abs</a>
		<a href="https://evil.example/x">scheme</a>
		<a href="HEAD">HEAD</a>
		<a href="objects/">objects/</a>
	</body></html>`

	files, err := IndexedFiles(strings.NewReader(page))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"HEAD", "objects/"}, files)
}
