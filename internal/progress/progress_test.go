package progress

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFetchLinePrintsURLAndCode(t *testing.T) {
	color.NoColor = true
	var out, errw bytes.Buffer
	r := New(&out, &errw)

	r.Fetch("http://example.test/.git/HEAD", 200)
	assert.Equal(t, "[-] Fetching http://example.test/.git/HEAD [200]\n", out.String())
}

func TestFetchLineReportsTransportFailureAsError(t *testing.T) {
	color.NoColor = true
	var out, errw bytes.Buffer
	r := New(&out, &errw)

	r.Fetch("http://example.test/x", 0)
	assert.Equal(t, "[-] Fetching http://example.test/x [error]\n", out.String())
}

func TestWarnGoesToStderr(t *testing.T) {
	var out, errw bytes.Buffer
	r := New(&out, &errw)

	r.Warn("rejecting %s: %s", "/x", "404")
	assert.Equal(t, "warning: rejecting /x: 404\n", errw.String())
	assert.Empty(t, out.String())
}

func TestFinalWritesStatusLine(t *testing.T) {
	var out, errw bytes.Buffer
	r := New(&out, &errw)

	r.Final("done: %d objects", 12)
	assert.Equal(t, "done: 12 objects\n", out.String())
}

func TestPhaseLifecycleDoesNotPanicWithoutATerminal(t *testing.T) {
	var out, errw bytes.Buffer
	r := New(&out, &errw)

	r.StartPhase("object discovery", 3)
	r.Advance()
	r.Advance()
	r.FinishPhase()
	// Advancing after FinishPhase is a no-op, not a panic.
	r.Advance()
}
