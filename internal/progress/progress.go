// Package progress prints one colorized line per fetched task and an
// optional aggregate bar across a phase -- the crawler's only user-facing
// output besides its final status line.
package progress

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Reporter serializes progress output so concurrent workers never interleave
// partial lines; every write is flushed before the next one is accepted,
// satisfying the "atomic at the line level" requirement of the concurrency
// model.
type Reporter struct {
	mu  sync.Mutex
	out *bufio.Writer
	err *bufio.Writer
	bar *progressbar.ProgressBar
}

// New wraps stdout (task lines, final status) and stderr (warnings) writers.
func New(stdout, stderr io.Writer) *Reporter {
	return &Reporter{
		out: bufio.NewWriter(stdout),
		err: bufio.NewWriter(stderr),
	}
}

// Fetch reports the outcome of one fetch task: "[-] Fetching <url> [<code>]",
// colored green for 2xx, yellow for 3xx, red for 4xx/5xx and for a transport
// failure (code 0).
func (r *Reporter) Fetch(url string, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("[-] Fetching %s [%s]\n", url, colorizeCode(code))
	fmt.Fprint(r.out, line)
	r.out.Flush()
}

func colorizeCode(code int) string {
	text := fmt.Sprintf("%d", code)
	switch {
	case code == 0:
		return color.RedString("error")
	case code >= 200 && code < 300:
		return color.GreenString(text)
	case code >= 300 && code < 400:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

// Warn prints one line to stderr -- used for validation rejections and
// config-sanitization notices.
func (r *Reporter) Warn(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.err, "warning: "+format+"\n", args...)
	r.err.Flush()
}

// Final prints the run's closing status line.
func (r *Reporter) Final(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, format+"\n", args...)
	r.out.Flush()
}

// StartPhase opens an aggregate bar across a phase with a known task count
// (the object-discovery phase, which can run to many thousands of tasks).
// Passing total <= 0 renders an indeterminate spinner instead.
func (r *Reporter) StartPhase(name string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Finish()
	}
	if total <= 0 {
		total = -1
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionClearOnFinish(),
	)
}

// Advance increments the current phase's aggregate bar by one completed
// task. A no-op if no phase bar is open.
func (r *Reporter) Advance() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Add(1)
	}
}

// FinishPhase closes the current phase's aggregate bar, if any.
func (r *Reporter) FinishPhase() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
