// Package orchestrator sequences the crawl's phases: probe, common files,
// ref discovery, packs, object discovery, config sanitization, and the
// final external checkout. Each phase blocks on queue quiescence before the
// next starts, so phase N+1 always observes every file phase N wrote.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danielloader/gitdump/internal/config"
	"github.com/danielloader/gitdump/internal/gitconfig"
	"github.com/danielloader/gitdump/internal/httpfetch"
	"github.com/danielloader/gitdump/internal/pathwriter"
	"github.com/danielloader/gitdump/internal/progress"
	"github.com/danielloader/gitdump/internal/refscan"
	"github.com/danielloader/gitdump/internal/strategy"
	"github.com/danielloader/gitdump/internal/task"
	"github.com/danielloader/gitdump/internal/validate"
)

// Exit codes, matching the CLI contract.
const (
	ExitOK           = 0
	ExitProbeFailure = 1
)

// Orchestrator owns the collaborators every phase shares.
type Orchestrator struct {
	HTTP     *httpfetch.Client
	Writer   *pathwriter.Writer
	Reporter *progress.Reporter
	BaseURL  string
	Jobs     int
	Checkout Checkout
}

// New builds an Orchestrator from a parsed RunContext. It enforces the
// output-directory invariant at startup: the directory must already exist
// (a missing directory aborts the run, same as a probe failure), and a
// non-empty directory is merely warned about since the original tool
// proceeds into it anyway.
func New(rc *config.RunContext, reporter *progress.Reporter) (*Orchestrator, error) {
	if err := checkOutputDir(rc.OutputDir, reporter); err != nil {
		return nil, err
	}

	cfg := httpfetch.Config{
		UserAgent: rc.UserAgent,
		Headers:   rc.Headers,
		Retry:     rc.Retry,
		Timeout:   rc.Timeout,
	}
	if rc.Proxy != nil {
		dialer, err := rc.Proxy.Dialer()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: building proxy dialer: %w", err)
		}
		cfg.Proxy = dialer
	}

	return &Orchestrator{
		HTTP:     httpfetch.New(cfg),
		Writer:   pathwriter.New(rc.OutputDir),
		Reporter: reporter,
		BaseURL:  rc.BaseURL,
		Jobs:     rc.Jobs,
		Checkout: ExternalGitCheckout{Dir: rc.OutputDir},
	}, nil
}

// checkOutputDir requires dir to already exist as a directory and warns,
// but does not abort, if it already has contents.
func checkOutputDir(dir string, reporter *progress.Reporter) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("orchestrator: output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("orchestrator: output directory %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("orchestrator: reading output directory %s: %w", dir, err)
	}
	if len(entries) > 0 {
		reporter.Warn("destination %s is not empty", dir)
	}
	return nil
}

// rootDeps addresses paths relative to the repository base URL itself
// (".gitignore" lives next to ".git/", not inside it).
func (o *Orchestrator) rootDeps() *strategy.Deps {
	return &strategy.Deps{HTTP: o.HTTP, Writer: o.Writer, BaseURL: o.BaseURL, Reporter: o.Reporter}
}

// Run executes every phase in order and returns the process exit code.
func (o *Orchestrator) Run(ctx context.Context) int {
	probe, ok := o.probe(ctx)
	if !ok {
		return ExitProbeFailure
	}

	if probe.hasListing {
		o.runQueue(ctx, strategy.RecursiveMirror{Deps: o.rootDeps()}, []task.Task{".git/", ".gitignore"}, nil)
		o.sanitizeConfig()
		o.Checkout.Run()
		return ExitOK
	}

	o.fetchCommonFiles(ctx)
	o.sanitizeConfig()
	o.discoverRefs(ctx)
	o.fetchPacks(ctx)
	o.discoverObjects(ctx)
	o.sanitizeConfig()
	o.Checkout.Run()
	return ExitOK
}

type probeResult struct {
	hasListing bool
}

// probe fetches .git/HEAD and validates its shape; a failure here is fatal
// and aborts the run. It then fetches .git/ to decide whether a directory
// listing is available.
func (o *Orchestrator) probe(ctx context.Context) (probeResult, bool) {
	d := o.rootDeps()

	headURL := d.BaseURL + "/.git/HEAD"
	resp, err := o.HTTP.Get(ctx, headURL)
	if err != nil {
		o.Reporter.Fetch(headURL, 0)
		o.Reporter.Warn("probe failed: %v", err)
		return probeResult{}, false
	}
	defer resp.Body.Close()
	o.Reporter.Fetch(headURL, resp.StatusCode)

	if v := validate.Response(resp.StatusCode, resp.Header, false); !v.Valid {
		o.Reporter.Warn("%s: %s", headURL, v.Reason)
		return probeResult{}, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		o.Reporter.Warn("%s: reading body: %v", headURL, err)
		return probeResult{}, false
	}
	if !refscan.ValidHEAD(string(body)) {
		o.Reporter.Warn("%s is not a git HEAD file", headURL)
		return probeResult{}, false
	}
	if err := o.Writer.WriteBytes(".git/HEAD", body); err != nil {
		o.Reporter.Warn("writing .git/HEAD: %v", err)
	}

	dirURL := d.BaseURL + "/.git/"
	dirResp, err := o.HTTP.Get(ctx, dirURL)
	if err != nil {
		o.Reporter.Fetch(dirURL, 0)
		return probeResult{}, true
	}
	defer dirResp.Body.Close()
	o.Reporter.Fetch(dirURL, dirResp.StatusCode)

	if dirResp.StatusCode != 200 || !validate.IsHTML(dirResp.Header) {
		io.Copy(io.Discard, dirResp.Body)
		return probeResult{}, true
	}
	files, err := validate.IndexedFiles(dirResp.Body)
	if err != nil {
		return probeResult{}, true
	}
	for _, f := range files {
		if f == "HEAD" {
			return probeResult{hasListing: true}, true
		}
	}
	return probeResult{}, true
}

func (o *Orchestrator) fetchCommonFiles(ctx context.Context) {
	tasks := make([]task.Task, 0, len(commonFiles))
	for _, f := range commonFiles {
		tasks = append(tasks, task.Task(f))
	}
	o.runQueue(ctx, strategy.PlainDownload{Deps: o.rootDeps()}, tasks, nil)
}

func (o *Orchestrator) discoverRefs(ctx context.Context) {
	tasks := make([]task.Task, 0, len(refSeeds))
	for _, f := range refSeeds {
		tasks = append(tasks, task.Task(f))
	}
	o.runQueue(ctx, strategy.RefDiscovery{Deps: o.rootDeps()}, tasks, nil)
}

// fetchPacks reads the already-downloaded objects/info/packs and queues the
// .idx/.pack pair for every referenced pack.
func (o *Orchestrator) fetchPacks(ctx context.Context) {
	body, err := o.Writer.Read(".git/objects/info/packs")
	if err != nil {
		return
	}
	pairs := refscan.ScanInfoPacks(string(body))
	tasks := make([]task.Task, 0, len(pairs)*2)
	for _, p := range pairs {
		tasks = append(tasks, task.Task(p.Idx), task.Task(p.Pack))
	}
	o.runQueue(ctx, strategy.PlainDownload{Deps: o.rootDeps()}, tasks, nil)
}

// sanitizeConfig rewrites .git/config in place to comment out hostile keys,
// tolerating the file not existing yet.
func (o *Orchestrator) sanitizeConfig() {
	raw, err := o.Writer.Read(".git/config")
	if err != nil {
		return
	}
	if name, found := gitconfig.HasHostileKey(gitconfig.ReadKeys(raw)); found {
		o.Reporter.Warn("commenting out hostile config key %s", name)
	}
	sanitized := gitconfig.Sanitize(raw)
	if err := o.Writer.WriteBytes(".git/config", sanitized); err != nil {
		o.Reporter.Warn("rewriting .git/config: %v", err)
	}
}

func (o *Orchestrator) runQueue(ctx context.Context, handler task.Handler, initial []task.Task, done []task.Task) *task.SeenSet {
	q := &task.Queue{Jobs: o.Jobs, Handler: handler}
	return q.Run(ctx, initial, done)
}
