// Package linter orchestrates scans: it pulls programs from a Source,
// runs the enabled detectors over each one, and publishes issues and
// progress to the host. One Linter runs at most one scan at a time.
package linter

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bplint/bplint/internal/detector"
	"github.com/bplint/bplint/internal/registry"
	"github.com/bplint/bplint/internal/source"
	"github.com/bplint/bplint/pkg/config"
	"github.com/bplint/bplint/pkg/models"
)

var (
	// ErrScanInProgress is returned when a scan is requested while a
	// previous scan is still running.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrClosed is returned for scan requests after Close.
	ErrClosed = errors.New("linter is closed")
)

// waitTick is how long the driver goroutine waits between cancellation
// checks while the coordinator works on an asset.
const waitTick = 10 * time.Millisecond

// closeWait bounds how long Close waits for an active scan to wind down.
const closeWait = 5 * time.Second

// State is the scan lifecycle of a Linter.
type State int8

const (
	StateIdle State = iota
	StateScanning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// ProgressFunc receives a progress snapshot after each processed asset.
// It is invoked from the scan goroutine; implementations must not call
// back into scan methods.
type ProgressFunc func(models.ScanProgress)

// CompleteFunc receives the final issue list when a scan finishes,
// whether completed or cancelled.
type CompleteFunc func([]models.Issue)

// Options configures a Linter.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Rules overrides the detector heuristics. Nil uses the defaults
	// adjusted by the config thresholds.
	Rules *detector.Ruleset
}

// Linter runs detectors over programs from a Source.
type Linter struct {
	src   source.Source
	cfg   *config.Config
	log   *slog.Logger
	rules *detector.Ruleset

	mu         sync.Mutex
	state      State
	closed     bool
	current    *scan
	issues     []models.Issue
	progress   models.ScanProgress
	onProgress ProgressFunc
	onComplete CompleteFunc
}

// New creates a Linter reading from src.
func New(src source.Source, opts Options) *Linter {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	rules := opts.Rules
	if rules == nil {
		rules = detector.DefaultRuleset()
		if cfg.Thresholds.TickComplexity > 0 {
			rules.TickComplexity = cfg.Thresholds.TickComplexity
		}
		if len(cfg.Scan.EntryPointBases) > 0 {
			rules.EntryPointBases = cfg.Scan.EntryPointBases
		}
	}
	return &Linter{src: src, cfg: cfg, log: log, rules: rules}
}

// OnScanProgress registers the progress callback for subsequent scans.
func (l *Linter) OnScanProgress(fn ProgressFunc) {
	l.mu.Lock()
	l.onProgress = fn
	l.mu.Unlock()
}

// OnScanComplete registers the completion callback for subsequent scans.
func (l *Linter) OnScanComplete(fn CompleteFunc) {
	l.mu.Lock()
	l.onComplete = fn
	l.mu.Unlock()
}

// ScanProject scans every program the source knows about.
func (l *Linter) ScanProject() error {
	assets, err := l.src.List(nil)
	if err != nil {
		return err
	}
	return l.scanAssets(assets)
}

// ScanFolder scans the programs under one folder path.
func (l *Linter) ScanFolder(folder string) error {
	return l.ScanFolders([]string{folder})
}

// ScanFolders scans the programs under the given folder paths. Programs
// reachable through more than one folder are scanned once.
func (l *Linter) ScanFolders(folders []string) error {
	assets, err := l.src.List(folders)
	if err != nil {
		return err
	}
	return l.scanAssets(assets)
}

// ScanBlueprints scans an explicit program list. Duplicates are scanned
// once; the configured include and exclude paths still apply.
func (l *Linter) ScanBlueprints(paths []string) error {
	return l.scanAssets(paths)
}

// CancelScan requests cancellation of the running scan. The asset being
// processed finishes; the rest of the queue is dropped. Issues found so
// far are kept. A no-op when no scan is running.
func (l *Linter) CancelScan() {
	l.mu.Lock()
	s := l.current
	scanning := l.state == StateScanning
	l.mu.Unlock()

	if !scanning || s == nil {
		return
	}
	l.log.Info("scan cancellation requested")
	s.stop()
}

// Close cancels any running scan and waits, bounded, for it to stop. The
// Linter accepts no scans afterwards.
func (l *Linter) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	s := l.current
	scanning := l.state == StateScanning
	l.mu.Unlock()

	if scanning && s != nil {
		s.stop()
		select {
		case <-s.done:
		case <-time.After(closeWait):
			l.log.Warn("shutting down with a scan still running", "waited", closeWait)
		}
	}
	return nil
}

// IsScanInProgress reports whether a scan is currently running.
func (l *Linter) IsScanInProgress() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateScanning
}

// State returns the current scan lifecycle state.
func (l *Linter) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Issues returns a copy of the issues found by the latest scan.
func (l *Linter) Issues() []models.Issue {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Issue, len(l.issues))
	copy(out, l.issues)
	return out
}

// IssuesByType returns the latest scan's issues of one type, in
// discovery order.
func (l *Linter) IssuesByType(t models.IssueType) []models.Issue {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Issue
	for _, issue := range l.issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}
	return out
}

// Progress returns a snapshot of the current scan progress.
func (l *Linter) Progress() models.ScanProgress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress
}

// scanAssets starts a scan over the given asset paths. With concurrency
// enabled and more than one asset it returns once the scan goroutines are
// running; otherwise it scans synchronously.
func (l *Linter) scanAssets(assets []string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.log.Warn("scan requested after close")
		return ErrClosed
	}
	if l.state == StateScanning {
		l.mu.Unlock()
		l.log.Warn("scan requested while a scan is running")
		return ErrScanInProgress
	}

	assets = l.filterAssets(assets)
	s := &scan{
		l:         l,
		assets:    assets,
		work:      make(chan string),
		processed: make(chan struct{}),
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	l.current = s
	l.state = StateScanning
	l.issues = nil
	l.progress = models.ScanProgress{
		TotalAssets: len(assets),
		StartTime:   time.Now(),
	}
	l.mu.Unlock()

	l.log.Info("scan started", "assets", len(assets))

	if len(assets) == 0 {
		l.finish(s)
		close(s.done)
		return nil
	}

	if !l.cfg.Scan.Concurrency || len(assets) <= 1 {
		defer close(s.done)
		s.prepare()
		for _, path := range assets {
			if s.cancelled() {
				break
			}
			s.process(path)
		}
		l.finish(s)
		return nil
	}

	go s.coordinate()
	go s.drive()
	return nil
}

// filterAssets applies the configured path filters and drops duplicates,
// preserving first-seen order.
func (l *Linter) filterAssets(assets []string) []string {
	seen := make(map[string]struct{}, len(assets))
	out := make([]string, 0, len(assets))
	for _, path := range assets {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		if !l.cfg.ShouldProcessPath(path) {
			continue
		}
		out = append(out, path)
	}
	return out
}

// finish transitions the scan to its terminal state and fires the
// completion callback with the collected issues.
func (l *Linter) finish(s *scan) {
	cancelled := s.cancelled()

	l.mu.Lock()
	if cancelled {
		l.state = StateCancelled
		l.progress.Cancelled = true
	} else {
		l.state = StateCompleted
		l.progress.Completed = true
	}
	l.progress.CurrentAsset = ""
	issues := make([]models.Issue, len(l.issues))
	copy(issues, l.issues)
	processed := l.progress.ProcessedAssets
	cb := l.onComplete
	l.mu.Unlock()

	if cancelled {
		l.log.Info("scan cancelled", "processed", processed, "issues", len(issues))
	} else {
		l.log.Info("scan completed", "processed", processed, "issues", len(issues))
	}
	if cb != nil {
		cb(issues)
	}
}

// scan holds the per-scan state. The coordinator goroutine owns all
// program data and the detector context; the driver goroutine only walks
// the asset list and watches for cancellation.
type scan struct {
	l      *Linter
	assets []string

	work      chan string
	processed chan struct{}
	cancel    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once

	detectors []detector.Detector
	dctx      *detector.Context
	cache     map[string]*models.Program
}

func (s *scan) stop() {
	s.stopOnce.Do(func() { close(s.cancel) })
}

func (s *scan) cancelled() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}

// prepare builds the detector set and the scan-scoped reference registry.
// When the unused-function detector is enabled the whole corpus is loaded
// up front so cross-program references resolve.
func (s *scan) prepare() {
	cfg := s.l.cfg
	enabled := cfg.EnabledDetectors()
	s.detectors = detector.ForTypes(enabled)
	s.cache = make(map[string]*models.Program)
	s.dctx = &detector.Context{
		Registry: registry.New(),
		Rules:    s.l.rules,
		RootPath: cfg.Scan.RootPath,
	}

	if !cfg.Detectors.UnusedFunction {
		return
	}

	all, err := s.l.src.List(nil)
	if err != nil {
		s.l.log.Warn("corpus listing failed, cross-program references unavailable", "error", err)
		return
	}
	corpus := source.LoadAll(s.l.src, all, cfg.Scan.MaxConcurrentTasks, nil,
		func(path string, err error) {
			s.l.log.Warn("program failed to load", "program", path, "error", err)
		})
	for _, p := range corpus {
		s.cache[p.Path] = p
	}
	s.dctx.Corpus = corpus
	s.dctx.Registry.BuildFromCorpus(corpus)
	s.l.log.Debug("reference registry built", "programs", len(corpus))
}

// coordinate is the scan's owning goroutine: it loads and analyzes each
// asset the driver hands over, then finalizes the scan when the driver
// closes the work channel.
func (s *scan) coordinate() {
	defer close(s.done)
	s.prepare()
	for path := range s.work {
		s.process(path)
		s.processed <- struct{}{}
	}
	s.l.finish(s)
}

// drive feeds asset paths to the coordinator one at a time. Between
// handing an asset over and its completion it wakes every waitTick to
// recheck cancellation, so a cancel request is honored at the next asset
// boundary rather than at queue end.
func (s *scan) drive() {
	defer close(s.work)
	for _, path := range s.assets {
		select {
		case <-s.cancel:
			return
		case s.work <- path:
		}

		waiting := true
		for waiting {
			select {
			case <-s.processed:
				waiting = false
			case <-time.After(waitTick):
				if s.cancelled() {
					// The coordinator still finishes the asset in
					// flight; consume its completion before stopping.
					<-s.processed
					return
				}
			}
		}
	}
}

// process loads and analyzes one asset, then publishes progress.
func (s *scan) process(path string) {
	var found []models.Issue

	p, ok := s.lookup(path)
	switch {
	case !ok:
		// Already logged; counts toward progress so totals stay honest.
	case s.l.rules.IsEntryPointProgram(p):
		s.l.log.Debug("skipping entry point program", "program", path)
	case !p.HasGraphs():
		s.l.log.Debug("skipping program with no graphs", "program", path)
	default:
		for _, d := range s.detectors {
			found = append(found, s.runDetector(d, p)...)
		}
	}

	l := s.l
	l.mu.Lock()
	l.issues = append(l.issues, found...)
	l.progress.ProcessedAssets++
	l.progress.IssuesFound += len(found)
	l.progress.CurrentAsset = path
	l.progress.Percentage = float64(l.progress.ProcessedAssets) / float64(l.progress.TotalAssets) * 100
	if elapsed := time.Since(l.progress.StartTime); l.progress.ProcessedAssets > 0 {
		perAsset := elapsed / time.Duration(l.progress.ProcessedAssets)
		l.progress.ETA = perAsset * time.Duration(l.progress.TotalAssets-l.progress.ProcessedAssets)
	}
	snapshot := l.progress
	cb := l.onProgress
	l.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

func (s *scan) lookup(path string) (*models.Program, bool) {
	if p, ok := s.cache[path]; ok {
		return p, true
	}
	p, err := s.l.src.Load(path)
	if err != nil {
		s.l.log.Warn("program failed to load", "program", path, "error", err)
		return nil, false
	}
	s.cache[path] = p
	return p, true
}

// runDetector isolates one detector run so a fault in a single check
// loses that check's findings for that program, not the scan.
func (s *scan) runDetector(d detector.Detector, p *models.Program) (out []models.Issue) {
	defer func() {
		if r := recover(); r != nil {
			s.l.log.Error("detector fault", "detector", string(d.Type()), "program", p.Path, "panic", r)
			out = nil
		}
	}()
	return d.Detect(s.dctx, p)
}
