// Package engine hosts the scan orchestrator: it validates requests,
// allocates scan sessions, spawns traversal workers and progress reporters,
// and delivers terminal results to the observer. The caller of Start is
// never blocked on traversal; everything after validation is asynchronous.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/driftscan/driftscan/internal/logging"
	"github.com/driftscan/driftscan/internal/scan"
	"github.com/driftscan/driftscan/internal/scanner"
	"github.com/driftscan/driftscan/internal/session"
)

// Version identifies the engine build in heartbeat payloads.
const Version = "0.4.0"

// Config holds the engine's tunables. The zero value of any field falls back
// to the corresponding default.
type Config struct {
	// Concurrency bounds the fan-out across sibling subdirectories of a
	// single scan.
	Concurrency int

	// ProgressInterval is the wall-clock period between progress
	// snapshots; ProgressEntryThreshold additionally forces a snapshot
	// every that many processed entries.
	ProgressInterval       time.Duration
	ProgressEntryThreshold int

	// EstimateTotals enables the fastwalk pre-pass that gives progress
	// snapshots a percent estimate at the cost of a second tree walk.
	EstimateTotals bool

	// MaxConcurrentScans caps simultaneously running scans; 0 means
	// unlimited.
	MaxConcurrentScans int

	// SandboxRoots restricts scan roots to the given subtrees when
	// non-empty.
	SandboxRoots []string

	// Retention is how long a terminal session remains queryable before
	// it is dropped from the registry.
	Retention time.Duration
}

// DefaultConfig returns the settings used when callers pass a zero Config.
func DefaultConfig() Config {
	return Config{
		Concurrency:            scanner.DefaultConcurrency,
		ProgressInterval:       scanner.DefaultProgressInterval,
		ProgressEntryThreshold: 512,
		MaxConcurrentScans:     4,
		Retention:              30 * time.Second,
	}
}

// Engine coordinates scans. Distinct scans are fully independent: the only
// state they share is the session registry.
type Engine struct {
	cfg       Config
	validator *scan.Validator
	sessions  *session.Registry
	started   time.Time
}

// New creates an engine from cfg, filling unset fields from DefaultConfig.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = def.ProgressInterval
	}
	if cfg.ProgressEntryThreshold <= 0 {
		cfg.ProgressEntryThreshold = def.ProgressEntryThreshold
	}
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}
	return &Engine{
		cfg:       cfg,
		validator: scan.NewValidator(cfg.SandboxRoots),
		sessions:  session.NewRegistry(cfg.Retention),
		started:   time.Now(),
	}
}

// Start validates the request and, on success, launches the scan and returns
// its identifier immediately. The observer receives throttled progress
// snapshots followed by exactly one terminal delivery: Completed for a scan
// that finishes or is cancelled, Failed for a top-level fault. Validation
// failures are returned synchronously and allocate no scan state. Cancelling
// ctx is equivalent to cancelling the scan.
func (e *Engine) Start(ctx context.Context, req scan.Request, obs scan.Observer) (string, error) {
	if obs == nil {
		obs = scan.NopObserver{}
	}
	root, err := e.validator.Validate(req.Path)
	if err != nil {
		return "", err
	}
	if e.cfg.MaxConcurrentScans > 0 && e.sessions.ActiveCount() >= e.cfg.MaxConcurrentScans {
		return "", scan.ErrTooManyScans
	}

	sess := e.sessions.Register(root)
	logging.Engine.Printf("scan %s started: %s", sess.ID, root)
	go e.run(ctx, sess, req, obs)
	return sess.ID, nil
}

// Cancel requests cooperative cancellation of a scan. It returns true when
// the scan existed and was still in a cancellable state.
func (e *Engine) Cancel(id string) bool {
	ok := e.sessions.Cancel(id)
	if ok {
		logging.Engine.Printf("scan %s: cancellation requested", id)
	}
	return ok
}

// Status returns the current status of a scan. The second return is false
// when the identifier is unknown (never started, or already past its
// retention window).
func (e *Engine) Status(id string) (scan.Status, bool) {
	s := e.sessions.Get(id)
	if s == nil {
		return scan.StatusIdle, false
	}
	return s.Status(), true
}

// Heartbeat returns the engine's liveness payload.
func (e *Engine) Heartbeat() scan.Heartbeat {
	return scan.Heartbeat{
		Status:      "healthy",
		UptimeMs:    time.Since(e.started).Milliseconds(),
		ActiveScans: e.sessions.ActiveCount(),
		Timestamp:   scan.Timestamp(time.Now()),
		Version:     Version,
	}
}

func (e *Engine) run(ctx context.Context, sess *session.Session, req scan.Request, obs scan.Observer) {
	started := time.Now()
	counters := scanner.NewCounters(e.cfg.ProgressEntryThreshold)

	// The reporter and estimator stop as soon as traversal ends; their
	// context never outlives the walk.
	auxCtx, stopAux := context.WithCancel(ctx)
	defer stopAux()

	var est *scanner.Estimator
	if e.cfg.EstimateTotals {
		est = &scanner.Estimator{}
		go est.Run(auxCtx, sess.RootPath, req.IncludeHidden)
	}

	rep := scanner.NewReporter(sess.ID, counters, est, obs, e.cfg.ProgressInterval, started)
	repDone := make(chan struct{})
	go func() {
		rep.Run(auxCtx)
		close(repDone)
	}()

	w := scanner.NewWalker(sess.RootPath, scanner.Config{
		MaxDepth:       req.MaxDepth,
		IncludeHidden:  req.IncludeHidden,
		FollowSymlinks: req.FollowSymlinks,
		Concurrency:    e.cfg.Concurrency,
	}, counters, sess.IsCancelled)

	entries, err := w.Run(ctx)
	if err == nil && ctx.Err() != nil {
		err = scan.ErrCancelled
	}

	stopAux()
	<-repDone
	duration := time.Since(started)

	switch {
	case err == nil:
		sess.SetStatus(scan.StatusCompleted)
		rep.Final(scan.StatusCompleted)
		res := buildResult(sess.ID, sess.RootPath, entries, counters.Skipped(), duration, scan.StatusCompleted)
		logging.Engine.Printf("scan %s completed: %d files, %d dirs, %s in %dms",
			sess.ID, res.TotalFiles, res.TotalDirectories, res.TotalSizeFormatted, res.DurationMs)
		obs.Completed(res)
	case errors.Is(err, scan.ErrCancelled):
		sess.SetStatus(scan.StatusCancelled)
		rep.Final(scan.StatusCancelled)
		res := buildResult(sess.ID, sess.RootPath, entries, counters.Skipped(), duration, scan.StatusCancelled)
		logging.Engine.Printf("scan %s cancelled after %dms", sess.ID, res.DurationMs)
		obs.Completed(res)
	default:
		// Top-level fault: accumulated entries are discarded, the
		// final snapshot preserves the counters up to the fault.
		sess.SetStatus(scan.StatusError)
		rep.Final(scan.StatusError)
		logging.Engine.Printf("scan %s failed: %v", sess.ID, err)
		obs.Failed(sess.ID, err)
	}

	e.sessions.RemoveAfterRetention(sess.ID)
}

// buildResult derives the terminal totals from the entry sequence itself, so
// the published totals always agree with the published entries.
func buildResult(scanID, root string, entries []scan.FileEntry, skipped int64, duration time.Duration, status scan.Status) *scan.Result {
	var files, dirs, size int64
	for i := range entries {
		switch {
		case entries[i].IsFile:
			files++
			size += entries[i].Size
		case entries[i].IsDirectory:
			dirs++
		}
	}
	return &scan.Result{
		ScanID:             scanID,
		RootPath:           root,
		TotalFiles:         files,
		TotalDirectories:   dirs,
		TotalSize:          size,
		TotalSizeFormatted: scan.FormatBytes(size),
		Entries:            entries,
		EntriesSkipped:     skipped,
		DurationMs:         duration.Milliseconds(),
		CompletedAt:        scan.Timestamp(time.Now()),
		Status:             status,
	}
}
