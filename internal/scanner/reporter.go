package scanner

import (
	"context"
	"time"

	"github.com/driftscan/driftscan/internal/scan"
)

// DefaultProgressInterval is the wall-clock emission period used when the
// engine config does not choose one.
const DefaultProgressInterval = 100 * time.Millisecond

// Reporter turns the walker's live counters into throttled Progress
// snapshots. Emission is decoupled from traversal speed: a snapshot goes out
// on a fixed timer tick or when the counters cross their entry threshold,
// whichever comes first, and intermediate counter states are coalesced.
type Reporter struct {
	scanID    string
	counters  *Counters
	estimator *Estimator // may be nil
	obs       scan.Observer
	interval  time.Duration
	started   time.Time

	lastFiles int64
	lastDirs  int64
	lastBytes int64
}

// NewReporter wires a reporter to one scan's counters. The reporter only
// reads the counters; it never mutates scan state.
func NewReporter(scanID string, counters *Counters, estimator *Estimator, obs scan.Observer, interval time.Duration, started time.Time) *Reporter {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &Reporter{
		scanID:    scanID,
		counters:  counters,
		estimator: estimator,
		obs:       obs,
		interval:  interval,
		started:   started,
	}
}

// Run emits snapshots until ctx is cancelled. The caller must wait for Run
// to return before emitting the terminal snapshot via Final, which keeps the
// stream free of progress events after the terminal one.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.counters.Kick():
		}
		r.emit(scan.StatusScanning, false)
	}
}

// Final emits the one terminal snapshot for the scan.
func (r *Reporter) Final(status scan.Status) {
	r.emit(status, true)
}

func (r *Reporter) emit(status scan.Status, force bool) {
	files := r.counters.Files()
	dirs := r.counters.Dirs()
	bytes := r.counters.Bytes()
	if !force && files == r.lastFiles && dirs == r.lastDirs && bytes == r.lastBytes {
		return
	}
	r.lastFiles, r.lastDirs, r.lastBytes = files, dirs, bytes

	p := scan.Progress{
		ScanID:                r.scanID,
		CurrentPath:           r.counters.CurrentPath(),
		FilesScanned:          files,
		DirectoriesScanned:    dirs,
		BytesScanned:          bytes,
		BytesScannedFormatted: scan.FormatBytes(bytes),
		EntriesSkipped:        r.counters.Skipped(),
		ElapsedMs:             time.Since(r.started).Milliseconds(),
		Status:                status,
	}

	if status == scan.StatusCompleted {
		pct := 100.0
		total := r.counters.Entries()
		p.ProgressPercent = &pct
		p.EstimatedTotal = &total
	} else if r.estimator != nil {
		if total, ok := r.estimator.Total(); ok && total > 0 {
			pct := float64(r.counters.Entries()) / float64(total) * 100
			// The estimate is best effort; never report a finished
			// scan before it is finished.
			if pct > 99.9 {
				pct = 99.9
			}
			p.ProgressPercent = &pct
			p.EstimatedTotal = &total
		}
	}

	r.obs.Progress(p)
}
