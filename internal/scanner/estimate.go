package scanner

import (
	"context"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Estimator races ahead of the full traversal with a lightweight parallel
// count of the tree so progress snapshots can carry a percent estimate. The
// count is best effort: it never follows symlinks, ignores depth limits, and
// a failure simply leaves the estimate unavailable. It has no effect on the
// scan itself.
type Estimator struct {
	total atomic.Int64
	done  atomic.Bool
}

// Run counts entries under root until the walk finishes or ctx is cancelled.
// It is meant to be called on its own goroutine.
func (e *Estimator) Run(ctx context.Context, root string, includeHidden bool) {
	conf := &fastwalk.Config{Follow: false}
	_ = fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || path == root {
			return nil
		}
		if !includeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		e.total.Add(1)
		return nil
	})
	if ctx.Err() == nil {
		e.done.Store(true)
	}
}

// Total returns the estimated entry count and whether the pre-pass has
// finished. Until it has, callers should treat the total as unknown.
func (e *Estimator) Total() (int64, bool) {
	return e.total.Load(), e.done.Load()
}
