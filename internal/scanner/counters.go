package scanner

import (
	"sync"
	"sync/atomic"
)

// Counters are the live running totals for one scan. The traversal worker
// owns the write side; the reporter and orchestrator only ever read, so no
// lock spans the whole scan state. Every counter is monotonic for the
// lifetime of the scan.
type Counters struct {
	files   atomic.Int64
	dirs    atomic.Int64
	bytes   atomic.Int64
	other   atomic.Int64 // symlinks and special files recorded as entries
	skipped atomic.Int64

	mu      sync.Mutex
	current string

	// Entry-threshold trigger for the reporter: every kickEvery processed
	// entries a token is dropped on the kick channel so a burst of small
	// files produces a snapshot before the next timer tick.
	kickEvery int64
	sinceKick atomic.Int64
	kick      chan struct{}
}

// NewCounters creates counters that signal the kick channel every kickEvery
// processed entries. kickEvery <= 0 disables the entry-threshold trigger.
func NewCounters(kickEvery int) *Counters {
	return &Counters{
		kickEvery: int64(kickEvery),
		kick:      make(chan struct{}, 1),
	}
}

// Kick returns the channel pulsed when the entry threshold is crossed.
func (c *Counters) Kick() <-chan struct{} {
	return c.kick
}

// AddFile records one scanned file of the given size.
func (c *Counters) AddFile(size int64) {
	c.files.Add(1)
	c.bytes.Add(size)
	c.bump()
}

// AddDir records one scanned directory.
func (c *Counters) AddDir() {
	c.dirs.Add(1)
	c.bump()
}

// AddOther records an entry that is neither a file nor a directory, such as
// a symlink that is not being followed.
func (c *Counters) AddOther() {
	c.other.Add(1)
	c.bump()
}

// AddSkipped records one entry that could not be read and was dropped from
// the entry sequence.
func (c *Counters) AddSkipped() {
	c.skipped.Add(1)
}

func (c *Counters) bump() {
	if c.kickEvery <= 0 {
		return
	}
	if c.sinceKick.Add(1) >= c.kickEvery {
		c.sinceKick.Store(0)
		select {
		case c.kick <- struct{}{}:
		default:
		}
	}
}

// SetCurrentPath records the directory currently being visited.
func (c *Counters) SetCurrentPath(p string) {
	c.mu.Lock()
	c.current = p
	c.mu.Unlock()
}

// CurrentPath returns the directory most recently entered by the walker.
func (c *Counters) CurrentPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Files returns the number of files scanned so far.
func (c *Counters) Files() int64 { return c.files.Load() }

// Dirs returns the number of directories scanned so far.
func (c *Counters) Dirs() int64 { return c.dirs.Load() }

// Bytes returns the total file bytes seen so far.
func (c *Counters) Bytes() int64 { return c.bytes.Load() }

// Skipped returns the number of unreadable entries dropped so far.
func (c *Counters) Skipped() int64 { return c.skipped.Load() }

// Entries returns the total number of entries recorded so far.
func (c *Counters) Entries() int64 {
	return c.files.Load() + c.dirs.Load() + c.other.Load()
}
