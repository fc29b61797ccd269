// Package scanner implements the traversal worker and its supporting pieces:
// live counters, the throttled progress reporter and the optional total-count
// estimator. One Walker serves exactly one scan.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/driftscan/driftscan/internal/logging"
	"github.com/driftscan/driftscan/internal/scan"
)

// DefaultConcurrency bounds the fan-out across sibling subdirectories when
// the caller does not choose one. It caps open descriptors on wide trees.
const DefaultConcurrency = 8

// Config controls one traversal.
type Config struct {
	MaxDepth       int // 0 = unbounded
	IncludeHidden  bool
	FollowSymlinks bool
	Concurrency    int
}

// Walker performs the depth-first traversal of one scan. Sibling
// subdirectories are walked concurrently up to the configured bound, but the
// returned entry sequence is deterministic: within every directory entries
// appear in case-sensitive byte order of their names, each directory
// immediately followed by its own subtree.
type Walker struct {
	root      string
	cfg       Config
	counters  *Counters
	cancelled func() bool
	sem       *semaphore.Weighted
}

// NewWalker builds a walker for the validated root. cancelled is polled at
// the start of each directory; it may be nil.
func NewWalker(root string, cfg Config, counters *Counters, cancelled func() bool) *Walker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}
	return &Walker{
		root:      root,
		cfg:       cfg,
		counters:  counters,
		cancelled: cancelled,
		sem:       semaphore.NewWeighted(int64(cfg.Concurrency)),
	}
}

// Run walks the tree and returns the ordered entry sequence. A return error
// of scan.ErrCancelled means cancellation was observed; the entries gathered
// up to that point are still valid. Any other error is a top-level fault
// (the root itself could not be read).
func (w *Walker) Run(ctx context.Context) ([]scan.FileEntry, error) {
	var ancestors []fileID
	if w.cfg.FollowSymlinks {
		if info, err := os.Stat(w.root); err == nil {
			if id, ok := identityOf(w.root, info); ok {
				ancestors = []fileID{id}
			}
		}
	}
	entries, _, err := w.walkDir(ctx, w.root, 1, ancestors)
	return entries, err
}

func (w *Walker) stopped(ctx context.Context) bool {
	return ctx.Err() != nil || w.cancelled()
}

// child is the per-entry staging record used to stitch concurrent subtree
// results back into deterministic order.
type child struct {
	entry   scan.FileEntry
	path    string
	descend bool
	parents []fileID

	sub    []scan.FileEntry
	direct int // direct children recorded, -1 = unknown
	err    error
}

// walkDir processes one directory whose children live at the given depth.
// It returns the subtree's entries in final order and the number of direct
// children recorded, or -1 when the directory could not be listed.
func (w *Walker) walkDir(ctx context.Context, dir string, depth int, ancestors []fileID) ([]scan.FileEntry, int, error) {
	// Cancellation is checked once per directory, bounding cancellation
	// latency to one directory's worth of in-flight entries.
	if w.stopped(ctx) {
		return nil, -1, scan.ErrCancelled
	}
	w.counters.SetCurrentPath(dir)

	dirents, err := os.ReadDir(dir)
	if err != nil {
		if depth == 1 {
			return nil, -1, fmt.Errorf("reading scan root: %w", err)
		}
		// Unreadable subtree: skip it, keep scanning siblings.
		logging.Walker.Printf("skipping unreadable directory %s: %v", dir, err)
		w.counters.AddSkipped()
		return nil, -1, nil
	}

	// os.ReadDir returns entries sorted by name in byte order, which is
	// exactly the ordering the final sequence requires.
	children := make([]*child, 0, len(dirents))
	for _, de := range dirents {
		if c := w.visit(dir, de, depth, ancestors); c != nil {
			children = append(children, c)
		}
	}

	// Fan out across sibling subdirectories. When the semaphore is
	// saturated the recursion runs inline on this goroutine, so a deep
	// chain of directories can never deadlock on its own limit.
	var wg sync.WaitGroup
	for _, c := range children {
		if !c.descend {
			continue
		}
		if w.sem.TryAcquire(1) {
			wg.Add(1)
			go func(c *child) {
				defer wg.Done()
				defer w.sem.Release(1)
				c.sub, c.direct, c.err = w.walkDir(ctx, c.path, depth+1, c.parents)
			}(c)
		} else {
			c.sub, c.direct, c.err = w.walkDir(ctx, c.path, depth+1, c.parents)
		}
	}
	wg.Wait()

	var out []scan.FileEntry
	var failed error
	for _, c := range children {
		if c.descend && c.direct >= 0 {
			n := int64(c.direct)
			c.entry.ChildrenCount = &n
		}
		out = append(out, c.entry)
		out = append(out, c.sub...)
		if c.err != nil {
			failed = c.err
		}
	}
	return out, len(children), failed
}

// visit stats one directory entry and builds its FileEntry. It returns nil
// when the entry is excluded (hidden) or unreadable (counted as skipped).
func (w *Walker) visit(dir string, de fs.DirEntry, depth int, ancestors []fileID) *child {
	name := de.Name()
	full := filepath.Join(dir, name)
	if !w.cfg.IncludeHidden && isHidden(full, name) {
		return nil
	}

	info, err := de.Info()
	if err != nil {
		// Raced with deletion, or the entry cannot be stat'ed.
		w.counters.AddSkipped()
		return nil
	}

	isLink := info.Mode()&fs.ModeSymlink != 0
	isDir := info.IsDir()
	isFile := info.Mode().IsRegular()
	var size int64
	parents := ancestors

	if isLink && w.cfg.FollowSymlinks {
		target, err := os.Stat(full)
		if err != nil {
			// Broken symlink target.
			w.counters.AddSkipped()
			return nil
		}
		isDir = target.IsDir()
		isFile = target.Mode().IsRegular()
		if isFile {
			size = target.Size()
		}
		if isDir {
			id, ok := identityOf(full, target)
			if ok && containsID(ancestors, id) {
				// Symlink cycle: fail this branch only.
				logging.Walker.Printf("symlink cycle at %s", full)
				w.counters.AddSkipped()
				return nil
			}
			if ok {
				parents = appendID(ancestors, id)
			}
		}
	} else if isFile {
		size = info.Size()
	} else if isDir && w.cfg.FollowSymlinks {
		// Plain directories join the cycle guard too, so a link back
		// to any ancestor is caught on first sight.
		if id, ok := identityOf(full, info); ok {
			parents = appendID(ancestors, id)
		}
	}

	c := &child{
		entry: scan.FileEntry{
			ID:            uuid.NewString(),
			Name:          name,
			Path:          full,
			Size:          size,
			SizeFormatted: scan.FormatBytes(size),
			IsDirectory:   isDir,
			IsFile:        isFile,
			IsSymlink:     isLink,
			Extension:     extensionOf(name, isFile),
			Modified:      scan.Timestamp(info.ModTime()),
			Created:       createdTime(info),
			Depth:         depth,
		},
		path:    full,
		parents: parents,
	}

	switch {
	case isFile:
		w.counters.AddFile(size)
	case isDir:
		w.counters.AddDir()
	default:
		w.counters.AddOther()
	}

	if isDir {
		if w.cfg.MaxDepth > 0 && depth >= w.cfg.MaxDepth {
			// Depth limit: record the directory, leave its child
			// count unknown, do not descend.
			c.direct = -1
		} else {
			c.descend = true
		}
	} else {
		c.direct = -1
	}
	return c
}

func extensionOf(name string, isFile bool) string {
	if !isFile {
		return ""
	}
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

func containsID(ids []fileID, id fileID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// appendID copies before appending: sibling branches each get their own
// ancestor set, scoped to the current traversal path.
func appendID(ids []fileID, id fileID) []fileID {
	out := make([]fileID, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}
