// Package session tracks in-flight and recently terminal scans. The registry
// is the one structure shared between a scan's own goroutines and external
// callers, so all access goes through its lock; the per-session cancel flag
// is an atomic so traversal workers can poll it without contention.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/driftscan/driftscan/internal/scan"
)

// Session is the lifecycle record for one scan.
type Session struct {
	ID        string
	RootPath  string
	StartedAt time.Time

	cancelled atomic.Bool

	mu     sync.Mutex
	status scan.Status
}

// Status returns the session's current lifecycle state.
func (s *Session) Status() scan.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus records a lifecycle transition. Terminal states are sticky:
// once reached, further transitions are ignored.
func (s *Session) SetStatus(st scan.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = st
}

// IsCancelled reports whether cancellation has been requested. Workers poll
// this between directories; observing it promptly is cooperative, not
// guaranteed beyond one directory's worth of in-flight entries.
func (s *Session) IsCancelled() bool {
	return s.cancelled.Load()
}

func (s *Session) cancel() {
	s.cancelled.Store(true)
}

// Registry maps scan identifiers to live sessions.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	retention time.Duration
}

// NewRegistry creates an empty registry. Terminal sessions scheduled for
// removal linger for the retention window so late status queries still
// resolve.
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		retention: retention,
	}
}

// Register creates a session for a scan of rootPath and returns it. The
// caller owns the lifecycle transitions; the registry only stores the record.
func (r *Registry) Register(rootPath string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		RootPath:  rootPath,
		StartedAt: time.Now(),
		status:    scan.StatusScanning,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session for id, or nil if unknown.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Cancel requests cancellation of the scan with the given id. It returns
// false when the id is unknown or the scan has already reached a terminal
// state.
func (r *Registry) Cancel(id string) bool {
	s := r.Get(id)
	if s == nil || s.Status().Terminal() {
		return false
	}
	s.cancel()
	return true
}

// Remove drops a session immediately.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// RemoveAfterRetention schedules removal of a terminal session once the
// retention window elapses. With a zero retention the session is removed
// immediately.
func (r *Registry) RemoveAfterRetention(id string) {
	if r.retention <= 0 {
		r.Remove(id)
		return
	}
	time.AfterFunc(r.retention, func() { r.Remove(id) })
}

// Len returns the number of tracked sessions, terminal ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ActiveCount returns the number of sessions still in the scanning state.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	n := 0
	for _, s := range sessions {
		if s.Status() == scan.StatusScanning {
			n++
		}
	}
	return n
}
