package scan

import "errors"

// Validation errors, surfaced synchronously at request time. No scan
// identifier is allocated when one of these is returned.
var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrNotADirectory = errors.New("not a directory")
	ErrAccessDenied  = errors.New("access denied")
)

// ErrTooManyScans is returned by Start when the engine is already running
// its configured maximum number of concurrent scans.
var ErrTooManyScans = errors.New("too many concurrent scans")

// ErrCancelled is the sentinel a traversal returns when it observed the
// cancellation flag. Cancellation is a normal terminal outcome, not a fault;
// the entries gathered up to that point remain valid.
var ErrCancelled = errors.New("scan cancelled")
