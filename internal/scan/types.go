package scan

import "time"

// Status is the lifecycle state of a scan. The string values are the wire
// representation used in event payloads.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusScanning  Status = "scanning"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusError
}

// Request describes one scan. Immutable once submitted.
type Request struct {
	Path           string `json:"path"`
	MaxDepth       int    `json:"maxDepth,omitempty"` // 0 = unbounded
	IncludeHidden  bool   `json:"includeHidden"`
	FollowSymlinks bool   `json:"followSymlinks"`
}

// FileEntry is one filesystem object discovered during a scan. The ID is an
// opaque random identifier; observers holding an entry ID learn nothing about
// filesystem layout without consulting the entry's own Path field.
type FileEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	Size          int64  `json:"size"` // 0 for directories
	SizeFormatted string `json:"sizeFormatted"`
	IsDirectory   bool   `json:"isDirectory"`
	IsFile        bool   `json:"isFile"`
	IsSymlink     bool   `json:"isSymlink"`
	Extension     string `json:"extension,omitempty"`
	Modified      string `json:"modified,omitempty"` // RFC 3339
	Created       string `json:"created,omitempty"`  // RFC 3339, platform permitting

	// Depth is the number of directory levels below the scan root;
	// the root's direct children have depth 1.
	Depth int `json:"depth"`

	// ChildrenCount is the number of direct children recorded for a
	// directory, nil when unknown (depth-limited or unreadable) and for
	// non-directories.
	ChildrenCount *int64 `json:"childrenCount"`
}

// Progress is a point-in-time snapshot of a running scan. Snapshots are
// superseded by each newer snapshot; counters never decrease between
// consecutive snapshots of the same scan.
type Progress struct {
	ScanID                string   `json:"scanId"`
	CurrentPath           string   `json:"currentPath"`
	FilesScanned          int64    `json:"filesScanned"`
	DirectoriesScanned    int64    `json:"directoriesScanned"`
	BytesScanned          int64    `json:"bytesScanned"`
	BytesScannedFormatted string   `json:"bytesScannedFormatted"`
	EntriesSkipped        int64    `json:"entriesSkipped"`
	ProgressPercent       *float64 `json:"progressPercent,omitempty"` // best effort, absent while the total is unknown
	EstimatedTotal        *int64   `json:"estimatedTotal,omitempty"`
	ElapsedMs             int64    `json:"elapsedMs"`
	Status                Status   `json:"status"`
}

// Result is the terminal artifact of a scan. Totals are derived from the
// entry sequence itself: TotalSize is the sum of Size over file entries,
// TotalFiles and TotalDirectories count entries with the matching flag.
type Result struct {
	ScanID             string      `json:"scanId"`
	RootPath           string      `json:"rootPath"`
	TotalFiles         int64       `json:"totalFiles"`
	TotalDirectories   int64       `json:"totalDirectories"`
	TotalSize          int64       `json:"totalSize"`
	TotalSizeFormatted string      `json:"totalSizeFormatted"`
	Entries            []FileEntry `json:"entries"`
	EntriesSkipped     int64       `json:"entriesSkipped"`
	DurationMs         int64       `json:"durationMs"`
	CompletedAt        string      `json:"completedAt"` // RFC 3339
	Status             Status      `json:"status"`
}

// Heartbeat is the liveness payload returned by the engine's health check.
type Heartbeat struct {
	Status      string `json:"status"`
	UptimeMs    int64  `json:"uptimeMs"`
	ActiveScans int    `json:"activeScans"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
}

// Observer receives the event stream for scans it was registered with. The
// engine assumes nothing about the transport behind an Observer; callbacks
// must not block for long, as they are invoked from the scan's own
// goroutines. For any accepted scan, exactly one of Completed or Failed is
// invoked, never both.
type Observer interface {
	// Progress delivers a throttled snapshot of a running scan.
	Progress(p Progress)

	// Completed delivers the terminal result of a scan that finished or
	// was cancelled. The observer owns the result after delivery.
	Completed(r *Result)

	// Failed reports a scan that hit an unrecoverable top-level fault.
	Failed(scanID string, err error)
}

// NopObserver discards all events.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) Progress(Progress)    {}
func (NopObserver) Completed(*Result)    {}
func (NopObserver) Failed(string, error) {}

// Timestamp renders t in the RFC 3339 form used across all payloads.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
