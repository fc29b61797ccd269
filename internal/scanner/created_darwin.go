//go:build darwin

package scanner

import (
	"io/fs"
	"syscall"
	"time"

	"github.com/driftscan/driftscan/internal/scan"
)

// createdTime returns the entry's creation timestamp in RFC 3339 form.
// macOS exposes the birth time directly on Stat_t.
func createdTime(info fs.FileInfo) string {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	ts := stat.Birthtimespec
	if ts.Sec == 0 && ts.Nsec == 0 {
		return ""
	}
	return scan.Timestamp(time.Unix(ts.Sec, ts.Nsec))
}
