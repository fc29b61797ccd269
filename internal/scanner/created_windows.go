//go:build windows

package scanner

import (
	"io/fs"
	"syscall"
	"time"

	"github.com/driftscan/driftscan/internal/scan"
)

// createdTime returns the entry's creation timestamp in RFC 3339 form.
func createdTime(info fs.FileInfo) string {
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return ""
	}
	return scan.Timestamp(time.Unix(0, attrs.CreationTime.Nanoseconds()))
}
