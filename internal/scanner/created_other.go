//go:build !darwin && !windows

package scanner

import "io/fs"

// createdTime returns the entry's creation timestamp where the platform
// exposes one. Linux does not surface a birth time through Stat_t, so the
// field stays empty there.
func createdTime(info fs.FileInfo) string {
	return ""
}
