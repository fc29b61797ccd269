//go:build !windows

package scanner

import (
	"io/fs"
	"syscall"
)

// fileID identifies a directory for cycle detection while following
// symlinks. On Unix the device and inode pair is stable and cheap.
type fileID struct {
	dev uint64
	ino uint64
}

func identityOf(path string, info fs.FileInfo) (fileID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}
	return fileID{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
