//go:build windows

package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// fileID identifies a directory for cycle detection while following
// symlinks. Windows has no cheap inode equivalent exposed through FileInfo,
// so the canonical resolved path stands in.
type fileID struct {
	path string
}

func identityOf(path string, info fs.FileInfo) (fileID, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileID{}, false
	}
	return fileID{path: strings.ToLower(resolved)}, true
}
