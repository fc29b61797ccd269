//go:build windows

package scanner

import (
	"strings"

	"golang.org/x/sys/windows"
)

// isHidden reports whether an entry is hidden by platform convention.
// On Windows that is the hidden file attribute; dot-prefixed names are also
// treated as hidden for parity with tools ported from Unix.
func isHidden(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
