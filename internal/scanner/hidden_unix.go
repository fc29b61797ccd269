//go:build !windows

package scanner

import "strings"

// isHidden reports whether an entry is hidden by platform convention.
// On Unix that is a name starting with a dot.
func isHidden(path, name string) bool {
	return strings.HasPrefix(name, ".")
}
