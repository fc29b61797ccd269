package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Validator checks candidate scan roots before any scan state is created.
// When sandbox roots are configured, every validated path must resolve to a
// location inside one of them.
type Validator struct {
	sandbox []string // canonicalized, empty = unrestricted
}

// NewValidator builds a Validator for the given sandbox roots. Roots that
// cannot be canonicalized are kept as cleaned absolute paths so a
// misconfigured sandbox fails closed rather than silently widening.
func NewValidator(sandboxRoots []string) *Validator {
	v := &Validator{}
	for _, root := range sandboxRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		v.sandbox = append(v.sandbox, abs)
	}
	return v
}

// Validate canonicalizes path and confirms it names an accessible directory
// inside the sandbox. It fails with ErrInvalidPath, ErrNotADirectory or
// ErrAccessDenied and has no side effects; symlink components of the root
// itself are resolved here regardless of the traversal's follow-symlinks
// setting.
func (v *Validator) Validate(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", classifyStatErr(err, abs)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", classifyStatErr(err, resolved)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, resolved)
	}
	if !v.inSandbox(resolved) {
		return "", fmt.Errorf("%w: %s is outside the sandbox", ErrAccessDenied, resolved)
	}
	return resolved, nil
}

func (v *Validator) inSandbox(path string) bool {
	if len(v.sandbox) == 0 {
		return true
	}
	for _, root := range v.sandbox {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func classifyStatErr(err error, path string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrAccessDenied, path)
	default:
		return fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
}
