// Package pathguard validates filesystem paths and payload sizes before the
// snapshot store touches disk. Every write and mkdir inside the store runs
// through ValidateSafePath first.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPathOutsideRoot indicates the target resolves outside the allowed root.
	ErrPathOutsideRoot = errors.New("path escapes allowed root")

	// ErrPathIsSymlink indicates the target or its parent directory is a symbolic link.
	ErrPathIsSymlink = errors.New("path is a symbolic link")

	// ErrPathIrregular indicates an existing target is neither a regular file nor a directory.
	ErrPathIrregular = errors.New("path is not a regular file or directory")

	// ErrEmptyIdentifier indicates an identifier sanitized down to nothing.
	ErrEmptyIdentifier = errors.New("identifier is empty after sanitization")
)

// ValidateSafePath checks that targetPath lies under allowedRoot and is not
// reachable through a symbolic link. A non-existent target is fine (first-time
// writes); an existing target must be a regular file or a directory.
func ValidateSafePath(targetPath, allowedRoot string) error {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return fmt.Errorf("failed to resolve target path %q: %w", targetPath, err)
	}

	absRoot, err := filepath.Abs(allowedRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path %q: %w", allowedRoot, err)
	}

	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q is not under %q", ErrPathOutsideRoot, targetPath, allowedRoot)
	}

	info, err := os.Lstat(absTarget)
	if err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %q", ErrPathIsSymlink, targetPath)
		}

		if !info.Mode().IsRegular() && !info.IsDir() {
			return fmt.Errorf("%w: %q", ErrPathIrregular, targetPath)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %q: %w", targetPath, err)
	}

	parent := filepath.Dir(absTarget)

	parentInfo, err := os.Lstat(parent)
	if err == nil && parentInfo.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: parent of %q", ErrPathIsSymlink, targetPath)
	}

	return nil
}

// SanitizeIdentifier maps an arbitrary identifier onto the restrictive charset
// [A-Za-z0-9_-], replacing everything else with '_'. This neutralizes path
// injection through workflow ids before they become directory names.
func SanitizeIdentifier(id string) (string, error) {
	var b strings.Builder

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyIdentifier, id)
	}

	return sanitized, nil
}
