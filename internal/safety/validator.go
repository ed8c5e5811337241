package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProtectedPath = errors.New("protected path")
)

// Validator enforces the safety contract for trash operations
type Validator struct {
	MaxPathBytes   int
	ProtectedPaths []string
}

// NewValidator creates a validator with a path length bound and the given protected paths.
// Protected paths match exactly: trashing something inside a protected directory is allowed,
// trashing the directory itself is not. "/" is always protected.
func NewValidator(maxPathBytes int, protected []string) *Validator {
	return &Validator{
		MaxPathBytes:   maxPathBytes,
		ProtectedPaths: normalizeRoots(protected),
	}
}

// ExceedsLength reports whether path is longer than maxBytes bytes.
// A non-positive bound disables the check.
func ExceedsLength(path string, maxBytes int) bool {
	return maxBytes > 0 && len(path) > maxBytes
}

// TooLong reports whether path exceeds the validator's byte bound.
// An oversized path is skipped rather than refused.
func (v *Validator) TooLong(path string) bool {
	return ExceedsLength(path, v.MaxPathBytes)
}

// ValidateTrashTarget is the single-source-of-truth for trash authorization
func (v *Validator) ValidateTrashTarget(path string) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	if IsProtectedPath(p, v.ProtectedPaths) {
		return ErrProtectedPath
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	if strings.ContainsRune(path, 0) {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// IsProtectedPath checks if path is a volume root or one of the protected paths
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	if isVolumeRoot(p) {
		return true
	}

	for _, prot := range protected {
		if samePath(p, filepath.Clean(prot)) {
			return true
		}
	}
	return false
}

// isVolumeRoot matches "/" and, on Windows, drive roots like `C:\`
func isVolumeRoot(p string) bool {
	if p == string(os.PathSeparator) {
		return true
	}
	vol := filepath.VolumeName(p)
	return vol != "" && (p == vol || p == vol+string(os.PathSeparator))
}

func samePath(a, b string) bool {
	if os.PathSeparator == '\\' {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// normalizeRoots converts slice of paths to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}

// DefaultProtected returns the base set of protected paths plus any extras.
// The user's home directory is always included.
func DefaultProtected(extra ...string) []string {
	var base []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		base = append(base, home)
	}
	return append(base, extra...)
}
