package fsops

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// maxNameAttempts bounds the search for a free name inside a trash directory
const maxNameAttempts = 10000

// Options configures the OS trasher
type Options struct {
	HomeTrash string           // Overrides the per-user trash directory (ignored on Windows)
	Now       func() time.Time // Clock for deletion timestamps
}

// NewOSTrasher returns the trash facility of the running platform
func NewOSTrasher(opts Options) Trasher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return newPlatformTrasher(opts)
}

// TrashDirs lists the per-user trash directories, which must never be trashed themselves
func TrashDirs(opts Options) []string {
	dir, err := homeTrashDir(opts.HomeTrash)
	if err != nil || dir == "" {
		return nil
	}
	return []string{dir}
}

// numberedName returns base for n <= 1 and otherwise inserts sep+n before the extension:
// numberedName("a.txt", 2, ".") == "a.2.txt", numberedName(".bashrc", 3, " ") == ".bashrc 3"
func numberedName(base string, n int, sep string) string {
	if n <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	return stem + sep + strconv.Itoa(n) + ext
}
