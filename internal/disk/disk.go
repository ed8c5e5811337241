package disk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned where volume statistics are unavailable
var ErrUnsupported = errors.New("disk usage not supported on this platform")

// PathStats contains size statistics about a filesystem object
type PathStats struct {
	UsedBytes int64 // Total bytes of regular files at or below the path
	FileCount int64 // Total number of regular files
	DirCount  int64 // Directories, including the path itself when it is one
}

// ScanPath measures path without following symlinks.
// A symlink counts as nothing; unreadable entries below the root are skipped.
func ScanPath(path string) (*PathStats, error) {
	root, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	stats := &PathStats{}
	if !root.IsDir() {
		if root.Mode().IsRegular() {
			stats.UsedBytes = root.Size()
			stats.FileCount = 1
		}
		return stats, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil // Skip errors
		}

		switch {
		case d.IsDir():
			stats.DirCount++
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return nil
			}
			stats.UsedBytes += info.Size()
			stats.FileCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
