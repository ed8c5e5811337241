//go:build unix

package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// deviceOf returns the device id of the filesystem holding path, following symlinks
func deviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return uint64(st.Dev), nil
}

// sameDevice reports whether a and b live on the same filesystem
func sameDevice(a, b string) (bool, error) {
	da, err := deviceOf(a)
	if err != nil {
		return false, err
	}
	db, err := deviceOf(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

// mountTop walks up from dir to the top directory of its mount
func mountTop(dir string) (string, error) {
	dev, err := deviceOf(dir)
	if err != nil {
		return "", err
	}
	cur := dir
	for {
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur, nil
		}
		pdev, err := deviceOf(parent)
		if err != nil {
			return "", err
		}
		if pdev != dev {
			return cur, nil
		}
		cur = parent
	}
}

// resolveTarget makes path absolute and resolves symlinks in its parent, never in the item itself.
// The item must exist.
func resolveTarget(path string) (string, os.FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fi, err := os.Lstat(abs)
	if err != nil {
		return "", nil, err
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", nil, err
	}
	return filepath.Join(parent, filepath.Base(abs)), fi, nil
}

// ensureTrashDir creates dir (and the given subdirectories) with owner-only permissions
func ensureTrashDir(dir string, subdirs ...string) error {
	if len(subdirs) == 0 {
		return os.MkdirAll(dir, 0o700)
	}
	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o700); err != nil {
			return err
		}
	}
	return nil
}
