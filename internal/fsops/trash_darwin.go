//go:build darwin || ios

package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// finderTrasher moves items into ~/.Trash, or the volume's .Trashes/<uid>, the way Finder does
type finderTrasher struct {
	homeTrash string
	uid       int
}

func newPlatformTrasher(opts Options) Trasher {
	return &finderTrasher{homeTrash: opts.HomeTrash, uid: os.Getuid()}
}

func homeTrashDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home trash: %w", err)
	}
	return filepath.Join(home, ".Trash"), nil
}

func (t *finderTrasher) Trash(path string) (string, error) {
	target, _, err := resolveTarget(path)
	if err != nil {
		return "", err
	}

	trashDir, err := t.selectTrash(target)
	if err != nil {
		return "", err
	}

	base := filepath.Base(target)
	for n := 1; n <= maxNameAttempts; n++ {
		dst := filepath.Join(trashDir, numberedName(base, n, " "))
		err := unix.RenamexNp(target, dst, unix.RENAME_EXCL)
		if errors.Is(err, unix.EEXIST) {
			continue
		}
		if err != nil {
			return "", &os.LinkError{Op: "rename", Old: target, New: dst, Err: err}
		}
		return dst, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNameExhausted, base)
}

func (t *finderTrasher) selectTrash(target string) (string, error) {
	home, err := homeTrashDir(t.homeTrash)
	if err != nil {
		return "", err
	}
	if err := ensureTrashDir(home); err != nil {
		return "", fmt.Errorf("create home trash: %w", err)
	}

	parent := filepath.Dir(target)
	same, err := sameDevice(parent, home)
	if err != nil {
		return "", err
	}
	if same {
		return home, nil
	}

	topdir, err := mountTop(parent)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(topdir, ".Trashes", strconv.Itoa(t.uid))
	if err := ensureTrashDir(dir); err != nil {
		return "", fmt.Errorf("create volume trash: %w", err)
	}
	return dir, nil
}
