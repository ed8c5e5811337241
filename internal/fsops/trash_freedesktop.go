//go:build unix && !darwin && !ios

package fsops

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// trashInfoTimeFormat is the DeletionDate layout of .trashinfo files (local time, no zone)
const trashInfoTimeFormat = "2006-01-02T15:04:05"

// freedesktopTrasher implements the XDG trash specification
type freedesktopTrasher struct {
	homeTrash string
	now       func() time.Time
	uid       int
}

func newPlatformTrasher(opts Options) Trasher {
	return &freedesktopTrasher{
		homeTrash: opts.HomeTrash,
		now:       opts.Now,
		uid:       os.Getuid(),
	}
}

// homeTrashDir returns $XDG_DATA_HOME/Trash, falling back to ~/.local/share/Trash
func homeTrashDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, "Trash"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home trash: %w", err)
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}

func (t *freedesktopTrasher) Trash(path string) (string, error) {
	target, _, err := resolveTarget(path)
	if err != nil {
		return "", err
	}

	trashDir, recorded, err := t.selectTrash(target)
	if err != nil {
		return "", err
	}
	return t.moveInto(trashDir, target, recorded)
}

// selectTrash picks the home trash when target shares its device, otherwise the trash
// at the top of target's mount. recorded is the Path= value for the .trashinfo file.
func (t *freedesktopTrasher) selectTrash(target string) (trashDir, recorded string, err error) {
	home, err := homeTrashDir(t.homeTrash)
	if err != nil {
		return "", "", err
	}
	if err := ensureTrashDir(home, "files", "info"); err != nil {
		return "", "", fmt.Errorf("create home trash: %w", err)
	}

	parent := filepath.Dir(target)
	same, err := sameDevice(parent, home)
	if err != nil {
		return "", "", err
	}
	if same {
		return home, target, nil
	}

	topdir, err := mountTop(parent)
	if err != nil {
		return "", "", err
	}
	trashDir, err = t.topdirTrash(topdir)
	if err != nil {
		return "", "", err
	}
	rel, err := filepath.Rel(topdir, target)
	if err != nil {
		return "", "", err
	}
	return trashDir, rel, nil
}

// topdirTrash returns $topdir/.Trash/$uid when $topdir/.Trash is a sticky directory,
// otherwise $topdir/.Trash-$uid
func (t *freedesktopTrasher) topdirTrash(topdir string) (string, error) {
	uid := strconv.Itoa(t.uid)

	shared := filepath.Join(topdir, ".Trash")
	if fi, err := os.Lstat(shared); err == nil && fi.IsDir() && fi.Mode()&fs.ModeSticky != 0 {
		dir := filepath.Join(shared, uid)
		if err := ensureTrashDir(dir, "files", "info"); err == nil {
			return dir, nil
		}
	}

	dir := filepath.Join(topdir, ".Trash-"+uid)
	if fi, err := os.Lstat(dir); err == nil && !fi.IsDir() {
		return "", fmt.Errorf("volume trash %s is not a directory", dir)
	}
	if err := ensureTrashDir(dir, "files", "info"); err != nil {
		return "", fmt.Errorf("create volume trash: %w", err)
	}
	return dir, nil
}

// moveInto reserves a name by creating its .trashinfo exclusively, then renames src into files/
func (t *freedesktopTrasher) moveInto(trashDir, src, recorded string) (string, error) {
	base := filepath.Base(src)
	info := trashInfo(recorded, t.now())

	for n := 1; n <= maxNameAttempts; n++ {
		name := numberedName(base, n, ".")
		infoPath := filepath.Join(trashDir, "info", name+".trashinfo")

		f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create trash info: %w", err)
		}
		_, werr := f.WriteString(info)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = os.Remove(infoPath)
			return "", fmt.Errorf("write trash info: %w", werr)
		}

		dst := filepath.Join(trashDir, "files", name)
		if _, err := os.Lstat(dst); err == nil {
			// Orphan in files/ without info
			_ = os.Remove(infoPath)
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			_ = os.Remove(infoPath)
			return "", err
		}
		return dst, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNameExhausted, base)
}

func trashInfo(recorded string, deletedAt time.Time) string {
	return "[Trash Info]\n" +
		"Path=" + escapeTrashPath(recorded) + "\n" +
		"DeletionDate=" + deletedAt.Format(trashInfoTimeFormat) + "\n"
}

// escapeTrashPath percent-encodes p the way URL paths are encoded, keeping slashes
func escapeTrashPath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
