package fsops

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrUnsupported is returned on platforms without a known trash facility
	ErrUnsupported = errors.New("trash is not supported on this platform")

	// ErrNameExhausted is returned when every candidate name in the trash is taken
	ErrNameExhausted = errors.New("no free name in trash")
)

// Trasher abstracts the OS trash facility.
// Trash moves path to the trash and returns where it ended up, when the platform exposes that.
// Enables mocking in tests to prove dry-run never trashes.
type Trasher interface {
	Trash(path string) (string, error)
}

// ShellError carries the result code of a failed Windows shell file operation
type ShellError struct {
	Path string
	Code int
}

func (e *ShellError) Error() string {
	return fmt.Sprintf("shell file operation on %s failed with code %#x", e.Path, e.Code)
}

// ExitCode makes the shell's result code the process exit status
func (e *ShellError) ExitCode() int {
	return e.Code
}

// Is maps the shell's not-found codes onto fs.ErrNotExist
func (e *ShellError) Is(target error) bool {
	if target != fs.ErrNotExist {
		return false
	}
	switch e.Code {
	case 0x02, 0x03, 0x7C: // ERROR_FILE_NOT_FOUND, ERROR_PATH_NOT_FOUND, DE_INVALIDFILES
		return true
	}
	return false
}

// ObjectType names the kind of filesystem object described by fi
func ObjectType(fi fs.FileInfo) string {
	switch {
	case fi == nil:
		return "unknown"
	case fi.Mode()&fs.ModeSymlink != 0:
		return "symlink"
	case fi.IsDir():
		return "directory"
	default:
		return "file"
	}
}
