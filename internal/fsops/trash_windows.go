//go:build windows

package fsops

import (
	"fmt"
	"path/filepath"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

// From shellapi.h
const (
	foDelete = 0x0003

	fofSilent         = 0x0004
	fofNoConfirmation = 0x0010
	fofAllowUndo      = 0x0040
	fofNoConfirmMkdir = 0x0200
	fofNoErrorUI      = 0x0400

	recycleFlags = fofSilent | fofNoConfirmation | fofNoErrorUI | fofAllowUndo | fofNoConfirmMkdir
)

var (
	modShell32           = windows.NewLazySystemDLL("shell32.dll")
	procSHFileOperationW = modShell32.NewProc("SHFileOperationW")
)

// shFileOpStruct mirrors SHFILEOPSTRUCTW.
// shellapi.h packs this struct to 1 byte on 32-bit targets; the natural alignment below
// matches the 64-bit layout only.
type shFileOpStruct struct {
	Hwnd                 windows.HWND
	Func                 uint32
	From                 *uint16
	To                   *uint16
	Flags                uint16
	AnyOperationsAborted int32
	NameMappings         uintptr
	ProgressTitle        *uint16
}

// shellTrasher sends items to the Recycle Bin through SHFileOperationW
type shellTrasher struct{}

func newPlatformTrasher(Options) Trasher {
	return shellTrasher{}
}

// homeTrashDir is empty: the Recycle Bin is not a plain directory we manage
func homeTrashDir(string) (string, error) {
	return "", nil
}

func (shellTrasher) Trash(path string) (string, error) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		return "", fmt.Errorf("%w: SHFILEOPSTRUCTW layout on %s", ErrUnsupported, runtime.GOARCH)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	from, err := doubleNulUTF16(abs)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", abs, err)
	}
	if err := procSHFileOperationW.Find(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	op := shFileOpStruct{
		Func:  foDelete,
		From:  &from[0],
		Flags: recycleFlags,
	}
	r1, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	runtime.KeepAlive(from)

	if r1 != 0 {
		return "", &ShellError{Path: abs, Code: int(r1)}
	}
	if op.AnyOperationsAborted != 0 {
		return "", &ShellError{Path: abs, Code: int(windows.ERROR_CANCELLED)}
	}
	// The Recycle Bin does not expose the stored name
	return "", nil
}

// doubleNulUTF16 encodes p as a single-entry, double-NUL terminated path list
func doubleNulUTF16(p string) ([]uint16, error) {
	u, err := windows.UTF16FromString(p)
	if err != nil {
		return nil, err
	}
	return append(u, 0), nil
}
