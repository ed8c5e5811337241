package disk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestScanPathFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.bin")
	if err := os.WriteFile(file, make([]byte, 1500), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	stats, err := ScanPath(file)
	if err != nil {
		t.Fatalf("ScanPath failed: %v", err)
	}
	if stats.UsedBytes != 1500 || stats.FileCount != 1 || stats.DirCount != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestScanPathDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	files := map[string]int{
		"a.txt":         100,
		"sub/b.txt":     200,
		"sub/deep/c.go": 300,
	}
	for name, size := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, make([]byte, size), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if runtime.GOOS != "windows" {
		// Symlinks are not followed
		if err := os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "loop")); err != nil {
			t.Fatalf("symlink: %v", err)
		}
	}

	stats, err := ScanPath(root)
	if err != nil {
		t.Fatalf("ScanPath failed: %v", err)
	}
	if stats.UsedBytes != 600 {
		t.Errorf("UsedBytes = %d, expected 600", stats.UsedBytes)
	}
	if stats.FileCount != 3 {
		t.Errorf("FileCount = %d, expected 3", stats.FileCount)
	}
	if stats.DirCount != 3 {
		t.Errorf("DirCount = %d, expected 3", stats.DirCount)
	}
}

func TestScanPathMissing(t *testing.T) {
	if _, err := ScanPath(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestGetDiskUsage(t *testing.T) {
	used, free, total, err := GetDiskUsage(t.TempDir())
	if err == ErrUnsupported {
		t.Skip("disk usage unsupported")
	}
	if err != nil {
		t.Fatalf("GetDiskUsage failed: %v", err)
	}
	if total <= 0 || free < 0 || free > total {
		t.Errorf("implausible sizes free=%d total=%d", free, total)
	}
	if used < 0 || used > 100 {
		t.Errorf("usedPercent = %f out of range", used)
	}
}
