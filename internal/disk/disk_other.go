//go:build !(linux || darwin || freebsd || windows)

package disk

// GetDiskUsage returns the percentage of disk space used for a given path
func GetDiskUsage(string) (float64, int64, int64, error) {
	return 0, 0, 0, ErrUnsupported
}
