//go:build windows

package disk

import (
	"golang.org/x/sys/windows"
)

// GetDiskUsage returns the percentage of disk space used for a given path
func GetDiskUsage(path string) (usedPercent float64, freeBytes int64, totalBytes int64, err error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, 0, err
	}

	var available, total, totalFree uint64
	if err = windows.GetDiskFreeSpaceEx(p, &available, &total, &totalFree); err != nil {
		return 0, 0, 0, err
	}

	totalBytes = int64(total)
	freeBytes = int64(available)
	if totalBytes > 0 {
		usedPercent = (float64(totalBytes-freeBytes) / float64(totalBytes)) * 100.0
	}
	return usedPercent, freeBytes, totalBytes, nil
}
