// Package util provides general utility functions.
package util

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// AbortThresholdPercent is the base of internal/shell/executor.go's pre-fork
// guard, which refuses a spawn once used RAM reaches this value plus 15
// percentage points.
const AbortThresholdPercent = 80

// MemoryInfo contains information about system memory.
type MemoryInfo struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedPercent    float64
}

// GetMemoryInfo returns information about system memory.
func GetMemoryInfo() (*MemoryInfo, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("get memory info: %w", err)
	}

	return &MemoryInfo{
		TotalBytes:     v.Total,
		AvailableBytes: v.Available,
		UsedPercent:    v.UsedPercent,
	}, nil
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
