package dataset

import (
	"fmt"
	"path"
	"time"
)

// Progress reports the state of a fetch in flight.
type Progress struct {
	File         string
	BytesFetched int64
	BytesTotal   int64
}

// ProgressFunc is called periodically with progress updates.
// BytesTotal is -1 when the source does not report a size.
type ProgressFunc func(Progress)

// FormatBytes formats bytes as human-readable string.
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

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	name := path.Base(p.File)
	if p.BytesTotal > 0 {
		pct := float64(p.BytesFetched) / float64(p.BytesTotal) * 100
		fmt.Printf("\r[Fetch] %s: %s / %s (%.1f%%)",
			name, FormatBytes(p.BytesFetched), FormatBytes(p.BytesTotal), pct)
		return
	}
	fmt.Printf("\r[Fetch] %s: %s", name, FormatBytes(p.BytesFetched))
}
