//go:build unix

package harness

import (
	"os"
	"runtime"
	"syscall"
)

// maxRSS extracts the peak resident set size of a finished child in
// bytes. The kernel reports kilobytes on Linux and the BSDs, bytes on
// Darwin.
func maxRSS(state *os.ProcessState) int64 {
	ru, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	rss := int64(ru.Maxrss)
	if runtime.GOOS != "darwin" {
		rss *= 1024
	}
	return rss
}
