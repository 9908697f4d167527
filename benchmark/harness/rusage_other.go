//go:build !unix

package harness

import "os"

// maxRSS is unavailable outside unix; rows report 0.
func maxRSS(state *os.ProcessState) int64 {
	return 0
}
