package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Execution captures the resource use of one successful command run.
type Execution struct {
	Seconds float64
	MaxRSS  int64
}

// An executeFunc runs a shell command in dir and reports its resource
// use. Tests substitute their own.
type executeFunc func(ctx context.Context, cmdline, dir string) (Execution, error)

// runShell executes cmdline through the shell, measuring wall time and
// the child's peak resident set size. Stdout is discarded; stderr is
// folded into the error on failure.
func runShell(ctx context.Context, cmdline, dir string) (Execution, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Execution{}, fmt.Errorf("%w: %s", err, msg)
		}
		return Execution{}, err
	}
	return Execution{
		Seconds: elapsed.Seconds(),
		MaxRSS:  maxRSS(cmd.ProcessState),
	}, nil
}
