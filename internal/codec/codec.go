// Package codec defines the block-compression capability applied to
// column files.
package codec

import (
	"context"
	"fmt"
	"strings"
)

// Level selects how hard a codec works on a column.
type Level int

const (
	// LevelDefault is the codec's standard effort.
	LevelDefault Level = iota
	// LevelBest favors ratio over speed. Sequence columns use it.
	LevelBest
)

// Hint carries per-invocation tuning. The zero value means
// single-threaded at default effort.
type Hint struct {
	// Threads is the concurrency hint forwarded to the compressor.
	// Zero or one means no internal parallelism.
	Threads int

	// Level selects the compression effort.
	Level Level
}

// Codec compresses and decompresses files, writing the result beside
// the input. The caller removes the consumed file after a successful
// call; the codec never does.
type Codec interface {
	// Compress writes path + "." + Extension() and returns the new path.
	Compress(ctx context.Context, path string, hint Hint) (string, error)

	// Decompress strips the extension from path, writes the plain file
	// beside it, and returns the new path.
	Decompress(ctx context.Context, path string) (string, error)

	// Extension returns the file extension without dot (e.g., "zst").
	Extension() string
}

// CommandError reports a failed external codec invocation. Output holds
// whatever the command wrote to stdout and stderr.
type CommandError struct {
	Op      string // "compress" or "decompress"
	Command string // the rendered command line
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("codec: %s command failed: %v", e.Op, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
