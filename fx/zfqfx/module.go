// Package zfqfx provides an fx module for a FASTQ archiver.
package zfqfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/seqarc/zfq"
	"github.com/seqarc/zfq/internal/stats"
	"github.com/seqarc/zfq/internal/stats/logger"
)

// Config holds configuration for the archiver.
type Config struct {
	// Threads is the zstd worker count. Default is 1.
	Threads int

	// SkipVerify disables round-trip verification.
	SkipVerify bool

	// WorkspaceRoot is the directory intermediate files are staged
	// under. Empty means beside each destination file.
	WorkspaceRoot string
}

// Module provides a *zfq.Archiver.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("zfq",
	fx.Provide(
		newStatsCollector,
		newArchiver,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("zfq.stats"))
}

// Params holds dependencies for creating the archiver.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided archiver.
type Result struct {
	fx.Out

	Archiver *zfq.Archiver
}

func newArchiver(p Params) (Result, error) {
	opts := []zfq.Option{
		zfq.WithStats(p.Collector),
		zfq.WithLogger(p.Logger.Named("zfq")),
	}
	if p.Config.Threads > 0 {
		opts = append(opts, zfq.WithThreads(p.Config.Threads))
	}
	if p.Config.SkipVerify {
		opts = append(opts, zfq.WithSkipVerify(true))
	}
	if p.Config.WorkspaceRoot != "" {
		opts = append(opts, zfq.WithWorkspaceRoot(p.Config.WorkspaceRoot))
	}

	archiver, err := zfq.New(opts...)
	if err != nil {
		return Result{}, err
	}

	return Result{Archiver: archiver}, nil
}
