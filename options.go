package zfq

import (
	"go.uber.org/zap"

	"github.com/seqarc/zfq/internal/codec"
	"github.com/seqarc/zfq/internal/codec/zstdcodec"
	"github.com/seqarc/zfq/internal/stats"
)

// Option configures an Archiver.
type Option interface {
	apply(*options)
}

// options holds the archiver configuration.
type options struct {
	codec         codec.Codec
	threads       int
	skipVerify    bool
	workspaceRoot string
	stats         stats.Collector
	logger        *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		codec:   zstdcodec.New(),
		threads: 1,
		stats:   stats.NewNoop(),
		logger:  zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithCodec sets the column codec.
// If not set, the native zstd codec is used.
func WithCodec(c codec.Codec) Option {
	return optionFunc(func(o *options) {
		o.codec = c
	})
}

// WithThreads sets the concurrency hint forwarded to the codec.
// Default is 1.
func WithThreads(n int) Option {
	return optionFunc(func(o *options) {
		o.threads = n
	})
}

// WithSkipVerify disables the post-operation content check.
// The check re-runs the whole inverse operation, so skipping it can
// halve processing time at the cost of never detecting a bad round
// trip.
func WithSkipVerify(skip bool) Option {
	return optionFunc(func(o *options) {
		o.skipVerify = skip
	})
}

// WithWorkspaceRoot overrides where operation workspaces are created.
// By default a workspace lives beside the operation's destination,
// which keeps the final rename on one filesystem. A root on a
// different filesystem than the destinations breaks that rename.
func WithWorkspaceRoot(dir string) Option {
	return optionFunc(func(o *options) {
		o.workspaceRoot = dir
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
