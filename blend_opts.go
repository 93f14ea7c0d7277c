package blend

import (
	"log/slog"

	"github.com/meigma/blend/internal/block"
)

// DefaultDecodeBudget is the default cap on block bytes decoded at once (256MB).
const DefaultDecodeBudget = 256 << 20

// Option configures Parse.
type Option func(*config)

type config struct {
	logger       *slog.Logger
	sink         DiagnosticSink
	workers      int
	budget       uint64
	maxBlockSize uint64
	digest       bool
}

func newConfig(opts []Option) *config {
	cfg := &config{
		budget:       DefaultDecodeBudget,
		maxBlockSize: block.DefaultMaxBlockSize,
		digest:       true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WithLogger sets the logger for parsing and pointer resolution.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDiagnostics sets a sink that receives every diagnostic of the parse.
// Diagnostics are also available from File.Diagnostics.
func WithDiagnostics(sink DiagnosticSink) Option {
	return func(c *config) {
		c.sink = sink
	}
}

// WithWorkers sets the number of block decode workers.
// Values < 0 force serial decoding. Zero uses GOMAXPROCS when the file is
// large enough to benefit. Values > 0 force a specific worker count.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithDecodeBudget caps the total block bytes decoded at once by parallel
// workers. Set limit to 0 to disable the cap.
func WithDecodeBudget(limit uint64) Option {
	return func(c *config) {
		c.budget = limit
	}
}

// WithMaxBlockSize limits the declared body length of a single block.
// Set limit to 0 to disable the limit.
func WithMaxBlockSize(limit uint64) Option {
	return func(c *config) {
		c.maxBlockSize = limit
	}
}

// WithDigest controls whether Parse computes the sha256 digest of the
// input while reading it. Enabled by default.
func WithDigest(enabled bool) Option {
	return func(c *config) {
		c.digest = enabled
	}
}
