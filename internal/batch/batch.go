// Package batch populates decoded structure instances for every data block
// of a blend file.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/decode"
	"github.com/meigma/blend/internal/sdna"
	"github.com/meigma/blend/internal/sizing"
)

const (
	// parallelMinBytes is the minimum total body size to decode in parallel.
	// Below this threshold, serial decoding is faster than scheduling workers.
	parallelMinBytes = 256 << 10 // 256KB
)

// Result is the population outcome for one data block.
type Result struct {
	Block *blendtype.Block

	// Struct is the block's declared structure, nil when the index is not
	// in the catalog.
	Struct *sdna.Struct

	// Instances holds count decoded instances, or nil for opaque blocks.
	Instances []*blendtype.Instance
}

// Opaque reports whether the block is kept as raw bytes.
func (r *Result) Opaque() bool {
	return r.Instances == nil
}

// Population is the output of Process.
type Population struct {
	// Results are in block order and exclude the catalog and terminal blocks.
	Results []Result

	// Diagnostics are in block order.
	Diagnostics []blendtype.Diagnostic

	Stats Stats
}

// Processor decodes blocks, optionally in parallel.
type Processor struct {
	dec     *decode.Decoder
	workers int // 0 = auto, <0 = serial, >0 = fixed count
	budget  uint64
	logger  *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of decode workers.
// Values < 0 force serial decoding. Zero uses GOMAXPROCS when the input is
// large enough to benefit. Values > 0 force a specific worker count.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithBudget caps the total body bytes being decoded at once.
// A value of 0 disables the byte budget.
func WithBudget(limit uint64) ProcessorOption {
	return func(p *Processor) {
		p.budget = limit
	}
}

// WithLogger sets the logger for population. If not set, logging is disabled.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a processor that decodes with dec.
func NewProcessor(dec *decode.Decoder, opts ...ProcessorOption) *Processor {
	p := &Processor{dec: dec}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process classifies every data block and decodes the structured ones.
//
// Blocks with a zero count, an unknown structure index, a body length that
// is not count times the structure size, or a failing decode are kept
// opaque and reported as diagnostics. Only context cancellation aborts the
// run; the returned Population is always in block order.
func (p *Processor) Process(ctx context.Context, blocks []blendtype.Block) (*Population, error) {
	var targets []*blendtype.Block
	var total uint64
	for i := range blocks {
		blk := &blocks[i]
		if blk.IsCatalog() || blk.IsEnd() {
			continue
		}
		targets = append(targets, blk)
		if next, ok := sizing.AddUint64(total, uint64(len(blk.Body))); ok {
			total = next
		}
	}

	results := make([]Result, len(targets))
	diags := make([]*blendtype.Diagnostic, len(targets))

	workers := p.workerCount(len(targets), total)
	var err error
	if workers < 2 {
		err = p.processSerial(ctx, targets, results, diags)
	} else {
		err = p.processParallel(ctx, targets, results, diags, workers)
	}
	if err != nil {
		return nil, err
	}

	pop := &Population{Results: results}
	for i := range results {
		if diags[i] != nil {
			pop.Diagnostics = append(pop.Diagnostics, *diags[i])
		}
		pop.Stats.add(&results[i])
	}

	p.log().Debug("populated blocks",
		"blocks", len(results),
		"decoded", pop.Stats.Decoded,
		"opaque", pop.Stats.Opaque,
		"instances", pop.Stats.Instances,
		"workers", workers)
	return pop, nil
}

func (p *Processor) processSerial(ctx context.Context, targets []*blendtype.Block, results []Result, diags []*blendtype.Diagnostic) error {
	for i, blk := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i], diags[i] = p.classify(blk)
	}
	return nil
}

func (p *Processor) processParallel(ctx context.Context, targets []*blendtype.Block, results []Result, diags []*blendtype.Diagnostic, workers int) error {
	var budget *semaphore.Weighted
	var limit int64
	if p.budget > 0 {
		var err error
		limit, err = sizing.ToInt64(p.budget, blendtype.ErrSizeOverflow)
		if err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		budget = semaphore.NewWeighted(limit)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, blk := range targets {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if budget != nil {
				// A block larger than the whole budget takes all of it.
				weight := min(int64(len(blk.Body)), limit)
				if err := budget.Acquire(gctx, weight); err != nil {
					return err
				}
				defer budget.Release(weight)
			}
			results[i], diags[i] = p.classify(blk)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// workerCount returns the number of workers to use for n blocks totalling
// size body bytes.
func (p *Processor) workerCount(n int, size uint64) int {
	if n < 2 || p.workers < 0 {
		return 1
	}
	workers := p.workers
	if workers == 0 {
		if size < parallelMinBytes {
			return 1
		}
		workers = runtime.GOMAXPROCS(0)
	}
	return min(workers, n)
}

// classify decodes one block or explains why it stays opaque.
func (p *Processor) classify(blk *blendtype.Block) (Result, *blendtype.Diagnostic) {
	res := Result{Block: blk}
	diag := &blendtype.Diagnostic{
		BlockIndex:  blk.Index,
		Address:     blk.Address,
		PointerSize: p.dec.Catalog().PointerSize(),
		Code:        blk.TrimmedCode(),
		SDNAIndex:   blk.SDNAIndex,
	}

	if blk.Count == 0 {
		diag.Kind = blendtype.DiagEmptyCount
		return res, diag
	}

	st, ok := p.dec.Catalog().Struct(int(blk.SDNAIndex))
	if !ok {
		diag.Kind = blendtype.DiagUnknownStruct
		return res, diag
	}
	res.Struct = st

	expected, ok := sizing.MulInt(int(blk.Count), st.Size())
	if !ok || expected != len(blk.Body) {
		diag.Kind = blendtype.DiagSizeMismatch
		diag.Expected = expected
		diag.Actual = len(blk.Body)
		return res, diag
	}

	instances, err := p.dec.DecodeAll(st, blk.Body, int(blk.Count))
	if err != nil {
		diag.Kind = blendtype.DiagDecodeFailed
		diag.Err = err
		return res, diag
	}
	for _, in := range instances {
		in.Address = blk.Address
		in.BlockIndex = blk.Index
	}
	res.Instances = instances
	return res, nil
}
