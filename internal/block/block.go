// Package block frames the sequential list of length-prefixed blocks that
// follows the blend file header.
package block

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/sizing"
)

// DefaultMaxBlockSize is the default maximum declared body length (1GB).
const DefaultMaxBlockSize = 1 << 30

// alignment is the boundary every block header starts on.
const alignment = 4

// HeaderSize returns the size of a block header for the given pointer width.
func HeaderSize(ptrSize int) int {
	return 16 + ptrSize
}

// DecodeHeader decodes the fixed fields of a block header from b, which
// must hold at least HeaderSize(h.PointerSize) bytes. Body is left nil.
// The terminal block never has a body, so its length is reported as 0
// whatever the header declares.
func DecodeHeader(b []byte, h blendtype.Header) blendtype.Block {
	order := h.Order()
	blk := blendtype.Block{
		Code:   string(b[0:4]),
		Length: int32(order.Uint32(b[4:8])), //nolint:gosec // signed on disk
	}
	off := 8
	if h.PointerSize == 4 {
		blk.Address = uint64(order.Uint32(b[off:]))
	} else {
		blk.Address = order.Uint64(b[off:])
	}
	off += h.PointerSize
	blk.SDNAIndex = int32(order.Uint32(b[off:])) //nolint:gosec // signed on disk
	blk.Count = int32(order.Uint32(b[off+4:]))   //nolint:gosec // signed on disk
	if blk.IsEnd() {
		blk.Length = 0
	}
	return blk
}

// Reader reads blocks one at a time.
type Reader struct {
	cr           countingReader
	hdr          blendtype.Header
	index        int
	done         bool
	maxBlockSize uint64
	logger       *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxBlockSize limits the declared body length of a single block.
// Set limit to 0 to disable the limit.
func WithMaxBlockSize(limit uint64) Option {
	return func(r *Reader) {
		r.maxBlockSize = limit
	}
}

// WithLogger sets the logger for framing. If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader returns a Reader over src, which must be positioned directly
// after the file header. offset is the absolute position of src.
func NewReader(src io.Reader, hdr blendtype.Header, offset int64, opts ...Option) *Reader {
	r := &Reader{
		cr:           countingReader{R: src, N: offset},
		hdr:          hdr,
		maxBlockSize: DefaultMaxBlockSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Offset returns the absolute number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.cr.N
}

// Next returns the next block. After the terminal block has been returned,
// Next returns io.EOF.
func (r *Reader) Next() (blendtype.Block, error) {
	if r.done {
		return blendtype.Block{}, io.EOF
	}

	start := r.cr.N
	buf := make([]byte, HeaderSize(r.hdr.PointerSize))
	if err := r.readFull(buf, "block header"); err != nil {
		return blendtype.Block{}, err
	}
	blk := DecodeHeader(buf, r.hdr)
	blk.Index = r.index
	blk.Offset = start
	r.index++

	if blk.IsEnd() {
		r.done = true
		return blk, nil
	}

	if blk.Length < 0 {
		return blendtype.Block{}, &blendtype.FormatError{
			Op:       "block length",
			Offset:   start + 4,
			Expected: "non-negative length",
			Found:    fmt.Sprint(blk.Length),
			Err:      blendtype.ErrFormat,
		}
	}
	if r.maxBlockSize > 0 && uint64(blk.Length) > r.maxBlockSize {
		return blendtype.Block{}, &blendtype.FormatError{
			Op:       "block length",
			Offset:   start + 4,
			Expected: fmt.Sprintf("at most %d bytes", r.maxBlockSize),
			Found:    fmt.Sprint(blk.Length),
			Err:      blendtype.ErrSizeOverflow,
		}
	}

	blk.Body = make([]byte, blk.Length)
	if err := r.readFull(blk.Body, "block body"); err != nil {
		return blendtype.Block{}, err
	}
	if err := r.skipPadding(); err != nil {
		return blendtype.Block{}, err
	}
	return blk, nil
}

// ReadAll reads every block up to and including the terminal block.
func (r *Reader) ReadAll() ([]blendtype.Block, error) {
	var blocks []blendtype.Block
	for {
		blk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, blk)
	}
	r.log().Debug("framed blocks", "blocks", len(blocks), "bytes", r.cr.N)
	return blocks, nil
}

// Frame reads every block from src. It is shorthand for NewReader followed
// by ReadAll.
func Frame(src io.Reader, hdr blendtype.Header, offset int64, opts ...Option) ([]blendtype.Block, error) {
	return NewReader(src, hdr, offset, opts...).ReadAll()
}

func (r *Reader) skipPadding() error {
	pad := sizing.AlignUp(r.cr.N, alignment) - r.cr.N
	if pad == 0 {
		return nil
	}
	var scratch [alignment]byte
	return r.readFull(scratch[:pad], "block padding")
}

// readFull reads exactly len(p) bytes, mapping a short stream to a format
// error and any other failure to ErrIO.
func (r *Reader) readFull(p []byte, what string) error {
	start := r.cr.N
	n, err := io.ReadFull(&r.cr, p)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &blendtype.FormatError{
			Op:       what,
			Offset:   start,
			Expected: fmt.Sprintf("%d bytes before terminal block", len(p)),
			Found:    fmt.Sprintf("%d bytes", n),
			Err:      io.ErrUnexpectedEOF,
		}
	}
	return fmt.Errorf("%s at offset %d: %w: %w", what, start, blendtype.ErrIO, err)
}

// countingReader wraps a reader and tracks the absolute stream offset.
type countingReader struct {
	R io.Reader
	N int64
}

// Read implements io.Reader.
func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.R.Read(p)
	cr.N += int64(n)
	return n, err
}
