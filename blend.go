package blend

import (
	"bufio"
	"cmp"
	"context"
	_ "crypto/sha256" // registers digest.Canonical
	"fmt"
	"io"
	"iter"
	"os"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/blend/internal/batch"
	"github.com/meigma/blend/internal/block"
	"github.com/meigma/blend/internal/decode"
	"github.com/meigma/blend/internal/header"
	"github.com/meigma/blend/internal/index"
	"github.com/meigma/blend/internal/sdna"
)

// File is a parsed blend file. It is read-only and safe for concurrent use.
type File struct {
	hdr    Header
	blocks []Block
	cat    *sdna.Catalog
	pop    *batch.Population
	idx    *index.Index
	diags  []Diagnostic
	digest digest.Digest
}

// Open parses the blend file at path.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, ErrIO, err)
	}
	defer f.Close()
	return Parse(bufio.NewReaderSize(f, 1<<20), opts...)
}

// Parse reads and decodes a complete blend file from r.
func Parse(r io.Reader, opts ...Option) (*File, error) {
	return ParseContext(context.Background(), r, opts...)
}

// ParseContext is Parse with a context. Cancellation is observed while
// blocks are being decoded.
//
// Header, framing, and catalog failures abort the parse with a
// *FormatError or an ErrIO error. Blocks that cannot be decoded do not:
// they stay opaque and are reported as diagnostics.
func ParseContext(ctx context.Context, r io.Reader, opts ...Option) (*File, error) {
	cfg := newConfig(opts)
	log := cfg.log()

	var digester digest.Digester
	if cfg.digest {
		digester = digest.Canonical.Digester()
		r = io.TeeReader(r, digester.Hash())
	}

	hdr, err := header.Read(r)
	if err != nil {
		return nil, err
	}
	log.Debug("read header", "pointer_size", hdr.PointerSize, "endian", hdr.Endian.String(), "version", hdr.Version)

	blocks, err := block.Frame(r, hdr, header.Size,
		block.WithMaxBlockSize(cfg.maxBlockSize),
		block.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	cat, err := sdna.Load(blocks, hdr, sdna.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	dec := decode.New(cat)

	proc := batch.NewProcessor(dec,
		batch.WithWorkers(cfg.workers),
		batch.WithBudget(cfg.budget),
		batch.WithLogger(cfg.logger))
	pop, err := proc.Process(ctx, blocks)
	if err != nil {
		return nil, err
	}

	idx, dups := index.Build(pop, dec, index.WithLogger(cfg.logger))

	f := &File{
		hdr:    hdr,
		blocks: blocks,
		cat:    cat,
		pop:    pop,
		idx:    idx,
		diags:  mergeDiagnostics(pop.Diagnostics, dups),
	}

	if digester != nil {
		// Trailing bytes after the terminal block are part of the file.
		if _, err := io.Copy(io.Discard, r); err != nil {
			return nil, fmt.Errorf("digest: %w: %w", ErrIO, err)
		}
		f.digest = digester.Digest()
	}

	if cfg.sink != nil {
		for _, d := range f.diags {
			cfg.sink.Report(d)
		}
	}
	log.Debug("parsed file",
		"blocks", len(blocks),
		"structs", len(cat.Structs()),
		"decoded", pop.Stats.Decoded,
		"opaque", pop.Stats.Opaque,
		"diagnostics", len(f.diags))
	return f, nil
}

// mergeDiagnostics interleaves population and index diagnostics in block
// order.
func mergeDiagnostics(a, b []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.SortStableFunc(out, func(x, y Diagnostic) int {
		return cmp.Compare(x.BlockIndex, y.BlockIndex)
	})
	return out
}

// Header returns the file header.
func (f *File) Header() Header {
	return f.hdr
}

// Blocks returns every framed block in file order, including the catalog
// and terminal blocks. The slice must not be modified.
func (f *File) Blocks() []Block {
	return f.blocks
}

// Decoded returns the decode outcome of every data block in file order.
// The catalog and terminal blocks are not included. The slice must not be
// modified.
func (f *File) Decoded() []DecodedBlock {
	return f.pop.Results
}

// Instances returns an iterator over the decoded instances of every block
// whose structure is typeName, in file order.
func (f *File) Instances(typeName string) iter.Seq[*Instance] {
	return func(yield func(*Instance) bool) {
		for i := range f.pop.Results {
			r := &f.pop.Results[i]
			if r.Struct == nil || r.Struct.Name() != typeName {
				continue
			}
			for _, in := range r.Instances {
				if !yield(in) {
					return
				}
			}
		}
	}
}

// Stats returns decode totals.
func (f *File) Stats() Stats {
	return f.pop.Stats
}

// Catalog returns the structure catalog.
func (f *File) Catalog() *Catalog {
	return f.cat
}

// Diagnostics returns a copy of the parse diagnostics in block order.
func (f *File) Diagnostics() []Diagnostic {
	return slices.Clone(f.diags)
}

// Digest returns the sha256 digest of the input, or "" when digesting was
// disabled with WithDigest(false).
func (f *File) Digest() digest.Digest {
	return f.digest
}

// Lookup returns the block at addr. When several blocks share an address
// the first one in file order wins.
func (f *File) Lookup(addr uint64) (*Target, bool) {
	return f.idx.Lookup(addr)
}

// Resolve returns the block at addr. A null address yields (nil, nil); an
// address with no block yields ErrDanglingPointer.
func (f *File) Resolve(addr uint64) (*Target, error) {
	return f.idx.Resolve(addr)
}

// Deref resolves a pointer field to the block it points at. A null pointer
// yields (nil, nil); a pointer with no block yields ErrDanglingPointer.
func (f *File) Deref(field *Field) (*Target, error) {
	return f.idx.Deref(field)
}

// DerefStructs resolves a pointer field to structure instances. Opaque
// targets are decoded as the field's declared type when their size is a
// multiple of it; the result is cached.
func (f *File) DerefStructs(field *Field) ([]*Instance, error) {
	return f.idx.DerefStructs(field)
}

// DerefArray resolves each address of a pointer-array field. Null and
// dangling entries are nil and keep their position.
func (f *File) DerefArray(field *Field) ([]*Target, error) {
	return f.idx.DerefArray(field)
}

// DerefPointers resolves a pointer-to-pointer field: its target block is
// read as an array of addresses and each one is resolved. Null and dangling
// entries are nil and keep their position.
func (f *File) DerefPointers(field *Field) ([]*Target, error) {
	return f.idx.DerefPointers(field)
}
