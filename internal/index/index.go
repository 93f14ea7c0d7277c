// Package index maps old memory addresses to blocks and resolves pointer
// fields against them.
package index

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/blend/internal/batch"
	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/decode"
	"github.com/meigma/blend/internal/sdna"
)

// Target is what an address points at: a block and, when the block was
// decoded, its instances.
type Target struct {
	Address uint64
	Block   *blendtype.Block

	// Struct is the block's declared structure, nil when unknown.
	Struct *sdna.Struct

	// Instances is nil for opaque blocks.
	Instances []*blendtype.Instance
}

// Raw reports whether the target is an opaque block.
func (t *Target) Raw() bool {
	return t.Instances == nil
}

// Bytes returns the target block's body.
func (t *Target) Bytes() []byte {
	return t.Block.Body
}

type lazyKey struct {
	addr uint64
	st   int
}

// Index is a write-once address map. It is read-only after Build and safe
// for concurrent use.
type Index struct {
	dec     *decode.Decoder
	ptrSize int
	targets map[uint64]*Target

	group singleflight.Group
	mu    sync.RWMutex
	lazy  map[lazyKey][]*blendtype.Instance

	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (idx *Index) log() *slog.Logger {
	if idx.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return idx.logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger for pointer resolution.
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// Build indexes every populated block by address. Address 0 is never
// indexed. When two blocks claim the same address the first one wins and
// the later one is reported.
func Build(pop *batch.Population, dec *decode.Decoder, opts ...Option) (*Index, []blendtype.Diagnostic) {
	idx := &Index{
		dec:     dec,
		ptrSize: dec.Catalog().PointerSize(),
		targets: make(map[uint64]*Target, len(pop.Results)),
		lazy:    make(map[lazyKey][]*blendtype.Instance),
	}
	for _, opt := range opts {
		opt(idx)
	}

	var diags []blendtype.Diagnostic
	for i := range pop.Results {
		r := &pop.Results[i]
		addr := r.Block.Address
		if addr == 0 {
			continue
		}
		if _, dup := idx.targets[addr]; dup {
			diags = append(diags, blendtype.Diagnostic{
				Kind:        blendtype.DiagDuplicateAddress,
				BlockIndex:  r.Block.Index,
				Address:     addr,
				PointerSize: idx.ptrSize,
				Code:        r.Block.TrimmedCode(),
				SDNAIndex:   r.Block.SDNAIndex,
			})
			continue
		}
		idx.targets[addr] = &Target{
			Address:   addr,
			Block:     r.Block,
			Struct:    r.Struct,
			Instances: r.Instances,
		}
	}
	idx.log().Debug("built address index", "addresses", len(idx.targets), "duplicates", len(diags))
	return idx, diags
}

// Len returns the number of indexed addresses.
func (idx *Index) Len() int {
	return len(idx.targets)
}

// Lookup returns the target at addr.
func (idx *Index) Lookup(addr uint64) (*Target, bool) {
	t, ok := idx.targets[addr]
	return t, ok
}

// Resolve returns the target at addr. A null address yields (nil, nil); an
// address with no block yields ErrDanglingPointer.
func (idx *Index) Resolve(addr uint64) (*Target, error) {
	if addr == 0 {
		return nil, nil
	}
	t, ok := idx.targets[addr]
	if !ok {
		return nil, fmt.Errorf("address %#x: %w", addr, blendtype.ErrDanglingPointer)
	}
	return t, nil
}

// Deref resolves a single-address pointer field.
func (idx *Index) Deref(f *blendtype.Field) (*Target, error) {
	if f.Kind != blendtype.KindPointer && f.Kind != blendtype.KindPointerToPointer {
		return nil, fmt.Errorf("field %s (%s): %w", f.Path, f.Kind, blendtype.ErrNotPointer)
	}
	return idx.Resolve(f.Pointer)
}

// DerefStructs resolves a pointer field to structure instances.
//
// Decoded targets are returned as-is. An opaque target is reinterpreted as
// instances of the field's declared type when its length is a multiple of
// that type's size; the result is cached, and concurrent callers share one
// decode. A null pointer yields (nil, nil).
func (idx *Index) DerefStructs(f *blendtype.Field) ([]*blendtype.Instance, error) {
	if f.Kind != blendtype.KindPointer {
		return nil, fmt.Errorf("field %s (%s): %w", f.Path, f.Kind, blendtype.ErrNotPointer)
	}
	t, err := idx.Resolve(f.Pointer)
	if t == nil || err != nil {
		return nil, err
	}
	if !t.Raw() {
		return t.Instances, nil
	}

	st, ok := idx.dec.Catalog().StructByName(f.TypeName)
	if !ok {
		return nil, fmt.Errorf("field %s: %s: %w", f.Path, f.TypeName, blendtype.ErrNotStructured)
	}
	return idx.reinterpret(t, st)
}

// reinterpret decodes an opaque target as instances of st.
func (idx *Index) reinterpret(t *Target, st *sdna.Struct) ([]*blendtype.Instance, error) {
	size := st.Size()
	body := t.Block.Body
	if size == 0 || len(body) == 0 || len(body)%size != 0 {
		return nil, fmt.Errorf("address %#x: %d bytes as %s (%d bytes): %w",
			t.Address, len(body), st.Name(), size, blendtype.ErrNotStructured)
	}

	key := lazyKey{addr: t.Address, st: st.Index}
	idx.mu.RLock()
	cached, ok := idx.lazy[key]
	idx.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := idx.group.Do(fmt.Sprintf("%x/%d", key.addr, key.st), func() (any, error) {
		idx.mu.RLock()
		cached, ok := idx.lazy[key]
		idx.mu.RUnlock()
		if ok {
			return cached, nil
		}

		instances, err := idx.dec.DecodeAll(st, body, len(body)/size)
		if err != nil {
			return nil, fmt.Errorf("address %#x as %s: %w", t.Address, st.Name(), err)
		}
		for _, in := range instances {
			in.Address = t.Address
			in.BlockIndex = t.Block.Index
		}

		idx.mu.Lock()
		idx.lazy[key] = instances
		idx.mu.Unlock()
		idx.log().Debug("reinterpreted opaque block",
			"address", fmt.Sprintf("%#x", t.Address),
			"struct", st.Name(),
			"instances", len(instances))
		return instances, nil
	})
	if err != nil {
		return nil, err
	}
	instances, _ := v.([]*blendtype.Instance) //nolint:errcheck // type assertion always succeeds when err is nil
	return instances, nil
}

// DerefArray resolves every address of a pointer-array field. Null and
// dangling entries are nil and keep their position.
func (idx *Index) DerefArray(f *blendtype.Field) ([]*Target, error) {
	if f.Kind != blendtype.KindPointerArray {
		return nil, fmt.Errorf("field %s (%s): %w", f.Path, f.Kind, blendtype.ErrNotPointer)
	}
	return idx.resolveAll(f.Pointers), nil
}

// DerefPointers resolves a pointer-to-pointer field. The target block is
// read as a flat array of len/pointerSize addresses and each one is
// resolved; null and dangling entries are nil and keep their position. A
// null field yields (nil, nil).
func (idx *Index) DerefPointers(f *blendtype.Field) ([]*Target, error) {
	if f.Kind != blendtype.KindPointerToPointer {
		return nil, fmt.Errorf("field %s (%s): %w", f.Path, f.Kind, blendtype.ErrNotPointer)
	}
	t, err := idx.Resolve(f.Pointer)
	if t == nil || err != nil {
		return nil, err
	}
	addrs, err := idx.Addresses(t)
	if err != nil {
		return nil, err
	}
	return idx.resolveAll(addrs), nil
}

// Addresses reads the target body as a flat array of addresses.
func (idx *Index) Addresses(t *Target) ([]uint64, error) {
	body := t.Block.Body
	if len(body)%idx.ptrSize != 0 {
		return nil, fmt.Errorf("address %#x: %d bytes is not a multiple of pointer size %d: %w",
			t.Address, len(body), idx.ptrSize, blendtype.ErrNotStructured)
	}
	order := idx.dec.Catalog().Header().Order()
	addrs := make([]uint64, len(body)/idx.ptrSize)
	for i := range addrs {
		addrs[i] = decode.ReadPointer(body[i*idx.ptrSize:], idx.ptrSize, order)
	}
	return addrs, nil
}

func (idx *Index) resolveAll(addrs []uint64) []*Target {
	out := make([]*Target, len(addrs))
	for i, a := range addrs {
		out[i] = idx.targets[a]
	}
	return out
}
