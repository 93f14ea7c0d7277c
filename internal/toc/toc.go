// Package toc encodes and reads the FlatBuffers table of contents of a
// framed blend file.
//
// A TOC lists every block with its header offset so that a single block can
// be read back from the file without framing everything before it.
package toc

import (
	"cmp"
	_ "crypto/sha256" // registers digest.Canonical
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"sort"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/block"
	"github.com/meigma/blend/internal/fb"
)

// Version is the TOC format version written by Build.
const Version = 1

// ErrDigestMismatch is returned when a file does not match the digest
// recorded in its TOC.
var ErrDigestMismatch = errors.New("blend: toc digest mismatch")

// Entry describes one framed block.
type Entry struct {
	Index     int
	Code      string
	Address   uint64
	SDNAIndex int32
	Count     int32

	// Offset is the byte offset of the block header.
	Offset int64
	Length int32
}

// TrimmedCode returns the block code without trailing NUL padding.
func (e Entry) TrimmedCode() string {
	b := blendtype.Block{Code: e.Code}
	return b.TrimmedCode()
}

// Build serializes a TOC for blocks. Entries are sorted by address, with
// blocks sharing an address kept in file order.
func Build(hdr blendtype.Header, dgst digest.Digest, blocks []blendtype.Block) []byte {
	sorted := make([]*blendtype.Block, len(blocks))
	for i := range blocks {
		sorted[i] = &blocks[i]
	}
	slices.SortStableFunc(sorted, func(a, b *blendtype.Block) int {
		return cmp.Compare(a.Address, b.Address)
	})

	builder := flatbuffers.NewBuilder(1024)

	// Build entries in reverse order (FlatBuffers requirement)
	entryOffsets := make([]flatbuffers.UOffsetT, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		blk := sorted[i]
		codeOffset := builder.CreateByteVector([]byte(blk.Code))

		fb.BlockEntryStart(builder)
		fb.BlockEntryAddAddress(builder, blk.Address)
		fb.BlockEntryAddIndex(builder, uint32(blk.Index)) //nolint:gosec // block ordinals are non-negative
		fb.BlockEntryAddCode(builder, codeOffset)
		fb.BlockEntryAddSdnaIndex(builder, blk.SDNAIndex)
		fb.BlockEntryAddCount(builder, blk.Count)
		fb.BlockEntryAddOffset(builder, uint64(blk.Offset)) //nolint:gosec // offsets are non-negative
		fb.BlockEntryAddLength(builder, uint32(blk.Length)) //nolint:gosec // framed lengths are non-negative
		entryOffsets[i] = fb.BlockEntryEnd(builder)
	}

	fb.TOCStartEntriesVector(builder, len(sorted))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(sorted))

	versionOffset := builder.CreateString(hdr.Version)
	digestOffset := builder.CreateString(dgst.String())

	endian := fb.EndianLittle
	if hdr.Endian == blendtype.BigEndian {
		endian = fb.EndianBig
	}

	fb.TOCStart(builder)
	fb.TOCAddVersion(builder, Version)
	fb.TOCAddPointerSize(builder, byte(hdr.PointerSize)) //nolint:gosec // pointer size is 4 or 8
	fb.TOCAddEndian(builder, endian)
	fb.TOCAddBlendVersion(builder, versionOffset)
	fb.TOCAddDigest(builder, digestOffset)
	fb.TOCAddEntries(builder, entriesOffset)
	tocOffset := fb.TOCEnd(builder)

	builder.Finish(tocOffset)
	return builder.FinishedBytes()
}

// TOC is a loaded table of contents. It is read-only and safe for
// concurrent use.
type TOC struct {
	data   []byte
	root   *fb.TOC
	hdr    blendtype.Header
	digest digest.Digest
}

// Load parses a FlatBuffers-encoded TOC.
//
// The provided data is retained by the TOC; callers must not modify it
// after calling Load.
func Load(data []byte) (t *TOC, err error) {
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = fmt.Errorf("%w: toc: %v", blendtype.ErrFormat, r)
		}
	}()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: toc: empty data", blendtype.ErrFormat)
	}

	root := fb.GetRootAsTOC(data, 0)
	if v := root.Version(); v != Version {
		return nil, fmt.Errorf("%w: toc: unsupported version %d", blendtype.ErrFormat, v)
	}

	hdr := blendtype.Header{
		PointerSize: int(root.PointerSize()),
		Version:     string(root.BlendVersion()),
	}
	if hdr.PointerSize != 4 && hdr.PointerSize != 8 {
		return nil, fmt.Errorf("%w: toc: pointer size %d", blendtype.ErrFormat, hdr.PointerSize)
	}
	switch root.Endian() {
	case fb.EndianLittle:
		hdr.Endian = blendtype.LittleEndian
	case fb.EndianBig:
		hdr.Endian = blendtype.BigEndian
	default:
		return nil, fmt.Errorf("%w: toc: byte order %s", blendtype.ErrFormat, root.Endian())
	}

	var dgst digest.Digest
	if raw := root.Digest(); len(raw) > 0 {
		dgst, err = digest.Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: toc: %w", blendtype.ErrFormat, err)
		}
	}

	t = &TOC{data: data, root: root, hdr: hdr, digest: dgst}

	var prev uint64
	var e fb.BlockEntry
	for i := range root.EntriesLength() {
		root.Entries(&e, i)
		if e.Address() < prev {
			return nil, fmt.Errorf("%w: toc: entry %d out of address order", blendtype.ErrFormat, i)
		}
		prev = e.Address()
	}
	return t, nil
}

// Header returns the recorded file header.
func (t *TOC) Header() blendtype.Header {
	return t.hdr
}

// Digest returns the recorded file digest, empty when none was recorded.
func (t *TOC) Digest() digest.Digest {
	return t.digest
}

// Len returns the number of entries.
func (t *TOC) Len() int {
	return t.root.EntriesLength()
}

// At returns entry i in address order.
func (t *TOC) At(i int) Entry {
	var e fb.BlockEntry
	t.root.Entries(&e, i)
	return entryFromFlatBuffers(&e)
}

// Entries returns an iterator over all entries in address order.
func (t *TOC) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		var e fb.BlockEntry
		for i := range t.root.EntriesLength() {
			if !t.root.Entries(&e, i) {
				return
			}
			if !yield(entryFromFlatBuffers(&e)) {
				return
			}
		}
	}
}

// Lookup returns the first block in file order at addr. Address 0 is never
// found.
//
// Lookup uses binary search and completes in O(log n) time.
func (t *TOC) Lookup(addr uint64) (Entry, bool) {
	if addr == 0 {
		return Entry{}, false
	}
	n := t.root.EntriesLength()
	var e fb.BlockEntry
	i := sort.Search(n, func(i int) bool {
		t.root.Entries(&e, i)
		return e.Address() >= addr
	})
	if i == n {
		return Entry{}, false
	}
	t.root.Entries(&e, i)
	if e.Address() != addr {
		return Entry{}, false
	}
	return entryFromFlatBuffers(&e), true
}

// Verify digests r and compares it with the recorded digest.
func (t *TOC) Verify(r io.Reader) error {
	if t.digest == "" {
		return fmt.Errorf("%w: no digest recorded", ErrDigestMismatch)
	}
	verifier := t.digest.Verifier()
	if _, err := io.Copy(verifier, r); err != nil {
		return fmt.Errorf("%w: %w", blendtype.ErrIO, err)
	}
	if !verifier.Verified() {
		return fmt.Errorf("%w: expected %s", ErrDigestMismatch, t.digest)
	}
	return nil
}

func entryFromFlatBuffers(e *fb.BlockEntry) Entry {
	return Entry{
		Index:     int(e.Index()),
		Code:      string(e.CodeBytes()),
		Address:   e.Address(),
		SDNAIndex: e.SdnaIndex(),
		Count:     e.Count(),
		Offset:    int64(e.Offset()), //nolint:gosec // checked before use by ReadBlockAt
		Length:    int32(e.Length()), //nolint:gosec // checked before use by ReadBlockAt
	}
}

// ReadBlockAt reads the block described by e directly from src. The header
// found on disk must match the entry.
func ReadBlockAt(src io.ReaderAt, t *TOC, e Entry) (blendtype.Block, error) {
	if e.Offset < 0 || e.Length < 0 {
		return blendtype.Block{}, &blendtype.FormatError{
			Op:     "toc entry",
			Offset: e.Offset,
			Found:  fmt.Sprintf("offset %d length %d", e.Offset, e.Length),
		}
	}

	hdrSize := block.HeaderSize(t.hdr.PointerSize)
	buf := make([]byte, hdrSize)
	if err := readFullAt(src, buf, e.Offset, "block header"); err != nil {
		return blendtype.Block{}, err
	}

	blk := block.DecodeHeader(buf, t.hdr)
	if blk.Code != e.Code || blk.Address != e.Address || blk.SDNAIndex != e.SDNAIndex ||
		blk.Count != e.Count || blk.Length != e.Length {
		return blendtype.Block{}, &blendtype.FormatError{
			Op:       "toc block header",
			Offset:   e.Offset,
			Expected: describe(e.Code, e.Address, e.SDNAIndex, e.Count, e.Length),
			Found:    describe(blk.Code, blk.Address, blk.SDNAIndex, blk.Count, blk.Length),
		}
	}

	blk.Index = e.Index
	blk.Offset = e.Offset
	if blk.IsEnd() {
		return blk, nil
	}
	blk.Body = make([]byte, blk.Length)
	if err := readFullAt(src, blk.Body, e.Offset+int64(hdrSize), "block body"); err != nil {
		return blendtype.Block{}, err
	}
	return blk, nil
}

func readFullAt(src io.ReaderAt, buf []byte, off int64, op string) error {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return &blendtype.FormatError{Op: op, Offset: off + int64(n), Err: io.ErrUnexpectedEOF}
	}
	return fmt.Errorf("%s at offset %d: %w: %w", op, off, blendtype.ErrIO, err)
}

func describe(code string, addr uint64, sdna, count, length int32) string {
	return fmt.Sprintf("%q at %#x (sdna %d, count %d, length %d)", code, addr, sdna, count, length)
}
