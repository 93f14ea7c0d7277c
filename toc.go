package blend

import (
	"io"

	"github.com/meigma/blend/internal/toc"
)

// MarshalTOC encodes the FlatBuffers table of contents of the file.
func (f *File) MarshalTOC() []byte {
	return toc.Build(f.hdr, f.digest, f.blocks)
}

// LoadTOC parses a table of contents produced by MarshalTOC.
//
// The provided data is retained by the TOC; callers must not modify it
// after calling LoadTOC.
func LoadTOC(data []byte) (*TOC, error) {
	return toc.Load(data)
}

// ReadBlockAt reads the block described by e from src, which must be the
// file the TOC was built from. The block header found at the entry's offset
// must match the entry or a *FormatError is returned.
func ReadBlockAt(src io.ReaderAt, t *TOC, e TOCEntry) (Block, error) {
	return toc.ReadBlockAt(src, t, e)
}
