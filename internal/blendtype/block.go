package blendtype

// Block codes with special meaning.
const (
	// CodeEnd marks the end of the block stream.
	CodeEnd = "ENDB"

	// CodeCatalog identifies the structure-DNA block.
	CodeCatalog = "DNA1"
)

// Block is one framed, length-prefixed record of a blend file.
//
// Blocks are immutable once framed. Body aliases memory owned by the
// framer and must not be modified.
type Block struct {
	// Index is the ordinal position of the block in the file.
	Index int

	// Offset is the byte offset of the block header in the file.
	Offset int64

	// Code is the four-character block code, e.g. "OB\x00\x00" or "DATA".
	Code string

	// Length is the declared body length.
	Length int32

	// Address is the old memory address the writing process used for the body.
	Address uint64

	// SDNAIndex is the structure-table index describing the body.
	SDNAIndex int32

	// Count is the number of structure instances packed in the body.
	Count int32

	// Body holds the raw body bytes.
	Body []byte
}

// IsEnd reports whether b is the terminal block.
func (b *Block) IsEnd() bool {
	return b.Code == CodeEnd
}

// IsCatalog reports whether b is the structure-DNA block.
func (b *Block) IsCatalog() bool {
	return b.Code == CodeCatalog
}

// TrimmedCode returns the block code without trailing NUL padding.
func (b *Block) TrimmedCode() string {
	code := b.Code
	for len(code) > 0 && code[len(code)-1] == 0 {
		code = code[:len(code)-1]
	}
	return code
}
