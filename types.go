package blend

import (
	"github.com/meigma/blend/internal/batch"
	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/index"
	"github.com/meigma/blend/internal/sdna"
	"github.com/meigma/blend/internal/toc"
)

// Re-export types from internal packages for the public API.
type (
	// Header is the fixed preamble of a blend file.
	Header = blendtype.Header

	// Endian identifies a file's byte order.
	Endian = blendtype.Endian

	// Block is one framed record of the file.
	Block = blendtype.Block

	// Primitive identifies how a primitive value is decoded.
	Primitive = blendtype.Primitive

	// Scalar is a single decoded primitive value.
	Scalar = blendtype.Scalar

	// Array is a decoded primitive array.
	Array = blendtype.Array

	// Kind tags the shape of a decoded field.
	Kind = blendtype.Kind

	// Field is one decoded field of a structure instance.
	Field = blendtype.Field

	// Instance is a decoded structure.
	Instance = blendtype.Instance

	// Diagnostic describes a block that was not fully decoded.
	Diagnostic = blendtype.Diagnostic

	// DiagnosticKind classifies a Diagnostic.
	DiagnosticKind = blendtype.DiagnosticKind

	// Catalog is the structure catalog embedded in the file.
	Catalog = sdna.Catalog

	// Struct is a catalog structure definition.
	Struct = sdna.Struct

	// FieldDef is a catalog field definition.
	FieldDef = sdna.FieldDef

	// Type is a catalog type.
	Type = sdna.Type

	// DecodedBlock is the decode outcome of one data block: its instances,
	// or nil instances for an opaque block.
	DecodedBlock = batch.Result

	// Stats summarizes decoded and opaque blocks.
	Stats = batch.Stats

	// Target is the block a pointer resolves to.
	Target = index.Target

	// TOC is a loaded block table of contents.
	TOC = toc.TOC

	// TOCEntry describes one block in a TOC.
	TOCEntry = toc.Entry
)

// Byte orders.
const (
	LittleEndian = blendtype.LittleEndian
	BigEndian    = blendtype.BigEndian
)

// Field kinds.
const (
	KindScalar           = blendtype.KindScalar
	KindArray            = blendtype.KindArray
	KindArray2D          = blendtype.KindArray2D
	KindPointer          = blendtype.KindPointer
	KindPointerArray     = blendtype.KindPointerArray
	KindPointerToPointer = blendtype.KindPointerToPointer
	KindStruct           = blendtype.KindStruct
	KindStructArray      = blendtype.KindStructArray
)

// Diagnostic kinds.
const (
	DiagEmptyCount       = blendtype.DiagEmptyCount
	DiagSizeMismatch     = blendtype.DiagSizeMismatch
	DiagDecodeFailed     = blendtype.DiagDecodeFailed
	DiagDuplicateAddress = blendtype.DiagDuplicateAddress
	DiagUnknownStruct    = blendtype.DiagUnknownStruct
)
