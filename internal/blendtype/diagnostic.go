package blendtype

import "fmt"

// DiagnosticKind classifies a non-fatal decode outcome.
type DiagnosticKind uint8

const (
	// DiagEmptyCount marks a block with count 0, kept as raw bytes.
	DiagEmptyCount DiagnosticKind = iota + 1

	// DiagSizeMismatch marks a block whose length is not count times the
	// declared structure size.
	DiagSizeMismatch

	// DiagDecodeFailed marks a block whose structure could not be decoded
	// (unsupported layout or a field size mismatch).
	DiagDecodeFailed

	// DiagDuplicateAddress marks a block whose address was already
	// claimed by an earlier block.
	DiagDuplicateAddress

	// DiagUnknownStruct marks a block whose structure index is not in the
	// catalog.
	DiagUnknownStruct
)

// String returns the human-readable name of the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagEmptyCount:
		return "empty count"
	case DiagSizeMismatch:
		return "size mismatch"
	case DiagDecodeFailed:
		return "decode failed"
	case DiagDuplicateAddress:
		return "duplicate address"
	case DiagUnknownStruct:
		return "unknown structure"
	default:
		return "unknown"
	}
}

// Diagnostic describes a block that degraded to opaque data or was
// otherwise not fully represented.
type Diagnostic struct {
	Kind        DiagnosticKind
	BlockIndex  int
	Address     uint64
	PointerSize int
	Code        string
	SDNAIndex   int32

	// Expected and Actual are byte sizes for DiagSizeMismatch.
	Expected int
	Actual   int

	// Err is the decode error for DiagDecodeFailed.
	Err error
}

// AddressHex formats the address with two hex digits per pointer byte.
func (d Diagnostic) AddressHex() string {
	width := d.PointerSize * 2
	if width == 0 {
		width = 16
	}
	return fmt.Sprintf("%0*X", width, d.Address)
}

func (d Diagnostic) String() string {
	msg := fmt.Sprintf("block %d %s %q sdna=%d: %s", d.BlockIndex, d.AddressHex(), d.Code, d.SDNAIndex, d.Kind)
	switch d.Kind {
	case DiagSizeMismatch:
		msg += fmt.Sprintf(" (expected %d bytes, got %d)", d.Expected, d.Actual)
	case DiagDecodeFailed:
		if d.Err != nil {
			msg += ": " + d.Err.Error()
		}
	}
	return msg
}
