package sdna

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/blend/internal/blendtype"
)

// reader walks a catalog body. Every failure is a FormatError carrying the
// absolute file offset.
type reader struct {
	b     []byte
	off   int
	base  int64
	order binary.ByteOrder
}

func (r *reader) offset() int64 {
	return r.base + int64(r.off)
}

func (r *reader) short(what string, need int) error {
	return &blendtype.FormatError{
		Op:       "catalog " + what,
		Offset:   r.offset(),
		Expected: fmt.Sprintf("%d bytes", need),
		Found:    fmt.Sprintf("%d bytes", len(r.b)-r.off),
		Err:      io.ErrUnexpectedEOF,
	}
}

func (r *reader) take(what string, n int) ([]byte, error) {
	if n > len(r.b)-r.off {
		return nil, r.short(what, n)
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p, nil
}

// tag consumes a four-byte table tag.
func (r *reader) tag(want string) error {
	at := r.offset()
	p, err := r.take(want+" tag", len(want))
	if err != nil {
		return err
	}
	if string(p) != want {
		return &blendtype.FormatError{
			Op:       "catalog tag",
			Offset:   at,
			Expected: fmt.Sprintf("%q", want),
			Found:    fmt.Sprintf("%q", p),
			Err:      blendtype.ErrFormat,
		}
	}
	return nil
}

func (r *reader) int32(what string) (int32, error) {
	p, err := r.take(what, 4)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(p)), nil //nolint:gosec // signed on disk
}

func (r *reader) int16(what string) (int16, error) {
	p, err := r.take(what, 2)
	if err != nil {
		return 0, err
	}
	return int16(r.order.Uint16(p)), nil //nolint:gosec // signed on disk
}

func (r *reader) uint16(what string) (uint16, error) {
	p, err := r.take(what, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(p), nil
}

// count reads an int32 element count.
func (r *reader) count(what string, minSize int) (int, error) {
	at := r.offset()
	v, err := r.int32(what)
	if err != nil {
		return 0, err
	}
	return r.checkCount(what, at, int(v), minSize)
}

// count16 reads an int16 element count.
func (r *reader) count16(what string, minSize int) (int, error) {
	at := r.offset()
	v, err := r.int16(what)
	if err != nil {
		return 0, err
	}
	return r.checkCount(what, at, int(v), minSize)
}

// checkCount rejects counts that cannot fit in the remaining bytes at
// minSize bytes per element.
func (r *reader) checkCount(what string, at int64, n, minSize int) (int, error) {
	limit := (len(r.b) - r.off) / minSize
	if n >= 0 && n <= limit {
		return n, nil
	}
	cause := blendtype.ErrFormat
	if n > limit {
		cause = io.ErrUnexpectedEOF
	}
	return 0, &blendtype.FormatError{
		Op:       "catalog " + what,
		Offset:   at,
		Expected: fmt.Sprintf("at most %d entries", limit),
		Found:    fmt.Sprint(n),
		Err:      cause,
	}
}

// index reads an int16 table index and checks it against limit.
func (r *reader) index(what string, limit int) (int, error) {
	at := r.offset()
	v, err := r.int16(what)
	if err != nil {
		return 0, err
	}
	if v < 0 || int(v) >= limit {
		return 0, &blendtype.FormatError{
			Op:       "catalog " + what,
			Offset:   at,
			Expected: fmt.Sprintf("index below %d", limit),
			Found:    fmt.Sprint(v),
			Err:      blendtype.ErrFormat,
		}
	}
	return int(v), nil
}

func (r *reader) cstring(what string) (string, error) {
	end := bytes.IndexByte(r.b[r.off:], 0)
	if end < 0 {
		return "", &blendtype.FormatError{
			Op:       "catalog " + what,
			Offset:   r.offset(),
			Expected: "NUL-terminated string",
			Found:    "end of block",
			Err:      io.ErrUnexpectedEOF,
		}
	}
	s := string(r.b[r.off : r.off+end])
	r.off += end + 1
	return s, nil
}

// stringTable reads a tagged, counted list of strings and realigns.
func (r *reader) stringTable(tag string) ([]string, error) {
	if err := r.tag(tag); err != nil {
		return nil, err
	}
	n, err := r.count(tag+" count", 1)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = r.cstring(tag + " entry"); err != nil {
			return nil, err
		}
	}
	r.align()
	return out, nil
}

// align advances to the next four-byte boundary relative to the body start.
func (r *reader) align() {
	r.off = min((r.off+3)&^3, len(r.b))
}
