package testutil

import (
	"errors"
	"io"
)

// ErrSourceFailed is returned by FailingSource once its data runs out.
var ErrSourceFailed = errors.New("disk on fire")

// FailingSource serves data and then fails with ErrSourceFailed instead of
// reporting EOF. It implements io.Reader and io.ReaderAt.
type FailingSource struct {
	data []byte
	off  int
}

// NewFailingSource returns a source that fails after len(data) bytes.
func NewFailingSource(data []byte) *FailingSource {
	return &FailingSource{data: data}
}

// Read implements io.Reader.
func (s *FailingSource) Read(p []byte) (int, error) {
	if s.off >= len(s.data) {
		return 0, ErrSourceFailed
	}
	n := copy(p, s.data[s.off:])
	s.off += n
	return n, nil
}

// ReadAt implements io.ReaderAt.
func (s *FailingSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if off >= int64(len(s.data)) {
		return 0, ErrSourceFailed
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, ErrSourceFailed
	}
	return n, nil
}

var (
	_ io.Reader   = (*FailingSource)(nil)
	_ io.ReaderAt = (*FailingSource)(nil)
)
