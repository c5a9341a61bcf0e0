package unstream

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// Source is an immutable, randomly addressable compressed payload. A Driver
// owns its Source and closes it exactly once.
type Source interface {
	io.ReaderAt
	io.Closer
	Len() int
	At(i int) byte
}

// OpenFile memory-maps the named file read-only.
func OpenFile(name string) (Source, error) {
	r, err := mmap.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenInput, err)
	}
	return r, nil
}

// Bytes is an in-memory Source. Close is a no-op.
type Bytes []byte

func (b Bytes) Len() int {
	return len(b)
}

func (b Bytes) At(i int) byte {
	return b[i]
}

func (b Bytes) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("unstream: negative offset")
	}
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b Bytes) Close() error {
	return nil
}
