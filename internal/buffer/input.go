package buffer

import (
	"errors"
	"io"
)

// ErrOffset is returned when the start offset lies outside the source.
var ErrOffset = errors.New("offset out of range")

// Source is an immutable, randomly addressable byte range.
type Source interface {
	io.ReaderAt
	Len() int
	At(i int) byte
}

// Input is a read-only view over a Source with a cursor. Reading through it is
// the only way the cursor moves.
type Input struct {
	src   Source
	size  int64
	start int64
	off   int64
}

// NewInput creates an Input positioned at start.
func NewInput(src Source, start int64) (*Input, error) {
	size := int64(src.Len())
	if start < 0 || start > size {
		return nil, ErrOffset
	}
	return &Input{
		src:   src,
		size:  size,
		start: start,
		off:   start,
	}, nil
}

// Len is the total length of the underlying source.
func (i *Input) Len() int64 {
	return i.size
}

// Remaining is the number of bytes not yet consumed.
func (i *Input) Remaining() int64 {
	return i.size - i.off
}

// Consumed is the number of bytes read since the start offset.
func (i *Input) Consumed() int64 {
	return i.off - i.start
}

func (i *Input) Read(b []byte) (int, error) {
	if i.off >= i.size {
		return 0, io.EOF
	}
	if rem := i.Remaining(); int64(len(b)) > rem {
		b = b[:rem]
	}
	n, err := i.src.ReadAt(b, i.off)
	i.off += int64(n)
	if err == io.EOF && n == len(b) {
		err = nil
	}
	return n, err
}

// ReadByte lets bit-oriented decoders pull input one byte at a time instead of
// wrapping the Input in a bufio.Reader, so they never read past what they use.
func (i *Input) ReadByte() (byte, error) {
	if i.off >= i.size {
		return 0, io.EOF
	}
	b := i.src.At(int(i.off))
	i.off++
	return b, nil
}

// Peek returns up to n upcoming bytes without consuming them.
func (i *Input) Peek(n int) []byte {
	if rem := i.Remaining(); int64(n) > rem {
		n = int(rem)
	}
	b := make([]byte, n)
	m, _ := i.src.ReadAt(b, i.off)
	return b[:m]
}
