package buffer

import "io"

// Output is a fixed-capacity window that decoders write into. Only the write
// cursor is stored, so cursor + remaining always equals the capacity.
type Output struct {
	buf []byte
	pos int
}

func NewOutput(buf []byte) *Output {
	return &Output{buf: buf}
}

// Cap is the size of the whole window.
func (o *Output) Cap() int {
	return len(o.buf)
}

// Len is the number of bytes written since the last Reset.
func (o *Output) Len() int {
	return o.pos
}

// Remaining is the writable capacity left.
func (o *Output) Remaining() int {
	return len(o.buf) - o.pos
}

// Window is the writable sub-range between the cursor and the end.
func (o *Output) Window() []byte {
	return o.buf[o.pos:]
}

// Filled is the bytes written since the last Reset.
func (o *Output) Filled() []byte {
	return o.buf[:o.pos]
}

// Advance moves the cursor past n bytes written directly into Window.
func (o *Output) Advance(n int) {
	if n < 0 || n > o.Remaining() {
		panic("buffer: advance past end of output window")
	}
	o.pos += n
}

// Write copies p into the window. If p does not fit, as much as fits is
// written and io.ErrShortBuffer is returned.
func (o *Output) Write(p []byte) (int, error) {
	n := copy(o.buf[o.pos:], p)
	o.pos += n
	if n < len(p) {
		return n, io.ErrShortBuffer
	}
	return n, nil
}

// WriteTo flushes the filled bytes to w. The window is left as is; call Reset
// afterwards to reuse it.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	if o.pos == 0 {
		return 0, nil
	}
	n, err := w.Write(o.buf[:o.pos])
	if err == nil && n < o.pos {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// Reset moves the cursor back to the start of the window.
func (o *Output) Reset() {
	o.pos = 0
}

// Bytes returns the underlying buffer, for handing it back to its allocator.
func (o *Output) Bytes() []byte {
	return o.buf
}
