package decompress

import (
	"errors"
	"fmt"
	"io"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// Engine is an incremental decoder. Each Step consumes input through in,
// writes into the window of out, and reports a Status.
type Engine interface {
	Step(in *buffer.Input, out *buffer.Output) Status
	// Err is the reason for an Error status.
	Err() error
	Close() error
}

// Config holds settings shared by all engines.
type Config struct {
	// LargeWindow accepts streams whose window exceeds the format's usual
	// decoder limit.
	LargeWindow bool
}

// ErrStalled is returned by Err when a codec stopped asking for input while
// input was still left.
var ErrStalled = errors.New("decoder stopped before the end of input")

// maxEmptyReads is how many consecutive zero-byte reads are tolerated before
// a step gives up with io.ErrNoProgress.
const maxEmptyReads = 100

// readerEngine drives a codec that's exposed as an io.Reader over the
// compressed input.
type readerEngine struct {
	name string
	// open builds the codec's reader on the first Step.
	open func(in *buffer.Input) (io.Reader, error)
	// translate, if set, rewrites reader errors before they become a Status.
	translate func(error) error
	// release, if set, frees the codec instead of closing the reader.
	release func() error

	rdr    io.Reader
	final  Status
	done   bool
	err    error
	closed bool
}

func (e *readerEngine) Step(in *buffer.Input, out *buffer.Output) Status {
	if e.done {
		return e.final
	}
	if e.rdr == nil {
		r, err := e.open(in)
		if err == io.EOF {
			// Headers are read eagerly by some codecs; running out there
			// is truncation, not a clean end.
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return e.finish(in, err)
		}
		e.rdr = r
	}
	return e.finish(in, fill(e.rdr, out))
}

func (e *readerEngine) finish(in *buffer.Input, err error) Status {
	if e.translate != nil {
		err = e.translate(err)
	}
	st := statusOf(err)
	if st == NeedsMoreInput && in.Remaining() > 0 {
		err = ErrStalled
		st = Error
	}
	if st == Error {
		e.err = fmt.Errorf("%s: %w", e.name, err)
	}
	if st.Terminal() {
		e.final = st
		e.done = true
	}
	return st
}

func (e *readerEngine) Err() error {
	return e.err
}

func (e *readerEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.release != nil {
		return e.release()
	}
	if c, ok := e.rdr.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// fill reads from r until out's window is full or r fails. A nil return means
// the window is full.
func fill(r io.Reader, out *buffer.Output) error {
	empty := 0
	for out.Remaining() > 0 {
		n, err := r.Read(out.Window())
		out.Advance(n)
		if err != nil {
			return err
		}
		if n > 0 {
			empty = 0
			continue
		}
		empty++
		if empty >= maxEmptyReads {
			return io.ErrNoProgress
		}
	}
	return nil
}

// statusOf maps a reader's error onto the step contract.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return NeedsMoreOutput
	case err == io.EOF:
		return Success
	case errors.Is(err, io.ErrUnexpectedEOF):
		return NeedsMoreInput
	default:
		return Error
	}
}
