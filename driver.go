package unstream

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/CalebQ42/unstream/internal/buffer"
	"github.com/CalebQ42/unstream/internal/decompress"
)

// Status is the decoder's answer to a single step.
type Status = decompress.Status

const (
	NeedsMoreInput  = decompress.NeedsMoreInput
	NeedsMoreOutput = decompress.NeedsMoreOutput
	Success         = decompress.Success
	Error           = decompress.Error
)

// Formats lists the accepted values of Options.Format.
func Formats() []string {
	return decompress.Formats()
}

var newEngine = decompress.New

// Result describes a finished Run.
type Result struct {
	Status   Status //Status the decode loop ended on.
	Consumed int64  //Input bytes consumed after the start offset.
	Produced int64  //Output bytes flushed to Options.Output.
	Windows  int    //Times the output window filled up and was reset.
}

// Driver owns the input source, the output window and the decoder for a
// single decompression pass. Each resource carries its own acquired flag so
// Close only ever releases what was actually acquired, and only once.
type Driver struct {
	op    Options
	log   *log.Logger
	alloc Allocator
	sink  io.Writer

	src Source
	in  *buffer.Input
	out *buffer.Output
	dec decompress.Engine

	hasSource  bool
	hasOutput  bool
	hasDecoder bool
	ran        bool
	closed     bool
}

// Open maps the named file and builds a Driver that starts decoding at offset.
func Open(name string, offset int64, op *Options) (*Driver, error) {
	src, err := OpenFile(name)
	if err != nil {
		return nil, err
	}
	return New(src, offset, op)
}

// New builds a Driver over src, starting at offset. The Driver takes ownership
// of src: it's closed by Close, or before New returns if anything fails.
func New(src Source, offset int64, op *Options) (*Driver, error) {
	if op == nil {
		op = DefaultOptions()
	}
	d := &Driver{
		op:        *op,
		src:       src,
		hasSource: true,
		alloc:     op.Allocator,
		sink:      op.Output,
	}
	if d.alloc == nil {
		d.alloc = defaultPool
	}
	if d.sink == nil {
		d.sink = io.Discard
	}
	if d.op.Format == "" {
		d.op.Format = "brotli"
	}
	if d.op.BufferSize == 0 {
		d.op.BufferSize = DefaultBufferSize
	}
	if op.LogOutput != nil {
		d.log = log.New(op.LogOutput, "unstream: ", log.LstdFlags)
	} else {
		d.log = log.Default()
	}
	err := d.acquire(offset)
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Driver) logf(format string, v ...any) {
	if d.op.Verbose {
		d.log.Printf(format, v...)
	}
}

// acquire takes the output window and the decoder, in that order.
func (d *Driver) acquire(offset int64) error {
	in, err := buffer.NewInput(d.src, offset)
	if err != nil {
		return fmt.Errorf("%w: %d is outside [0, %d]", ErrOffset, offset, d.src.Len())
	}
	d.in = in
	d.logf("input: %d bytes, starting at %d", in.Len(), offset)
	buf, err := d.alloc.Get(d.op.BufferSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAllocOutput, err)
	}
	if len(buf) == 0 {
		d.alloc.Put(buf)
		return fmt.Errorf("%w: empty window", ErrAllocOutput)
	}
	d.out = buffer.NewOutput(buf)
	d.hasOutput = true
	d.logf("output window: %d bytes", len(buf))
	f, err := decompress.ParseFormat(d.op.Format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateDecoder, err)
	}
	dec, err := newEngine(f, decompress.Config{LargeWindow: d.op.LargeWindow})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateDecoder, err)
	}
	d.dec = dec
	d.hasDecoder = true
	d.logf("decoder: %v (large window: %v)", f, d.op.LargeWindow)
	return nil
}

// Close releases the decoder, the output window and the source, in that
// order. It's safe to call more than once.
func (d *Driver) Close() error {
	var errs []error
	if d.hasDecoder {
		d.hasDecoder = false
		if err := d.dec.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing decoder: %w", err))
		}
		d.dec = nil
		d.logf("decoder released")
	}
	if d.hasOutput {
		d.hasOutput = false
		d.alloc.Put(d.out.Bytes())
		d.out = nil
		d.logf("output window released")
	}
	if d.hasSource {
		d.hasSource = false
		if err := d.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing input: %w", err))
		}
		d.src = nil
		d.logf("input released")
	}
	d.closed = true
	return errors.Join(errs...)
}

// Run decodes the whole input, flushing every filled window to
// Options.Output. All resources are released before Run returns, whatever the
// outcome, so a Driver can only Run once.
func (d *Driver) Run() (res Result, err error) {
	if d.ran || d.closed {
		return res, ErrClosed
	}
	d.ran = true
	defer func() {
		cerr := d.Close()
		if err == nil && cerr != nil {
			err = cerr
		}
	}()
	res.Status, err = d.loop(&res)
	res.Consumed = d.in.Consumed()
	d.logf("finished: %v, %d bytes in, %d bytes out, %d windows", res.Status, res.Consumed, res.Produced, res.Windows)
	return res, err
}

func (d *Driver) loop(res *Result) (Status, error) {
	status := NeedsMoreInput
loop:
	for {
		switch status {
		case NeedsMoreInput:
			if d.in.Remaining() == 0 {
				return Error, fmt.Errorf("%w: decoder needs more than %d bytes", ErrTruncated, d.in.Consumed())
			}
		case NeedsMoreOutput:
			if d.overLimit(res) {
				break loop
			}
			if err := d.flush(res); err != nil {
				return Error, err
			}
			d.out.Reset()
			res.Windows++
		default:
			break loop
		}
		status = d.dec.Step(d.in, d.out)
	}
	switch status {
	case NeedsMoreOutput:
		return status, fmt.Errorf("%w: output exceeds %d bytes", ErrWriteOutput, d.op.MaxOutput)
	case Success:
		if d.overLimit(res) {
			return Error, fmt.Errorf("%w: output exceeds %d bytes", ErrWriteOutput, d.op.MaxOutput)
		}
		if err := d.flush(res); err != nil {
			return Error, err
		}
		if rem := d.in.Remaining(); rem > 0 {
			return Error, fmt.Errorf("%w: %d bytes after the end of the stream", ErrCorrupt, rem)
		}
		return status, nil
	}
	return status, fmt.Errorf("%w: %v", ErrCorrupt, d.dec.Err())
}

func (d *Driver) overLimit(res *Result) bool {
	return d.op.MaxOutput > 0 && res.Produced+int64(d.out.Len()) > d.op.MaxOutput
}

// flush writes the filled part of the window to the sink.
func (d *Driver) flush(res *Result) error {
	n, err := d.out.WriteTo(d.sink)
	res.Produced += n
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	d.logf("window %d: flushed %d bytes, %d input bytes left", res.Windows+1, n, d.in.Remaining())
	return nil
}
