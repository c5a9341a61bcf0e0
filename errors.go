package unstream

import "errors"

// Every fatal condition wraps exactly one of these. Check with errors.Is.
var (
	// ErrOpenInput happens when the input source can't be opened or mapped.
	ErrOpenInput = errors.New("can't open input file")
	// ErrOffset happens when the start offset is negative or past the end of the input.
	ErrOffset = errors.New("offset out of range")
	// ErrAllocOutput happens when the output window can't be allocated.
	ErrAllocOutput = errors.New("out of memory / output buffer")
	// ErrCreateDecoder happens when the decoder can't be constructed.
	ErrCreateDecoder = errors.New("out of memory / decoder")
	// ErrTruncated happens when the decoder needs more input but none is left.
	ErrTruncated = errors.New("truncated input")
	// ErrWriteOutput happens when output can't be delivered to the sink, or
	// exceeds Options.MaxOutput.
	ErrWriteOutput = errors.New("failed to write output")
	// ErrCorrupt happens when the decoder rejects the stream, or the stream
	// ends before the input does.
	ErrCorrupt = errors.New("corrupt input")
	// ErrClosed is returned by Run on a Driver that already ran or was closed.
	ErrClosed = errors.New("driver already run or closed")
)
