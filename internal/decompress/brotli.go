package decompress

import (
	"io"

	"github.com/andybalholm/brotli"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// brotliExcess is the error text brotli.Reader uses when a finished stream is
// followed by more input. The error value itself isn't exported.
const brotliExcess = "brotli: excessive input"

// probeSource serves the real input and then exactly one extra byte.
//
// brotli.Reader reports io.EOF whenever its source runs dry at the start of a
// Read, whether or not the stream finished. A finished decoder rejects the
// probe byte as excess input; an unfinished one eats it and keeps asking.
type probeSource struct {
	in     *buffer.Input
	probed bool
	eof    bool
}

func (p *probeSource) Read(b []byte) (int, error) {
	if p.in.Remaining() > 0 {
		return p.in.Read(b)
	}
	if p.probed {
		p.eof = true
		return 0, io.EOF
	}
	if len(b) == 0 {
		return 0, nil
	}
	p.probed = true
	b[0] = 0
	return 1, nil
}

// The brotli library has no switch for large-window streams, so c.LargeWindow
// has no effect here.
func newBrotli(c Config) (Engine, error) {
	src := &probeSource{}
	return &readerEngine{
		name: "brotli",
		open: func(in *buffer.Input) (io.Reader, error) {
			src.in = in
			return brotli.NewReader(src), nil
		},
		translate: func(err error) error {
			switch {
			case err == nil:
				return nil
			case err == io.EOF && src.eof:
				// The decoder ate the probe and is still hungry.
				return io.ErrUnexpectedEOF
			case src.probed && err.Error() == brotliExcess:
				return io.EOF
			}
			return err
		},
	}, nil
}
