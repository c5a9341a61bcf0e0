package decompress

import (
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// Raw DEFLATE (RFC 1951) with no container.
func newFlate(Config) (Engine, error) {
	return &readerEngine{
		name: "deflate",
		open: func(in *buffer.Input) (io.Reader, error) {
			return flate.NewReader(in), nil
		},
	}, nil
}
