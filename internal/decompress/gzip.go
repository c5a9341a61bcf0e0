package decompress

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// Concatenated members are decoded as one stream, same as gunzip.
func newGzip(Config) (Engine, error) {
	return &readerEngine{
		name: "gzip",
		open: func(in *buffer.Input) (io.Reader, error) {
			return gzip.NewReader(in)
		},
	}, nil
}
