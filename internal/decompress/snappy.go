package decompress

import (
	"io"

	"github.com/golang/snappy"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// Framed snappy only. Raw block snappy carries no length framing to stream on.
func newSnappy(Config) (Engine, error) {
	return &readerEngine{
		name: "snappy",
		open: func(in *buffer.Input) (io.Reader, error) {
			return snappy.NewReader(in), nil
		},
	}, nil
}
