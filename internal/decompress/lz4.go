package decompress

import (
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/CalebQ42/unstream/internal/buffer"
)

func newLz4(Config) (Engine, error) {
	return &readerEngine{
		name: "lz4",
		open: func(in *buffer.Input) (io.Reader, error) {
			return lz4.NewReader(in), nil
		},
	}, nil
}
