package decompress

import (
	"compress/bzip2"
	"io"

	"github.com/CalebQ42/unstream/internal/buffer"
)

func newBzip2(Config) (Engine, error) {
	return &readerEngine{
		name: "bzip2",
		open: func(in *buffer.Input) (io.Reader, error) {
			return bzip2.NewReader(in), nil
		},
	}, nil
}
