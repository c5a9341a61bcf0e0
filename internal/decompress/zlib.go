package decompress

import (
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/CalebQ42/unstream/internal/buffer"
)

func newZlib(Config) (Engine, error) {
	return &readerEngine{
		name: "zlib",
		open: func(in *buffer.Input) (io.Reader, error) {
			return zlib.NewReader(in)
		},
	}, nil
}
