package decompress

import (
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/CalebQ42/unstream/internal/buffer"
)

func newS2(Config) (Engine, error) {
	return &readerEngine{
		name: "s2",
		open: func(in *buffer.Input) (io.Reader, error) {
			return s2.NewReader(in), nil
		},
	}, nil
}
