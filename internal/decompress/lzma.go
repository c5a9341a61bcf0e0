package decompress

import (
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// Classic .lzma (LZMA "alone") streams.
func newLzma(Config) (Engine, error) {
	return &readerEngine{
		name: "lzma",
		open: func(in *buffer.Input) (io.Reader, error) {
			return lzma.NewReader(in)
		},
	}, nil
}
