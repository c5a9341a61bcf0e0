package decompress

import (
	"io"

	"github.com/ulikunitz/xz"

	"github.com/CalebQ42/unstream/internal/buffer"
)

func newXz(Config) (Engine, error) {
	return &readerEngine{
		name: "xz",
		open: func(in *buffer.Input) (io.Reader, error) {
			return xz.NewReader(in)
		},
	}, nil
}
