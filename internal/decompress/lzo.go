//go:build !no_gpl

package decompress

import (
	"bytes"
	"io"

	"github.com/rasky/go-lzo"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// go-lzo only decodes whole blocks, so the first step decodes everything and
// later steps hand it out a window at a time.
func newLzo(Config) (Engine, error) {
	return &readerEngine{
		name: "lzo",
		open: func(in *buffer.Input) (io.Reader, error) {
			data, err := lzo.Decompress1X(in, int(in.Remaining()), 0)
			if err != nil {
				return nil, err
			}
			return bytes.NewReader(data), nil
		},
	}, nil
}
