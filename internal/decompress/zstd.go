package decompress

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// zstdWindow is the largest window accepted without Config.LargeWindow. Every
// conforming decoder must support at least this much.
const zstdWindow = 8 << 20

func newZstd(c Config) (Engine, error) {
	window := uint64(zstdWindow)
	if c.LargeWindow {
		window = uint64(zstd.MaxWindowSize)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxWindow(window),
	)
	if err != nil {
		return nil, err
	}
	return &readerEngine{
		name: "zstd",
		open: func(in *buffer.Input) (io.Reader, error) {
			return dec, dec.Reset(in)
		},
		release: func() error {
			dec.Close()
			return nil
		},
	}, nil
}
