package unstream

import (
	"io"

	"github.com/CalebQ42/unstream/internal/buffer"
)

const (
	// DefaultBufferSize is the default output window size.
	DefaultBufferSize = 5 << 20
	// MaxBufferSize is the largest window the default allocator hands out.
	MaxBufferSize = 1 << 30
)

var defaultPool = buffer.NewPool(MaxBufferSize)

// Allocator provides the output window. Put is called exactly once for every
// buffer a successful Get returned.
type Allocator interface {
	Get(size int) ([]byte, error)
	Put([]byte)
}

type Options struct {
	Output      io.Writer //Where decompressed windows are flushed. Defaults to io.Discard.
	LogOutput   io.Writer //Where the verbose log should write. Defaults to the standard logger.
	Allocator   Allocator //Provides the output window. Defaults to a shared pool.
	Format      string    //Stream format, one of Formats(). Defaults to brotli.
	BufferSize  int       //Size of the output window. Defaults to DefaultBufferSize.
	MaxOutput   int64     //Fail with ErrWriteOutput once more than this many bytes are produced. 0 means no limit.
	LargeWindow bool      //Accept streams whose window is larger than the format's usual decoder limit.
	Verbose     bool      //Log every window and every acquired or released resource.
}

// DefaultOptions decodes brotli with large windows enabled into a 5 MiB window
// and discards the output.
func DefaultOptions() *Options {
	return &Options{
		Format:      "brotli",
		BufferSize:  DefaultBufferSize,
		LargeWindow: true,
	}
}
