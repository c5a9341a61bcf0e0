package decompress

import (
	"bytes"
	"fmt"

	"github.com/CalebQ42/unstream/internal/buffer"
)

// Format identifies a compressed stream format.
type Format uint8

// The supported formats.
const (
	Auto Format = iota
	Brotli
	Gzip
	Zlib
	Deflate
	Zstd
	Xz
	Lzma
	Lz4
	Lzo
	Snappy
	S2
	Bzip2
)

var formatNames = [...]string{
	Auto:    "auto",
	Brotli:  "brotli",
	Gzip:    "gzip",
	Zlib:    "zlib",
	Deflate: "deflate",
	Zstd:    "zstd",
	Xz:      "xz",
	Lzma:    "lzma",
	Lz4:     "lz4",
	Lzo:     "lzo",
	Snappy:  "snappy",
	S2:      "s2",
	Bzip2:   "bzip2",
}

var constructors = map[Format]func(Config) (Engine, error){
	Brotli:  newBrotli,
	Gzip:    newGzip,
	Zlib:    newZlib,
	Deflate: newFlate,
	Zstd:    newZstd,
	Xz:      newXz,
	Lzma:    newLzma,
	Lz4:     newLz4,
	Lzo:     newLzo,
	Snappy:  newSnappy,
	S2:      newS2,
	Bzip2:   newBzip2,
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Formats lists every format name ParseFormat accepts.
func Formats() []string {
	out := make([]string, len(formatNames))
	copy(out, formatNames[:])
	return out
}

// ParseFormat looks a format up by name.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown format %q", name)
}

// New creates an engine for f. Auto picks the format on the first Step.
func New(f Format, c Config) (Engine, error) {
	if f == Auto {
		return &autoEngine{c: c}, nil
	}
	cons, ok := constructors[f]
	if !ok {
		return nil, fmt.Errorf("invalid compression type: %d", f)
	}
	return cons(c)
}

// magicLen is how many bytes Detect needs to see.
const magicLen = 10

var magics = []struct {
	f     Format
	magic []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Lz4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{Snappy, []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}},
	{S2, []byte{0xff, 0x06, 0x00, 0x00, 'S', '2', 's', 'T', 'w', 'O'}},
}

// Detect guesses the format from the first bytes of a stream. Brotli has no
// magic number, so anything unrecognized is assumed to be brotli.
func Detect(head []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.f
		}
	}
	switch {
	case len(head) >= 4 && head[0] == 'B' && head[1] == 'Z' && head[2] == 'h' && head[3] >= '1' && head[3] <= '9':
		return Bzip2
	case len(head) >= 2 && head[0]&0x0f == 8 && head[0]>>4 <= 7 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0:
		return Zlib
	case len(head) >= 3 && head[0] == 0x5d && head[1] == 0 && head[2] == 0:
		return Lzma
	}
	return Brotli
}

// autoEngine defers choosing a codec until it can peek at the input.
type autoEngine struct {
	c Config
	Engine
}

func (a *autoEngine) Step(in *buffer.Input, out *buffer.Output) Status {
	if a.Engine == nil {
		f := Detect(in.Peek(magicLen))
		e, err := New(f, a.c)
		if err != nil {
			e = failedEngine{fmt.Errorf("%v: %w", f, err)}
		}
		a.Engine = e
	}
	return a.Engine.Step(in, out)
}

func (a *autoEngine) Err() error {
	if a.Engine == nil {
		return nil
	}
	return a.Engine.Err()
}

func (a *autoEngine) Close() error {
	if a.Engine == nil {
		return nil
	}
	return a.Engine.Close()
}

// failedEngine stands in for a detected format that couldn't be constructed.
type failedEngine struct {
	err error
}

func (f failedEngine) Step(*buffer.Input, *buffer.Output) Status {
	return Error
}

func (f failedEngine) Err() error {
	return f.err
}

func (failedEngine) Close() error {
	return nil
}
