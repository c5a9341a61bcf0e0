package unstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/CalebQ42/unstream/internal/buffer"
	"github.com/CalebQ42/unstream/internal/decompress"
)

func sample(n int) []byte {
	r := rand.New(rand.NewSource(int64(n)))
	var b bytes.Buffer
	for b.Len() < n {
		fmt.Fprintf(&b, "line %d: %x\n", r.Intn(1000), r.Int63n(1<<20))
	}
	return b.Bytes()[:n]
}

func brotliOf(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gzipOf(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zlibOf(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func run(t *testing.T, src Source, offset int64, op *Options) (Result, error) {
	t.Helper()
	d, err := New(src, offset, op)
	if err != nil {
		return Result{}, err
	}
	return d.Run()
}

func TestRoundTrip(t *testing.T) {
	data := sample(300 << 10)
	comp := brotliOf(t, data)
	var out bytes.Buffer
	op := DefaultOptions()
	op.BufferSize = 64 << 10
	op.Output = &out
	res, err := run(t, Bytes(comp), 0, op)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Success {
		t.Fatalf("status %v", res.Status)
	}
	if res.Consumed != int64(len(comp)) {
		t.Fatalf("consumed %d of %d", res.Consumed, len(comp))
	}
	if res.Produced != int64(len(data)) || !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("produced %d bytes, want %d", res.Produced, len(data))
	}
	if res.Windows < 1 {
		t.Fatal("output window never cycled")
	}
}

func TestSingleWindow(t *testing.T) {
	data := sample(10 << 10)
	var out bytes.Buffer
	op := DefaultOptions()
	op.Output = &out
	res, err := run(t, Bytes(brotliOf(t, data)), 0, op)
	if err != nil {
		t.Fatal(err)
	}
	if res.Windows != 0 || !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("%d windows, %d bytes", res.Windows, out.Len())
	}
}

func TestStartOffset(t *testing.T) {
	data := sample(50 << 10)
	comp := brotliOf(t, data)
	prefix := []byte("not part of the stream")
	var out bytes.Buffer
	op := DefaultOptions()
	op.BufferSize = 4096
	op.Output = &out
	res, err := run(t, Bytes(append(prefix, comp...)), int64(len(prefix)), op)
	if err != nil {
		t.Fatal(err)
	}
	if res.Consumed != int64(len(comp)) || !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("consumed %d, produced %d", res.Consumed, out.Len())
	}
}

func TestOffsetAtEnd(t *testing.T) {
	comp := brotliOf(t, sample(1024))
	res, err := run(t, Bytes(comp), int64(len(comp)), nil)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
	if res.Status == Success {
		t.Fatal("empty input reported success")
	}
}

func TestOffsetOutOfRange(t *testing.T) {
	for _, off := range []int64{-1, 11} {
		src := &countingSource{Bytes: Bytes("0123456789")}
		if _, err := New(src, off, nil); !errors.Is(err, ErrOffset) {
			t.Fatalf("offset %d: got %v, want ErrOffset", off, err)
		}
		if src.closes != 1 {
			t.Fatalf("source closed %d times", src.closes)
		}
	}
}

func TestCorruptInput(t *testing.T) {
	comp := gzipOf(t, sample(20<<10))
	comp[len(comp)-1] ^= 0xff
	op := DefaultOptions()
	op.Format = "gzip"
	res, err := run(t, Bytes(comp), 0, op)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
	if res.Status != Error {
		t.Fatalf("status %v", res.Status)
	}
}

func TestTruncatedInput(t *testing.T) {
	comp := gzipOf(t, sample(100<<10))
	op := DefaultOptions()
	op.Format = "gzip"
	_, err := run(t, Bytes(comp[:len(comp)/2]), 0, op)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestTruncatedBrotli(t *testing.T) {
	comp := brotliOf(t, sample(100<<10))
	_, err := run(t, Bytes(comp[:len(comp)-1]), 0, nil)
	if !errors.Is(err, ErrTruncated) && !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want a truncated or corrupt input error", err)
	}
}

func TestTrailingData(t *testing.T) {
	comp := zlibOf(t, sample(20<<10))
	comp = append(comp, bytes.Repeat([]byte{0xaa}, 100)...)
	op := DefaultOptions()
	op.Format = "zlib"
	_, err := run(t, Bytes(comp), 0, op)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v, want ErrCorrupt", err)
	}
}

func TestAutoFormat(t *testing.T) {
	data := sample(30 << 10)
	var out bytes.Buffer
	op := DefaultOptions()
	op.Format = "auto"
	op.BufferSize = 1000
	op.Output = &out
	if _, err := run(t, Bytes(gzipOf(t, data)), 0, op); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("produced %d bytes, want %d", out.Len(), len(data))
	}
}

type failingWriter struct {
	after int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("disk full")
	}
	f.after--
	return len(p), nil
}

func TestSinkFailure(t *testing.T) {
	op := DefaultOptions()
	op.BufferSize = 4096
	op.Output = &failingWriter{after: 2}
	res, err := run(t, Bytes(brotliOf(t, sample(100<<10))), 0, op)
	if !errors.Is(err, ErrWriteOutput) {
		t.Fatalf("got %v, want ErrWriteOutput", err)
	}
	if res.Produced != 2*4096 {
		t.Fatalf("produced %d bytes before failing", res.Produced)
	}
}

func TestMaxOutput(t *testing.T) {
	op := DefaultOptions()
	op.BufferSize = 4096
	op.MaxOutput = 10000
	res, err := run(t, Bytes(brotliOf(t, sample(100<<10))), 0, op)
	if !errors.Is(err, ErrWriteOutput) {
		t.Fatalf("got %v, want ErrWriteOutput", err)
	}
	if res.Status != NeedsMoreOutput {
		t.Fatalf("status %v", res.Status)
	}
	if res.Produced > op.MaxOutput {
		t.Fatalf("produced %d bytes over a %d byte limit", res.Produced, op.MaxOutput)
	}

	op.MaxOutput = 100 << 10
	if _, err = run(t, Bytes(brotliOf(t, sample(100<<10))), 0, op); err != nil {
		t.Fatalf("output at the limit: %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	data := sample(40 << 10)
	name := filepath.Join(t.TempDir(), "data.br")
	if err := os.WriteFile(name, brotliOf(t, data), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	op := DefaultOptions()
	op.Output = &out
	d, err := Open(name, 0, op)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = d.Run(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatal("output mismatch")
	}
	if _, err = Open(filepath.Join(t.TempDir(), "missing"), 0, op); !errors.Is(err, ErrOpenInput) {
		t.Fatalf("got %v, want ErrOpenInput", err)
	}
}

func TestVerboseLog(t *testing.T) {
	var log strings.Builder
	op := DefaultOptions()
	op.Verbose = true
	op.LogOutput = &log
	op.BufferSize = 4096
	if _, err := run(t, Bytes(brotliOf(t, sample(20<<10))), 0, op); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"output window: 4096 bytes", "window 1: flushed 4096 bytes", "decoder released", "input released"} {
		if !strings.Contains(log.String(), want) {
			t.Errorf("log is missing %q", want)
		}
	}
}

type countingSource struct {
	Bytes
	closes int
}

func (c *countingSource) Close() error {
	c.closes++
	return nil
}

type countingAlloc struct {
	fail bool
	gets int
	puts int
}

func (a *countingAlloc) Get(size int) ([]byte, error) {
	if a.fail {
		return nil, errors.New("no memory")
	}
	a.gets++
	return make([]byte, size), nil
}

func (a *countingAlloc) Put([]byte) {
	a.puts++
}

type countingEngine struct {
	decompress.Engine
	closes *int
}

func (c countingEngine) Close() error {
	*c.closes++
	return c.Engine.Close()
}

// scriptedEngine returns statuses from a list, writing fill bytes and
// consuming one input byte per step.
type scriptedEngine struct {
	script []Status
	fill   int
}

func (s *scriptedEngine) Step(in *buffer.Input, out *buffer.Output) Status {
	st := s.script[0]
	if len(s.script) > 1 {
		s.script = s.script[1:]
	}
	if in.Remaining() > 0 {
		in.ReadByte()
	}
	n := s.fill
	if st == NeedsMoreOutput {
		n = out.Remaining()
	}
	out.Advance(n)
	return st
}

func (s *scriptedEngine) Err() error   { return errors.New("scripted failure") }
func (s *scriptedEngine) Close() error { return nil }

func withEngine(t *testing.T, mk func(decompress.Format, decompress.Config) (decompress.Engine, error)) {
	old := newEngine
	newEngine = mk
	t.Cleanup(func() { newEngine = old })
}

func TestScriptedLoop(t *testing.T) {
	withEngine(t, func(decompress.Format, decompress.Config) (decompress.Engine, error) {
		return &scriptedEngine{
			script: []Status{NeedsMoreInput, NeedsMoreOutput, NeedsMoreOutput, NeedsMoreInput, Success},
			fill:   3,
		}, nil
	})
	var out bytes.Buffer
	op := DefaultOptions()
	op.BufferSize = 16
	op.Output = &out
	res, err := run(t, Bytes("abcde"), 0, op)
	if err != nil {
		t.Fatal(err)
	}
	if res.Windows != 2 || res.Produced != 16+16+3+3 || res.Consumed != 5 {
		t.Fatalf("%+v", res)
	}

	withEngine(t, func(decompress.Format, decompress.Config) (decompress.Engine, error) {
		return &scriptedEngine{script: []Status{NeedsMoreInput, Error}}, nil
	})
	if _, err = run(t, Bytes("abcde"), 0, op); !errors.Is(err, ErrCorrupt) || !strings.Contains(err.Error(), "scripted failure") {
		t.Fatalf("got %v", err)
	}

	withEngine(t, func(decompress.Format, decompress.Config) (decompress.Engine, error) {
		return &scriptedEngine{script: []Status{NeedsMoreInput}}, nil
	})
	if _, err = run(t, Bytes("ab"), 0, op); !errors.Is(err, ErrTruncated) {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestResourceRelease(t *testing.T) {
	valid := brotliOf(t, sample(20<<10))
	corrupt := gzipOf(t, sample(20<<10))
	corrupt[len(corrupt)-1] ^= 0xff
	tests := []struct {
		name      string
		input     []byte
		offset    int64
		format    string
		allocFail bool
		engineErr bool
		newErr    error
		runErr    error
		decoder   bool
	}{
		{name: "success", input: valid, decoder: true},
		{name: "truncated", input: valid, offset: int64(len(valid)), decoder: true, runErr: ErrTruncated},
		{name: "corrupt", input: corrupt, format: "gzip", decoder: true, runErr: ErrCorrupt},
		{name: "bad offset", input: valid, offset: -5, newErr: ErrOffset},
		{name: "no window", input: valid, allocFail: true, newErr: ErrAllocOutput},
		{name: "unknown format", input: valid, format: "rar", newErr: ErrCreateDecoder},
		{name: "no decoder", input: valid, engineErr: true, newErr: ErrCreateDecoder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decCloses, decCreated int
			withEngine(t, func(f decompress.Format, c decompress.Config) (decompress.Engine, error) {
				if tt.engineErr {
					return nil, errors.New("no decoder")
				}
				e, err := decompress.New(f, c)
				if err != nil {
					return nil, err
				}
				decCreated++
				return countingEngine{Engine: e, closes: &decCloses}, nil
			})
			src := &countingSource{Bytes: Bytes(tt.input)}
			alloc := &countingAlloc{fail: tt.allocFail}
			op := DefaultOptions()
			op.Allocator = alloc
			op.BufferSize = 4096
			if tt.format != "" {
				op.Format = tt.format
			}
			d, err := New(src, tt.offset, op)
			if tt.newErr != nil {
				if !errors.Is(err, tt.newErr) {
					t.Fatalf("New: got %v, want %v", err, tt.newErr)
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}
				if _, err = d.Run(); !errors.Is(err, tt.runErr) {
					t.Fatalf("Run: got %v, want %v", err, tt.runErr)
				}
				if err = d.Close(); err != nil {
					t.Fatal(err)
				}
				if _, err = d.Run(); !errors.Is(err, ErrClosed) {
					t.Fatalf("second Run: got %v", err)
				}
			}
			if src.closes != 1 {
				t.Errorf("source closed %d times", src.closes)
			}
			if alloc.puts != alloc.gets {
				t.Errorf("window allocated %d times, released %d times", alloc.gets, alloc.puts)
			}
			if decCloses != decCreated {
				t.Errorf("decoder created %d times, closed %d times", decCreated, decCloses)
			}
			if tt.decoder && decCreated != 1 {
				t.Errorf("decoder created %d times", decCreated)
			}
		})
	}
}

func TestCloseBeforeRun(t *testing.T) {
	src := &countingSource{Bytes: Bytes(brotliOf(t, sample(100)))}
	d, err := New(src, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Close(); err != nil {
		t.Fatal(err)
	}
	d.Close()
	if src.closes != 1 {
		t.Fatalf("source closed %d times", src.closes)
	}
	if _, err = d.Run(); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestBytesSource(t *testing.T) {
	b := Bytes("hello")
	p := make([]byte, 3)
	if n, err := b.ReadAt(p, 3); n != 2 || err != io.EOF {
		t.Fatalf("short ReadAt: %d, %v", n, err)
	}
	if _, err := b.ReadAt(p, -1); err == nil {
		t.Fatal("negative offset accepted")
	}
	if b.At(1) != 'e' || b.Len() != 5 {
		t.Fatal("bad addressing")
	}
}
