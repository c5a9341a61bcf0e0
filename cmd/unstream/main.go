package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/CalebQ42/unstream"
)

var (
	app         = kingpin.New("unstream", "Decompresses FILE starting at OFFSET through a fixed-size output window.")
	file        = app.Arg("file", "Compressed input file.").Required().String()
	offset      = app.Arg("offset", "Byte offset in FILE where the compressed stream starts.").Required().Int64()
	format      = app.Flag("format", "Stream format.").Short('f').Default("brotli").Enum(unstream.Formats()...)
	output      = app.Flag("output", "Write the decompressed data to this file instead of discarding it.").Short('o').PlaceHolder("PATH").String()
	bufferSize  = app.Flag("buffer", "Size of the output window.").Default("5MiB").Bytes()
	maxOutput   = app.Flag("max-output", "Fail once more than this much output is produced. 0 disables the limit.").Default("0").Bytes()
	largeWindow = app.Flag("large-window", "Accept streams with windows larger than the format's usual limit.").Default("true").Bool()
	verbose     = app.Flag("verbose", "Log every window and resource.").Short('v').Bool()
)

func main() {
	if _, err := app.Parse(os.Args[1:]); err != nil {
		app.FatalUsage("%s\n", err.Error())
	}
	os.Exit(run())
}

func run() int {
	op := unstream.DefaultOptions()
	op.Format = *format
	op.BufferSize = int(*bufferSize)
	op.MaxOutput = int64(*maxOutput)
	op.LargeWindow = *largeWindow
	op.Verbose = *verbose
	op.LogOutput = os.Stderr
	var out *os.File
	if *output != "" {
		var err error
		out, err = os.Create(*output)
		if err != nil {
			fmt.Fprintln(os.Stderr, "can't create output file:", err)
			return 1
		}
		defer func() {
			if out != nil {
				out.Close()
			}
		}()
		op.Output = out
	}
	n := time.Now()
	d, err := unstream.Open(*file, *offset, op)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	res, err := d.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if out != nil {
		err = out.Close()
		out = nil
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to write output:", err)
			return 1
		}
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "%d bytes in, %d bytes out, took %v\n", res.Consumed, res.Produced, time.Since(n))
	}
	fmt.Fprintln(os.Stderr, "done")
	return 0
}
