// SPDX-License-Identifier: GPL-2.0-only

// Command tamp compresses and decompresses streams in the Tamp format.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tamp-go/tamp"
)

var log = logrus.New()

type flags struct {
	window     int
	literal    int
	extended   bool
	inputPath  string
	outputPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("tamp failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tamp",
		Short:         "Compress and decompress streams in the Tamp format",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompressCmd(), newDecompressCmd())
	return root
}

func newCompressCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Compress stdin (or --input) to stdout (or --output)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(f)
		},
	}
	bindCommonFlags(cmd, f)
	cmd.Flags().BoolVarP(&f.extended, "extended", "x", false, "enable RLE and extended-match tokens")
	return cmd
}

func newDecompressCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "decompress",
		Short: "Decompress stdin (or --input) to stdout (or --output)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompress(f)
		},
	}
	cmd.Flags().StringVarP(&f.inputPath, "input", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func bindCommonFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().IntVarP(&f.window, "window", "w", 10, "dictionary window size, log2 (8-15)")
	cmd.Flags().IntVarP(&f.literal, "literal", "l", 8, "literal bit width (5-8)")
	cmd.Flags().StringVarP(&f.inputPath, "input", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "output file (default stdout)")
}

func runCompress(f *flags) error {
	in, out, closeFn, err := openStreams(f)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := &tamp.Options{Window: f.window, Literal: f.literal, Extended: f.extended}
	c, err := tamp.NewCompressor(out, opts)
	if err != nil {
		return fmt.Errorf("tamp: new compressor: %w", err)
	}

	buf := make([]byte, 32*1024)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := c.Write(buf[:n]); werr != nil {
				return fmt.Errorf("tamp: compress: %w", werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("tamp: read input: %w", rerr)
		}
	}
	if _, err := c.Close(); err != nil {
		return fmt.Errorf("tamp: close: %w", err)
	}
	return nil
}

func runDecompress(f *flags) error {
	in, out, closeFn, err := openStreams(f)
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := tamp.NewDecompressor(in, nil)
	if err != nil {
		return fmt.Errorf("tamp: new decompressor: %w", err)
	}

	buf := make([]byte, 32*1024)
	for {
		n, derr := d.ReadInto(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("tamp: write output: %w", werr)
			}
		}
		if derr != nil {
			return fmt.Errorf("tamp: decompress: %w", derr)
		}
		if n == 0 {
			break
		}
	}
	return nil
}

func openStreams(f *flags) (io.Reader, io.Writer, func(), error) {
	in := io.Reader(os.Stdin)
	out := io.Writer(os.Stdout)
	closers := make([]io.Closer, 0, 2)

	if f.inputPath != "" {
		fh, err := os.Open(f.inputPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tamp: open input: %w", err)
		}
		in = fh
		closers = append(closers, fh)
	}
	if f.outputPath != "" {
		fh, err := os.Create(f.outputPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("tamp: create output: %w", err)
		}
		out = fh
		closers = append(closers, fh)
	}

	return in, out, func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("close failed")
			}
		}
	}, nil
}
