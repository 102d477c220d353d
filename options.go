// SPDX-License-Identifier: GPL-2.0-only

package tamp

// Options configures a Compressor or Decompressor.
//
// Window and Literal only matter to the Compressor: they pick the stream's
// dictionary size (1<<Window bytes) and the bit width of literal bytes, and
// are written into the stream header. A Decompressor reads Window, Literal,
// and Extended back out of the header it is given; Options.Window,
// Options.Literal, and Options.Extended are ignored when decompressing.
// Options.Dictionary is used by both: if set, it is used verbatim instead
// of the default generated dictionary, and it must be exactly 1<<Window
// bytes long.
type Options struct {
	// Window is the base-2 log of the dictionary size, 8..15 inclusive.
	Window int
	// Literal is the bit width of a raw literal byte, 5..8 inclusive.
	Literal int
	// Extended enables RLE and extended-match tokens.
	Extended bool
	// Dictionary, if non-nil, seeds the window instead of the default
	// deterministic dictionary. Must have length 1<<Window.
	Dictionary []byte
}

// DefaultOptions returns the conventional Window=10, Literal=8 configuration.
func DefaultOptions() *Options {
	return &Options{Window: 10, Literal: 8}
}

func isValidWindow(w int) bool {
	return w >= 8 && w <= 15
}

func isValidLiteral(l int) bool {
	return l >= 5 && l <= 8
}
