// SPDX-License-Identifier: GPL-2.0-only

package tamp

import "errors"

// Sentinel errors returned by the compressor and decompressor.
var (
	// ErrInvalidParameter is returned when Window, Literal, or a supplied
	// Dictionary has an invalid size for the requested Window.
	ErrInvalidParameter = errors.New("tamp: invalid parameter")

	// ErrExcessBits is returned when a literal byte does not fit in the
	// configured Literal bit width.
	ErrExcessBits = errors.New("tamp: literal has excess bits")

	// ErrMalformedStream is returned when the decompressor reads a token
	// that cannot be decoded under the stream's header configuration
	// (e.g. an RLE or extended-match code with the extended flag unset,
	// or eight bits pass without a matching Huffman code).
	ErrMalformedStream = errors.New("tamp: malformed stream")

	// ErrNotImplemented is returned when a stream header declares a
	// feature this decoder does not understand (reserved header bit set).
	ErrNotImplemented = errors.New("tamp: unsupported stream feature")

	// ErrDictionaryMismatch is returned when the caller-supplied
	// dictionary does not agree with the stream header's dictionary flag.
	ErrDictionaryMismatch = errors.New("tamp: dictionary mismatch")
)
