// SPDX-License-Identifier: GPL-2.0-only

/*
Package tamp implements the Tamp streaming compression format: a low-memory
LZ77-style codec built around a small sliding-window dictionary (256 bytes to
32KiB) and a fixed Huffman code for match lengths, sized for memory-constrained
decoders rather than maximum ratio.

# Compress

	c, err := tamp.NewCompressor(w, tamp.DefaultOptions())
	if err != nil {
		// ...
	}
	if _, err := c.Write(data); err != nil {
		// ...
	}
	if _, err := c.Close(); err != nil {
		// ...
	}

Or for a single in-memory buffer:

	out, err := tamp.Compress(data, tamp.DefaultOptions())

# Decompress

	d, err := tamp.NewDecompressor(r, nil)
	if err != nil {
		// ...
	}
	buf := make([]byte, 4096)
	n, err := d.ReadInto(buf)

Or for a single in-memory buffer:

	out, err := tamp.Decompress(compressed, nil)

Decompressor options only need a Dictionary if the stream was compressed
with one; Window, Literal, and Extended come from the stream header itself.
*/
package tamp
