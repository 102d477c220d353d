// SPDX-License-Identifier: GPL-2.0-only

package tamp

import (
	"bytes"
	"io"
)

// Observer receives emission events from a Compressor, and the matching
// decode events from a Decompressor, as they happen. All methods are
// called synchronously (from Write/Flush/Close, or from ReadInto); a nil
// Observer (the default) costs nothing.
type Observer interface {
	OnLiteral(b byte)
	OnMatch(index, length int)
	OnRLE(length int)
	OnExtendedMatch(index, length int)
	OnFlush()
}

// Compressor is a streaming Tamp encoder writing to an underlying
// io.Writer. The zero value is not usable; construct with NewCompressor.
type Compressor struct {
	w   *bitWriter
	win *window

	windowBits     int
	literalBits    int
	literalFlag    uint32
	minPatternSize int
	maxPatternSize int
	extended       bool
	rleBreakeven   int

	observer Observer

	buf    [16]byte
	bufLen int

	extActive bool
	extIndex  int
	extLen    int

	rleActive bool
	rleCount  int
}

// NewCompressor constructs a Compressor and writes the stream header. A
// nil Options uses DefaultOptions().
func NewCompressor(w io.Writer, opts *Options) (*Compressor, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if !isValidWindow(opts.Window) || !isValidLiteral(opts.Literal) {
		return nil, ErrInvalidParameter
	}

	size := 1 << uint(opts.Window)
	var buf []byte
	dictProvided := opts.Dictionary != nil
	if dictProvided {
		if len(opts.Dictionary) != size {
			return nil, ErrInvalidParameter
		}
		buf = opts.Dictionary
	} else {
		b, err := initializeDictionary(size, DefaultDictionarySeed)
		if err != nil {
			return nil, err
		}
		buf = b
	}

	minP, err := computeMinPatternSize(opts.Window, opts.Literal)
	if err != nil {
		return nil, err
	}

	c := &Compressor{
		w:              newBitWriter(w),
		win:            newWindow(buf),
		windowBits:     opts.Window,
		literalBits:    opts.Literal,
		literalFlag:    uint32(1) << uint(opts.Literal),
		minPatternSize: minP,
		maxPatternSize: maxPatternSize(minP, opts.Extended),
		extended:       opts.Extended,
	}
	c.rleBreakeven = rleBreakevenPoint(minP, opts.Window)

	if _, err := c.w.write(uint32(opts.Window-8), 3); err != nil {
		return nil, err
	}
	if _, err := c.w.write(uint32(opts.Literal-5), 2); err != nil {
		return nil, err
	}
	if _, err := c.w.write(b2u(dictProvided), 1); err != nil {
		return nil, err
	}
	if _, err := c.w.write(b2u(opts.Extended), 1); err != nil {
		return nil, err
	}
	if _, err := c.w.write(0, 1); err != nil { // reserved: more-header-bytes
		return nil, err
	}
	return c, nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// SetObserver installs (or clears, with nil) an emission observer.
func (c *Compressor) SetObserver(o Observer) {
	c.observer = o
}

// Write feeds input bytes through the staging buffer, emitting tokens as
// they become ready. It returns the number of compressed bytes written
// to the underlying sink, not the number of input bytes accepted (all of
// data is always consumed unless an error is returned).
func (c *Compressor) Write(data []byte) (int, error) {
	written := 0
	for _, b := range data {
		c.buf[c.bufLen] = b
		c.bufLen++
		for c.bufLen == len(c.buf) {
			n, err := c.step()
			written += n
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush drains the staging buffer and any in-progress RLE/extended-match
// token, then byte-aligns the bit writer. If writeToken is true and the
// stream is not already byte-aligned, a FLUSH token marks the boundary so
// a decoder reading a sequence of concatenated flushed blocks can tell
// padding from real data.
func (c *Compressor) Flush(writeToken bool) (int, error) {
	written := 0
	for c.bufLen > 0 {
		n, err := c.step()
		written += n
		if err != nil {
			return written, err
		}
	}
	if c.extActive {
		n, err := c.finishExtendedMatch()
		written += n
		if err != nil {
			return written, err
		}
	}
	if c.rleActive {
		n, err := c.finishRLE()
		written += n
		if err != nil {
			return written, err
		}
	}
	n, err := c.w.flush(writeToken)
	written += n
	if err == nil && c.observer != nil {
		c.observer.OnFlush()
	}
	return written, err
}

// Close flushes without a trailing FLUSH token.
func (c *Compressor) Close() (int, error) {
	return c.Flush(false)
}

func (c *Compressor) popBuffer(n int) {
	copy(c.buf[:c.bufLen-n], c.buf[n:c.bufLen])
	c.bufLen -= n
}

// step performs one unit of the compressor's decision order: continue an
// in-progress extended match, continue or resolve an in-progress (or
// newly detected) RLE run, or fall through to an ordinary greedy search.
func (c *Compressor) step() (int, error) {
	if c.extActive {
		return c.stepExtendedContinuation()
	}
	if c.extended && (c.rleActive || c.canStartRLE()) {
		consumed, emitted, err := c.consumeRLE(c.buf[:c.bufLen])
		if err != nil {
			return emitted, err
		}
		if consumed > 0 {
			c.popBuffer(consumed)
			return emitted, nil
		}
		n, err := c.stepSearch()
		return emitted + n, err
	}
	return c.stepSearch()
}

func (c *Compressor) stepExtendedContinuation() (int, error) {
	if c.bufLen == 0 {
		return 0, nil
	}
	candidate := c.buf[0]
	nextPos := c.extIndex + c.extLen
	if c.extLen < c.maxPatternSize && c.win.byteAt(nextPos) == candidate {
		c.extLen++
		c.popBuffer(1)
		if c.extLen == c.maxPatternSize {
			return c.finishExtendedMatch()
		}
		return 0, nil
	}
	return c.finishExtendedMatch()
}

func (c *Compressor) finishExtendedMatch() (int, error) {
	index, length := c.extIndex, c.extLen
	c.extActive = false
	c.extIndex = 0
	c.extLen = 0
	return c.emitMatch(index, length)
}

func (c *Compressor) canStartRLE() bool {
	if c.bufLen == 0 {
		return false
	}
	last, ok := c.win.lastWrittenByte()
	return ok && c.buf[0] == last
}

// consumeRLE measures the run of lastWrittenByte at the front of buf,
// folding it into c.rleCount. If the run covers the entire (currently
// visible) buffer, it may still be growing, so emission is deferred;
// otherwise a differing byte was observed (including the case where buf
// starts with a different byte immediately, run == 0) and any pending run
// is finalized now, before step() falls through to search the new content
// — this keeps the RLE token in its correct position in the stream.
func (c *Compressor) consumeRLE(buf []byte) (consumed, emitted int, err error) {
	last, ok := c.win.lastWrittenByte()
	if !ok {
		return 0, 0, nil
	}
	run := 0
	for run < len(buf) && buf[run] == last {
		run++
	}
	if run == 0 {
		if c.rleActive {
			emitted, err = c.finishRLE()
		}
		return 0, emitted, err
	}

	room := rleMaxSize - c.rleCount
	hitCap := run >= room
	if hitCap {
		run = room
	}
	c.rleCount += run
	c.rleActive = true

	if !hitCap && run == len(buf) {
		return run, 0, nil
	}

	emitted, err = c.finishRLE()
	return run, emitted, err
}

func (c *Compressor) finishRLE() (int, error) {
	count := c.rleCount
	c.rleCount = 0
	c.rleActive = false
	if count == 0 {
		return 0, nil
	}
	if count >= c.rleBreakeven {
		return c.emitRLE(count)
	}
	return c.emitRepeatedByteAsLiterals(count)
}

func (c *Compressor) emitRLE(count int) (int, error) {
	n1, err := c.w.writeHuffman(rleIndex)
	if err != nil {
		return n1, err
	}
	n2, err := writeExtendedValue(c.w, uint32(count-2), 4)
	total := n1 + n2
	if err != nil {
		return total, err
	}

	last, _ := c.win.lastWrittenByte()
	n := count
	if n > 8 {
		n = 8
	}
	rep := make([]byte, n)
	for i := range rep {
		rep[i] = last
	}
	c.win.writeBytesNoWrap(rep)
	if c.observer != nil {
		c.observer.OnRLE(count)
	}
	return total, nil
}

// emitRepeatedByteAsLiterals is the fallback used when an accumulated run
// is too short for an RLE token to pay for itself. A match token's source
// range must already exist in the window before this token writes
// anything (get() snapshots it first, precisely so self-overlapping
// copies are well-defined) — a distance-1 reference into bytes this very
// run is about to write is not such a range, so the run is encoded as
// plain literals instead of a fabricated self-referential match.
func (c *Compressor) emitRepeatedByteAsLiterals(count int) (int, error) {
	written := 0
	last, _ := c.win.lastWrittenByte()
	for i := 0; i < count; i++ {
		n, err := c.emitLiteral(last)
		c.win.writeByte(last)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (c *Compressor) emitLiteral(b byte) (int, error) {
	if uint32(b)>>uint(c.literalBits) != 0 {
		return 0, ErrExcessBits
	}
	n, err := c.w.write(uint32(b)|c.literalFlag, c.literalBits+1)
	if err == nil && c.observer != nil {
		c.observer.OnLiteral(b)
	}
	return n, err
}

func (c *Compressor) emitMatch(index, length int) (int, error) {
	if length > c.minPatternSize+11 {
		return c.emitExtendedMatch(index, length)
	}
	n1, err := c.w.writeHuffman(length - c.minPatternSize)
	if err != nil {
		return n1, err
	}
	n2, err := c.w.write(uint32(index), c.windowBits)
	total := n1 + n2
	if err != nil {
		return total, err
	}
	data := c.win.get(index, length)
	c.win.writeBytes(data)
	if c.observer != nil {
		c.observer.OnMatch(index, length)
	}
	return total, nil
}

func (c *Compressor) emitExtendedMatch(index, length int) (int, error) {
	n1, err := c.w.writeHuffman(extendedMatchIndex)
	if err != nil {
		return n1, err
	}
	stored := uint32(length - (c.minPatternSize + 12))
	n2, err := writeExtendedValue(c.w, stored, 3)
	if err != nil {
		return n1 + n2, err
	}
	n3, err := c.w.write(uint32(index), c.windowBits)
	total := n1 + n2 + n3
	if err != nil {
		return total, err
	}
	data := c.win.get(index, length)
	c.win.writeBytesNoWrap(data)
	if c.observer != nil {
		c.observer.OnExtendedMatch(index, length)
	}
	return total, nil
}

// stepSearch performs the ordinary greedy (optionally lazy) match search
// over the staging buffer and emits exactly one literal or match token.
func (c *Compressor) stepSearch() (int, error) {
	if c.bufLen == 0 {
		return 0, nil
	}

	matchLen, matchIndex, found := c.findLongestMatch(c.buf[:c.bufLen])

	if found && c.extended && matchLen > c.minPatternSize+11 && matchLen == c.bufLen {
		c.extActive = true
		c.extIndex = matchIndex
		c.extLen = matchLen
		c.popBuffer(matchLen)
		return 0, nil
	}

	if found && matchLen >= c.minPatternSize && matchLen <= 8 && matchLen+1 < c.bufLen {
		altLen, altIndex, altFound := c.findLongestMatch(c.buf[1:c.bufLen])
		if altFound && altLen > matchLen && (c.win.pos < altIndex || c.win.pos >= altIndex+altLen) {
			b := c.buf[0]
			n, err := c.emitLiteral(b)
			c.win.writeByte(b)
			c.popBuffer(1)
			return n, err
		}
	}

	if !found || matchLen < c.minPatternSize {
		b := c.buf[0]
		n, err := c.emitLiteral(b)
		c.win.writeByte(b)
		c.popBuffer(1)
		return n, err
	}

	n, err := c.emitMatch(matchIndex, matchLen)
	c.popBuffer(matchLen)
	return n, err
}

// findLongestMatch searches for the longest prefix of buf already present
// in the window, growing the candidate length one byte at a time and
// re-searching from the previous hit (never backtracking the search
// start), stopping at the first length with no match.
func (c *Compressor) findLongestMatch(buf []byte) (length, index int, found bool) {
	limit := len(buf)
	if limit > c.maxPatternSize {
		limit = c.maxPatternSize
	}
	if limit < c.minPatternSize {
		return 0, 0, false
	}

	searchFrom := 0
	bestLen, bestIdx := 0, 0
	for k := c.minPatternSize; k <= limit; k++ {
		idx, ok := c.win.find(buf[:k], searchFrom)
		if !ok {
			break
		}
		bestLen, bestIdx = k, idx
		searchFrom = idx
	}
	if bestLen >= c.minPatternSize {
		return bestLen, bestIdx, true
	}
	return 0, 0, false
}

// Compress is a convenience wrapper that compresses data in one call.
func Compress(data []byte, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	c, err := NewCompressor(&buf, opts)
	if err != nil {
		return nil, err
	}
	if _, err := c.Write(data); err != nil {
		return nil, err
	}
	if _, err := c.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
