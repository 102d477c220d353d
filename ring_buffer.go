// SPDX-License-Identifier: GPL-2.0-only

package tamp

import "bytes"

// window is the sliding-window dictionary shared by the compressor and
// decompressor. Reads (get) wrap around the buffer; ordinary writes
// (writeByte/writeBytes) wrap too. writeBytesNoWrap is the one operation
// that does not: it is used for RLE and extended-match token window
// updates, which by design stop at the physical end of the buffer rather
// than wrapping, even though the full token length was delivered to the
// caller's output.
type window struct {
	buf     []byte
	pos     int
	hasLast bool
	last    byte
}

func newWindow(buf []byte) *window {
	return &window{buf: buf}
}

func (w *window) size() int {
	return len(w.buf)
}

func (w *window) writeByte(b byte) {
	w.buf[w.pos] = b
	w.pos++
	if w.pos == len(w.buf) {
		w.pos = 0
	}
	w.last = b
	w.hasLast = true
}

func (w *window) writeBytes(data []byte) {
	for _, b := range data {
		w.writeByte(b)
	}
}

// writeBytesNoWrap writes as many leading bytes of data as fit before the
// physical end of the buffer, then stops; it never advances pos back to 0.
// Returns the number of bytes actually written.
func (w *window) writeBytesNoWrap(data []byte) int {
	room := len(w.buf) - w.pos
	n := len(data)
	if n > room {
		n = room
	}
	if n > 0 {
		copy(w.buf[w.pos:w.pos+n], data[:n])
		w.pos += n
		w.last = data[n-1]
		w.hasLast = true
		if w.pos == len(w.buf) {
			w.pos = 0
		}
	}
	return n
}

// get returns a fresh copy of length bytes starting at index, wrapping
// around the buffer as needed. It snapshots the buffer as it stands before
// this call's own writes, not as it will stand afterward: a match source
// range must already exist in full before the token that copies it writes
// anything, so this is never called with a range that overlaps bytes the
// same token is about to produce.
func (w *window) get(index, length int) []byte {
	out := make([]byte, length)
	n := len(w.buf)
	for i := 0; i < length; i++ {
		out[i] = w.buf[(index+i)%n]
	}
	return out
}

// byteAt returns the buffer contents at index, wrapping.
func (w *window) byteAt(index int) byte {
	return w.buf[index%len(w.buf)]
}

// find returns the smallest index >= start such that the buffer contents
// at that index match pattern exactly, without wrapping past the end of
// the buffer (index+len(pattern) must stay within bounds).
func (w *window) find(pattern []byte, start int) (int, bool) {
	n := len(w.buf)
	plen := len(pattern)
	if plen == 0 {
		return start, true
	}
	for i := start; i+plen <= n; i++ {
		if bytes.Equal(w.buf[i:i+plen], pattern) {
			return i, true
		}
	}
	return 0, false
}

// lastWrittenByte returns the most recently written byte and whether any
// byte has been written yet (false before the first write).
func (w *window) lastWrittenByte() (byte, bool) {
	return w.last, w.hasLast
}
