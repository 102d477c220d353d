// SPDX-License-Identifier: GPL-2.0-only

package tamp

import (
	"bytes"
	"testing"
)

func TestWindowWriteWraps(t *testing.T) {
	w := newWindow(make([]byte, 4))
	w.writeBytes([]byte{1, 2, 3, 4, 5})
	if !bytes.Equal(w.buf, []byte{5, 2, 3, 4}) {
		t.Fatalf("got %v, want [5 2 3 4]", w.buf)
	}
}

func TestWindowGetWraps(t *testing.T) {
	w := newWindow([]byte{0, 1, 2, 3})
	got := w.get(2, 5)
	want := []byte{2, 3, 0, 1, 2}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWindowFindDoesNotWrap(t *testing.T) {
	w := newWindow([]byte{'a', 'b', 'c', 'd'})
	if _, ok := w.find([]byte{'d', 'a'}, 0); ok {
		t.Fatalf("find should not match across the wrap boundary")
	}
	idx, ok := w.find([]byte{'b', 'c'}, 0)
	if !ok || idx != 1 {
		t.Fatalf("got (%d,%v), want (1,true)", idx, ok)
	}
}

func TestWindowWriteBytesNoWrapStopsAtEnd(t *testing.T) {
	w := newWindow(make([]byte, 4))
	w.pos = 2
	n := w.writeBytesNoWrap([]byte{'x', 'y', 'z'})
	if n != 2 {
		t.Fatalf("writeBytesNoWrap returned %d, want 2", n)
	}
	if !bytes.Equal(w.buf, []byte{0, 0, 'x', 'y'}) {
		t.Fatalf("got %v, want [0 0 x y]", w.buf)
	}
	if w.pos != 0 {
		t.Fatalf("pos = %d, want wrapped to 0", w.pos)
	}
}

func TestWindowLastWrittenByte(t *testing.T) {
	w := newWindow(make([]byte, 4))
	if _, ok := w.lastWrittenByte(); ok {
		t.Fatalf("fresh window should report no last-written byte")
	}
	w.writeByte('q')
	b, ok := w.lastWrittenByte()
	if !ok || b != 'q' {
		t.Fatalf("got (%q,%v), want (q,true)", b, ok)
	}
}

func TestWindowGetSnapshotsBeforeOwnWrites(t *testing.T) {
	// get() always returns content as it stood before any write in the same
	// call; it never extrapolates a repeating pattern from a short source.
	// A distance-1 "match" of length > 1 therefore reads stale bytes beyond
	// the single most-recently-written one, which is why the compressor
	// never builds repeated-byte runs this way (see emitRepeatedByteAsLiterals).
	w := newWindow(make([]byte, 8))
	w.writeByte('a')
	data := w.get((w.pos-1+w.size())%w.size(), 5)
	if !bytes.Equal(data, []byte{'a', 0, 0, 0, 0}) {
		t.Fatalf("got %v, want [a 0 0 0 0]", data)
	}
}
