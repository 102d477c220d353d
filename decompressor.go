// SPDX-License-Identifier: GPL-2.0-only

package tamp

import (
	"bytes"
	"errors"
	"io"
)

// Decompressor is a streaming Tamp decoder reading from an underlying
// io.Reader. The zero value is not usable; construct with NewDecompressor.
type Decompressor struct {
	r   *bitReader
	win *window

	windowBits     int
	literalBits    int
	minPatternSize int
	extended       bool

	observer Observer

	overflow []byte
}

// NewDecompressor reads the stream header from r and constructs a
// Decompressor. opts may be nil unless the stream was compressed with a
// caller-supplied dictionary, in which case opts.Dictionary must match
// it; supplying a Dictionary for a stream that used the default one (or
// vice versa) is ErrDictionaryMismatch.
func NewDecompressor(r io.Reader, opts *Options) (*Decompressor, error) {
	br := newBitReader(r)

	wBits, err := br.read(3)
	if err != nil {
		return nil, err
	}
	lBits, err := br.read(2)
	if err != nil {
		return nil, err
	}
	dictFlag, err := br.read(1)
	if err != nil {
		return nil, err
	}
	extFlag, err := br.read(1)
	if err != nil {
		return nil, err
	}
	more, err := br.read(1)
	if err != nil {
		return nil, err
	}
	if more != 0 {
		return nil, ErrNotImplemented
	}

	windowBits := int(wBits) + 8
	literalBits := int(lBits) + 5
	size := 1 << uint(windowBits)

	var buf []byte
	hasDict := opts != nil && opts.Dictionary != nil
	switch {
	case dictFlag != 0 && !hasDict:
		return nil, ErrDictionaryMismatch
	case dictFlag == 0 && hasDict:
		return nil, ErrDictionaryMismatch
	case dictFlag != 0:
		if len(opts.Dictionary) != size {
			return nil, ErrInvalidParameter
		}
		buf = opts.Dictionary
	default:
		b, err := initializeDictionary(size, DefaultDictionarySeed)
		if err != nil {
			return nil, err
		}
		buf = b
	}

	minP, err := computeMinPatternSize(windowBits, literalBits)
	if err != nil {
		return nil, err
	}

	return &Decompressor{
		r:              br,
		win:            newWindow(buf),
		windowBits:     windowBits,
		literalBits:    literalBits,
		minPatternSize: minP,
		extended:       extFlag != 0,
	}, nil
}

// SetObserver installs (or clears, with nil) an emission observer. It fires
// synchronously from ReadInto, once per decoded token, mirroring
// Compressor.SetObserver.
func (d *Decompressor) SetObserver(o Observer) {
	d.observer = o
}

// ReadInto decodes into buf, returning as many bytes as are immediately
// available. A short read (less than len(buf), nil error) means the
// underlying reader ran out of input mid-token; the Decompressor's state
// is left such that a later ReadInto call with more input available will
// resume the same token without loss or duplication.
func (d *Decompressor) ReadInto(buf []byte) (int, error) {
	written := 0
	if len(d.overflow) > 0 {
		n := copy(buf, d.overflow)
		d.overflow = d.overflow[n:]
		written = n
		if written == len(buf) {
			return written, nil
		}
	}

	for written < len(buf) {
		snapBuf, snapPos := d.r.snapshot()
		n, err := d.decodeOneToken(buf, written)
		if err != nil {
			if isShortRead(err) {
				d.r.restore(snapBuf, snapPos)
				break
			}
			return written, err
		}
		written += n
	}
	return written, nil
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (d *Decompressor) decodeOneToken(buf []byte, written int) (int, error) {
	isLiteral, err := d.r.read(1)
	if err != nil {
		return 0, err
	}
	if isLiteral == 1 {
		v, err := d.r.read(d.literalBits)
		if err != nil {
			return 0, err
		}
		b := byte(v)
		d.win.writeByte(b)
		if d.observer != nil {
			d.observer.OnLiteral(b)
		}
		return d.deliver([]byte{b}, buf, written)
	}

	idx, err := decodePrefix(d.r, flushIndex)
	if err != nil {
		return 0, err
	}

	switch idx {
	case flushIndex:
		d.r.clear()
		if d.observer != nil {
			d.observer.OnFlush()
		}
		return 0, nil
	case rleIndex:
		if !d.extended {
			return 0, ErrMalformedStream
		}
		v, err := readExtendedValue(d.r, 4)
		if err != nil {
			return 0, err
		}
		count := int(v) + 2
		return d.decodeRLE(count, buf, written)
	case extendedMatchIndex:
		if !d.extended {
			return 0, ErrMalformedStream
		}
		v, err := readExtendedValue(d.r, 3)
		if err != nil {
			return 0, err
		}
		length := int(v) + d.minPatternSize + 12
		index, err := d.r.read(d.windowBits)
		if err != nil {
			return 0, err
		}
		return d.decodeMatch(int(index), length, buf, written, true)
	default:
		length := idx + d.minPatternSize
		index, err := d.r.read(d.windowBits)
		if err != nil {
			return 0, err
		}
		return d.decodeMatch(int(index), length, buf, written, false)
	}
}

func (d *Decompressor) decodeMatch(index, length int, buf []byte, written int, extended bool) (int, error) {
	data := d.win.get(index, length)
	if extended {
		d.win.writeBytesNoWrap(data)
	} else {
		d.win.writeBytes(data)
	}
	if d.observer != nil {
		if extended {
			d.observer.OnExtendedMatch(index, length)
		} else {
			d.observer.OnMatch(index, length)
		}
	}
	return d.deliver(data, buf, written)
}

func (d *Decompressor) decodeRLE(count int, buf []byte, written int) (int, error) {
	last, _ := d.win.lastWrittenByte()
	rep := make([]byte, count)
	for i := range rep {
		rep[i] = last
	}
	toWindow := rep
	if len(toWindow) > 8 {
		toWindow = toWindow[:8]
	}
	d.win.writeBytesNoWrap(toWindow)
	if d.observer != nil {
		d.observer.OnRLE(count)
	}
	return d.deliver(rep, buf, written)
}

// deliver copies as much of data into buf[written:] as fits, stashing any
// remainder in the overflow buffer for the next ReadInto call.
func (d *Decompressor) deliver(data, buf []byte, written int) (int, error) {
	n := copy(buf[written:], data)
	if n < len(data) {
		d.overflow = append(d.overflow, data[n:]...)
	}
	return n, nil
}

// Decompress is a convenience wrapper that decompresses data in one call.
func Decompress(data []byte, opts *Options) ([]byte, error) {
	d, err := NewDecompressor(bytes.NewReader(data), opts)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, err := d.ReadInto(chunk)
		if n > 0 {
			out.Write(chunk[:n])
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out.Bytes(), nil
		}
	}
}
