// SPDX-License-Identifier: GPL-2.0-only

package tamp

import "io"

// bitReader unpacks MSB-first bit values out of an underlying io.Reader.
// buffer holds up to 32 bits of not-yet-consumed state, left-aligned
// against bit 31. snapshot/restore give callers a transactional read: if
// a multi-read token decode runs out of input partway through, the
// accumulator can be rewound so the next ReadInto call resumes exactly
// where the token started, rather than losing or duplicating bits.
type bitReader struct {
	r      io.Reader
	buffer uint32
	bitPos uint
	one    [1]byte
	// fetched holds the bytes pulled since the last snapshot; restore
	// queues them in replay so read serves them again.
	fetched []byte
	replay  []byte
}

func newBitReader(r io.Reader) *bitReader {
	return &bitReader{r: r}
}

// read returns the next numBits bits (MSB first), pulling bytes from the
// underlying reader as needed. A short or failed underlying read is
// returned verbatim (typically io.EOF or io.ErrUnexpectedEOF); the caller
// is responsible for restoring a prior snapshot in that case.
func (br *bitReader) read(numBits int) (uint32, error) {
	for br.bitPos < uint(numBits) {
		var b byte
		if len(br.replay) > 0 {
			b = br.replay[0]
			br.replay = br.replay[1:]
		} else {
			n, err := br.r.Read(br.one[:])
			if n == 0 {
				if err == nil {
					err = io.ErrUnexpectedEOF
				}
				return 0, err
			}
			b = br.one[0]
		}
		br.fetched = append(br.fetched, b)
		br.buffer |= uint32(b) << (24 - br.bitPos)
		br.bitPos += 8
	}
	result := br.buffer >> (32 - uint(numBits))
	br.buffer <<= uint(numBits)
	br.bitPos -= uint(numBits)
	return result, nil
}

// clear discards any buffered bits, dropping the zero padding a FLUSH
// token leaves behind so the next token starts at a fresh byte boundary.
func (br *bitReader) clear() {
	br.buffer = 0
	br.bitPos = 0
}

func (br *bitReader) snapshot() (uint32, uint) {
	br.fetched = br.fetched[:0]
	return br.buffer, br.bitPos
}

func (br *bitReader) restore(buffer uint32, bitPos uint) {
	br.buffer = buffer
	br.bitPos = bitPos
	br.replay = append(append([]byte(nil), br.fetched...), br.replay...)
	br.fetched = nil
}
