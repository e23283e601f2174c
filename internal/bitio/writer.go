// Package bitio implements the accumulator-based bit writer and reader used
// by the context-map wire format, plus a four-alternative variable-length
// u32 coder layered on top of them. Bit fields are packed LSB-first in
// little-endian byte order.
package bitio

import "encoding/binary"

const (
	// flushBits is the number of bits flushed at a time.
	flushBits = 32
	// flushBytes is the number of bytes written per flush.
	flushBytes = 4
)

// Writer accumulates bit fields in a 64-bit register and flushes 32 bits
// (4 bytes) at a time in little-endian byte order. The format matches
// Reader.
type Writer struct {
	acc  uint64 // bit accumulator
	used int    // number of bits used in acc
	buf  []byte // output buffer
	cur  int    // current write position in buf
}

// NewWriter creates a Writer with an initial buffer pre-allocated for
// expectedSize bytes.
func NewWriter(expectedSize int) *Writer {
	if expectedSize < 64 {
		expectedSize = 64
	}
	return &Writer{buf: make([]byte, expectedSize)}
}

// WriteBits writes nBits (0..32) from the lower bits of v into the
// bitstream, least significant bit first.
func (w *Writer) WriteBits(v uint32, nBits int) {
	if nBits == 0 {
		return
	}
	if w.used >= flushBits {
		w.flush()
	}
	w.acc |= uint64(v&(1<<uint(nBits)-1)) << uint(w.used)
	w.used += nBits
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(b bool) {
	var v uint32
	if b {
		v = 1
	}
	w.WriteBits(v, 1)
}

// flush writes the lower 32 bits of the accumulator to the output buffer
// as 4 little-endian bytes and shifts the accumulator right by 32.
func (w *Writer) flush() {
	w.grow(flushBytes)
	binary.LittleEndian.PutUint32(w.buf[w.cur:], uint32(w.acc))
	w.cur += flushBytes
	w.acc >>= flushBits
	w.used -= flushBits
}

// grow ensures at least n bytes of capacity remain at w.cur.
func (w *Writer) grow(n int) {
	if w.cur+n <= len(w.buf) {
		return
	}
	newSize := len(w.buf) * 3 / 2
	if need := w.cur + n; newSize < need {
		newSize = need
	}
	tmp := make([]byte, newSize)
	copy(tmp, w.buf[:w.cur])
	w.buf = tmp
}

// Finish flushes all remaining bits, zero-padding the final partial byte,
// and returns the complete encoded byte slice.
func (w *Writer) Finish() []byte {
	for w.used >= flushBits {
		w.flush()
	}
	w.grow((w.used + 7) >> 3)
	for w.used > 0 {
		w.buf[w.cur] = byte(w.acc)
		w.cur++
		w.acc >>= 8
		w.used -= 8
	}
	w.used = 0
	return w.buf[:w.cur]
}

// NumBits returns the number of bits written so far.
func (w *Writer) NumBits() int {
	return w.cur*8 + w.used
}
