package bitio

// Reader reads LSB-first bit fields from a byte slice produced by Writer.
//
// Reading past the end of the buffer does not panic: missing bytes read as
// zero and the overrun flag is set, so callers validate once at the end of
// a parse instead of after every field.
type Reader struct {
	buf     []byte
	pos     int    // byte position of the next refill
	acc     uint64 // prefetched bits
	have    int    // number of valid bits in acc
	overrun bool
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// refill loads bytes into the accumulator until at least 32 bits are
// available or the buffer is exhausted.
func (r *Reader) refill() {
	for r.have <= 56 && r.pos < len(r.buf) {
		r.acc |= uint64(r.buf[r.pos]) << uint(r.have)
		r.pos++
		r.have += 8
	}
}

// ReadBits reads nBits (0..32) and returns them as an unsigned value.
func (r *Reader) ReadBits(nBits int) uint32 {
	if nBits == 0 {
		return 0
	}
	if r.have < nBits {
		r.refill()
	}
	if r.have < nBits {
		r.overrun = true
	}
	v := uint32(r.acc & (1<<uint(nBits) - 1))
	r.acc >>= uint(nBits)
	r.have -= nBits
	if r.have < 0 {
		r.have = 0
	}
	return v
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() bool {
	return r.ReadBits(1) != 0
}

// Overrun reports whether any read went past the end of the buffer.
func (r *Reader) Overrun() bool {
	return r.overrun
}
