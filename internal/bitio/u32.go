package bitio

// U32Dist describes a variable-length u32 encoding with four alternatives.
// A 2-bit selector picks the alternative, then Bits[i] raw bits are
// read/written and Offset[i] is added. Alternatives must be ordered so that
// their covered ranges are non-decreasing.
type U32Dist struct {
	Bits   [4]uint8
	Offset [4]uint32
}

// maxVal returns the largest value representable by alternative i.
func (d U32Dist) maxVal(i int) uint32 {
	return d.Offset[i] + (1<<uint(d.Bits[i]) - 1)
}

// WriteU32 encodes v using the first alternative whose range covers it.
// Values above the final alternative's range saturate to its maximum.
func (w *Writer) WriteU32(d U32Dist, v uint32) {
	for i := 0; i < 4; i++ {
		if i == 3 || (v >= d.Offset[i] && v <= d.maxVal(i)) {
			if v < d.Offset[i] {
				v = d.Offset[i]
			}
			if v > d.maxVal(i) {
				v = d.maxVal(i)
			}
			w.WriteBits(uint32(i), 2)
			w.WriteBits(v-d.Offset[i], int(d.Bits[i]))
			return
		}
	}
}

// ReadU32 decodes a value written by WriteU32.
func (r *Reader) ReadU32(d U32Dist) uint32 {
	i := r.ReadBits(2)
	return d.Offset[i] + r.ReadBits(int(d.Bits[i]))
}
