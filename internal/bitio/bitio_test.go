package bitio

import (
	"math/rand"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	type field struct {
		v uint32
		n int
	}
	var fields []field
	w := NewWriter(16)
	for i := 0; i < 5000; i++ {
		n := 1 + rng.Intn(24)
		v := rng.Uint32() & (1<<uint(n) - 1)
		fields = append(fields, field{v, n})
		w.WriteBits(v, n)
	}
	data := w.Finish()

	r := NewReader(data)
	for i, f := range fields {
		got := r.ReadBits(f.n)
		if got != f.v {
			t.Fatalf("field %d: got %d, want %d (%d bits)", i, got, f.v, f.n)
		}
	}
	if r.Overrun() {
		t.Error("overrun set after reading exactly the written fields")
	}
}

func TestWriterNumBits(t *testing.T) {
	w := NewWriter(16)
	w.WriteBits(0x5, 3)
	w.WriteBits(0x1ff, 9)
	if got := w.NumBits(); got != 12 {
		t.Errorf("NumBits = %d, want 12", got)
	}
	data := w.Finish()
	if len(data) != 2 {
		t.Errorf("len = %d, want 2", len(data))
	}
}

func TestWriterZeroBitWrite(t *testing.T) {
	w := NewWriter(16)
	w.WriteBits(0xffffffff, 0)
	w.WriteBits(1, 1)
	data := w.Finish()
	r := NewReader(data)
	if got := r.ReadBits(1); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestReaderOverrun(t *testing.T) {
	r := NewReader([]byte{0xab})
	if got := r.ReadBits(8); got != 0xab {
		t.Fatalf("got %#x", got)
	}
	if r.Overrun() {
		t.Error("overrun set too early")
	}
	if got := r.ReadBits(8); got != 0 {
		t.Errorf("past-end read = %#x, want 0", got)
	}
	if !r.Overrun() {
		t.Error("overrun not set after reading past the end")
	}
}

func TestU32RoundTrip(t *testing.T) {
	d := U32Dist{Bits: [4]uint8{4, 8, 16, 32}, Offset: [4]uint32{0, 16, 272, 65808}}
	values := []uint32{0, 1, 15, 16, 200, 271, 272, 65807, 65808, 1 << 30}
	w := NewWriter(16)
	for _, v := range values {
		w.WriteU32(d, v)
	}
	r := NewReader(w.Finish())
	for _, v := range values {
		if got := r.ReadU32(d); got != v {
			t.Errorf("got %d, want %d", got, v)
		}
	}
}

func TestU32PicksShortestAlternative(t *testing.T) {
	d := U32Dist{Bits: [4]uint8{0, 4, 8, 16}, Offset: [4]uint32{0, 1, 17, 273}}
	w := NewWriter(4)
	w.WriteU32(d, 0)
	if got := w.NumBits(); got != 2 {
		t.Errorf("encoding 0 took %d bits, want 2 (selector only)", got)
	}
}
