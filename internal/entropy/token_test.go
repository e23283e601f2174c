package entropy

import (
	"math"
	"math/rand"
	"testing"
)

func TestPackSignedKnownValues(t *testing.T) {
	tests := []struct {
		v int32
		u uint32
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{math.MaxInt32, 0xfffffffe},
		{math.MinInt32, 0xffffffff},
	}
	for _, tt := range tests {
		if got := PackSigned(tt.v); got != tt.u {
			t.Errorf("PackSigned(%d) = %d, want %d", tt.v, got, tt.u)
		}
		if got := UnpackSigned(tt.u); got != tt.v {
			t.Errorf("UnpackSigned(%d) = %d, want %d", tt.u, got, tt.v)
		}
	}
}

func TestPackSignedBijection(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100000; i++ {
		v := int32(rng.Uint32())
		if got := UnpackSigned(PackSigned(v)); got != v {
			t.Fatalf("round trip of %d gave %d", v, got)
		}
		u := rng.Uint32()
		if got := PackSigned(UnpackSigned(u)); got != u {
			t.Fatalf("round trip of packed %d gave %d", u, got)
		}
	}
}
