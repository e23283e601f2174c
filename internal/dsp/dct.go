package dsp

import "math"

// dctBasis[u][x] is the orthonormal DCT-II basis: sqrt(2/8)*cos((2x+1)u*pi/16),
// with the u=0 row scaled by 1/sqrt(2). The basis is its own inverse
// transpose, so the same table serves both directions.
var dctBasis [8][8]float32

func initDCTBasis() {
	for u := 0; u < 8; u++ {
		c := math.Sqrt(2.0 / 8.0)
		if u == 0 {
			c = math.Sqrt(1.0 / 8.0)
		}
		for x := 0; x < 8; x++ {
			dctBasis[u][x] = float32(c * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16))
		}
	}
}

// fdct8x8 is the scalar forward transform: rows first, then columns.
func fdct8x8(src []float32, srcStride int, out *[64]float32) {
	var tmp [64]float32
	// Row pass.
	for y := 0; y < 8; y++ {
		row := src[y*srcStride : y*srcStride+8]
		_ = row[7]
		for u := 0; u < 8; u++ {
			b := &dctBasis[u]
			tmp[y*8+u] = row[0]*b[0] + row[1]*b[1] + row[2]*b[2] + row[3]*b[3] +
				row[4]*b[4] + row[5]*b[5] + row[6]*b[6] + row[7]*b[7]
		}
	}
	// Column pass.
	for v := 0; v < 8; v++ {
		b := &dctBasis[v]
		for u := 0; u < 8; u++ {
			out[v*8+u] = tmp[0*8+u]*b[0] + tmp[1*8+u]*b[1] + tmp[2*8+u]*b[2] +
				tmp[3*8+u]*b[3] + tmp[4*8+u]*b[4] + tmp[5*8+u]*b[5] +
				tmp[6*8+u]*b[6] + tmp[7*8+u]*b[7]
		}
	}
}

// idct8x8 is the scalar inverse transform.
func idct8x8(coeffs *[64]float32, dst []float32, dstStride int) {
	var tmp [64]float32
	// Column pass.
	for y := 0; y < 8; y++ {
		for u := 0; u < 8; u++ {
			var s float32
			for v := 0; v < 8; v++ {
				s += dctBasis[v][y] * coeffs[v*8+u]
			}
			tmp[y*8+u] = s
		}
	}
	// Row pass.
	for y := 0; y < 8; y++ {
		row := dst[y*dstStride : y*dstStride+8]
		_ = row[7]
		for x := 0; x < 8; x++ {
			var s float32
			for u := 0; u < 8; u++ {
				s += dctBasis[u][x] * tmp[y*8+u]
			}
			row[x] = s
		}
	}
}
