// Package aq builds and optimizes the perceptual adaptive quantization
// field: one multiplicative quant strength per 8x8 block, derived from a
// masking model of local activity and refined by distortion-guided search
// against a full-reference comparator.
package aq

import (
	"math"

	"github.com/deepteams/jxl/internal/dsp"
	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/pool"
)

// ComputeMask maps the blurred local-difference value to the base masking
// exponent. Busy surroundings hide quantization noise, so larger activity
// lowers the exponent and with it the block's quant strength.
func ComputeMask(val float32) float32 {
	const (
		kBase    = 0.9
		kMul1    = 0.012830564950968305
		kOffset1 = 0.010638874536303307
		kMul2    = -0.17766197567565159
		kOffset2 = 0.10647602832848234
	)
	div := val + kOffset1
	if div < 1e-3 {
		div = 1e-3
	}
	return kBase + kMul1/div + kMul2/(val*val+kOffset2)
}

// quant64 weighs each DCT coefficient's contribution to the complexity
// norms. The DC entry is zero; only AC structure counts.
var quant64 = func() (q [frame.DCTBlockSize]float32) {
	base := [frame.DCTBlockSize]float64{
		0.00, 4.10, 3.30, 3.30, 1.10, 1.15, 0.70, 0.70,
		4.10, 3.30, 3.30, 1.10, 1.15, 1.30, 0.70, 0.50,
		3.00, 3.30, 2.90, 2.10, 1.30, 0.70, 0.50, 0.50,
		0.87, 2.90, 2.10, 1.40, 0.70, 0.50, 0.50, 0.50,
		0.87, 1.40, 1.40, 1.60, 0.50, 0.50, 0.50, 0.50,
		1.40, 0.90, 1.60, 0.50, 0.50, 0.50, 0.50, 0.50,
		0.90, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50,
		0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50,
	}
	const kPow = 4.6629037508279616
	for i, v := range base {
		q[i] = float32(math.Pow(v, kPow))
	}
	return q
}()

// dctRescale maps orthonormal DCT coefficients onto the normalized basis
// the modulation weights were tuned for, where the DC coefficient equals
// the block mean and AC basis amplitudes are one.
var dctRescale = func() (t [frame.DCTBlockSize]float32) {
	var r [frame.BlockDim]float64
	r[0] = 1 / math.Sqrt(frame.BlockDim)
	for i := 1; i < frame.BlockDim; i++ {
		r[i] = 0.5
	}
	for v := 0; v < frame.BlockDim; v++ {
		for u := 0; u < frame.BlockDim; u++ {
			t[v*frame.BlockDim+u] = float32(r[v] * r[u])
		}
	}
	return t
}()

// dctModulation raises precision in blocks whose DCT spectrum is
// complicated: three weighted coefficient norms of increasing order are
// combined so that a few strong coefficients and many weak ones are told
// apart.
func dctModulation(x, y int, p *imagef.Plane) float32 {
	var dct [frame.DCTBlockSize]float32
	dsp.FDCT8x8(p.Pix[y*p.Stride+x:], p.Stride, &dct)
	var l2, l4, l8 float64
	for i := 0; i < frame.DCTBlockSize; i++ {
		v := float64(dct[i] * dctRescale[i])
		v *= v
		q := float64(quant64[i])
		l2 += q * v
		v *= v
		l4 += q * v
		v *= v
		l8 += q * v
	}
	const (
		mulQL2 = 0.03142149886912976
		mulQL4 = -0.66751878683954047
		mulQL8 = 0.38537889965210825
		kMul   = 1.2429764719119114
	)
	sum := mulQL2*math.Sqrt(l2) +
		mulQL4*math.Sqrt(math.Sqrt(l4)) +
		mulQL8*math.Pow(l8, 0.125)
	return float32(kMul * sum)
}

// gammaModulation estimates how far the block's intensity sits from the
// psychovisual gamma by averaging the inverted derivative ratio over the
// red-ish and green-ish intensity estimates of every pixel.
func gammaModulation(x, y int, px, py *imagef.Plane) float32 {
	const (
		kBias = 0.16
		gam   = 0.34403164676083279
	)
	var sum float32
	for dy := 0; dy < frame.BlockDim; dy++ {
		rowX := px.Row(y + dy)
		rowY := py.Row(y + dy)
		for dx := 0; dx < frame.BlockDim; dx++ {
			iny := rowY[x+dx] + kBias
			inx := rowX[x+dx]
			r := iny - inx
			g := iny + inx
			ratioR := dsp.RatioOfDerivativesOfCubicRootToSimpleGamma(r, true)
			ratioG := dsp.RatioOfDerivativesOfCubicRootToSimpleGamma(g, true)
			sum += 0.5 * (ratioR + ratioG)
		}
	}
	return gam * float32(math.Log(float64(sum/frame.DCTBlockSize)))
}

// rangeModulation raises precision in blocks with high dynamic range,
// combining several functions of the chroma and intensity ranges. The
// result is clamped to [-7, 7]; pathological inputs can otherwise push the
// exponent far enough to break the downstream fixed-point quant.
func rangeModulation(x, y int, px, py *imagef.Plane) float32 {
	minX, minY := float32(1e30), float32(1e30)
	maxX, maxY := float32(-1e30), float32(-1e30)
	var ySumSquares float32
	for dy := 0; dy < frame.BlockDim; dy++ {
		rowX := px.Row(y + dy)
		rowY := py.Row(y + dy)
		for dx := 0; dx < frame.BlockDim; dx++ {
			vx := rowX[x+dx]
			vy := rowY[x+dx]
			if vx < minX {
				minX = vx
			}
			if vx > maxX {
				maxX = vx
			}
			if vy < minY {
				minY = vy
			}
			if vy > maxY {
				maxY = vy
			}
			ySumSquares += vy * vy
		}
	}
	const (
		xmul = 1.7221705747809317
		mul0 = -0.74090628990083873
		mul1 = 0.3768642185315102
		mul2 = -0.36402038014085836
		mul3 = 0.14396820717087175
		mul4 = 119.38245772972709
	)
	rangeX := xmul * (maxX - minX)
	rangeY := maxY - minY
	range0 := float32(math.Sqrt(float64(rangeX * rangeY)))
	range1 := float32(math.Sqrt(float64(rangeX*rangeX + rangeY*rangeY)))
	range2 := rangeX
	if rangeY > range2 {
		range2 = rangeY
	}
	range3 := rangeX
	if rangeY < range3 {
		range3 = rangeY
	}
	range4 := rangeX * float32(math.Sqrt(float64(ySumSquares/frame.DCTBlockSize)))
	v := mul0*range0 + mul1*range1 + mul2*range2 + mul3*range3 + mul4*range4
	if v > 7 {
		v = 7
	}
	if v < -7 {
		v = -7
	}
	return v
}

// hfModulation lowers precision in blocks with high-frequency content,
// measured as the mean absolute first difference along both axes.
func hfModulation(x, y int, p *imagef.Plane) float32 {
	var sum float32
	n := 0
	for dy := 0; dy < frame.BlockDim; dy++ {
		row := p.Row(y + dy)
		for dx := 0; dx < frame.BlockDim-1; dx++ {
			v := row[x+dx] - row[x+dx+1]
			if v < 0 {
				v = -v
			}
			sum += v
			n++
		}
	}
	for dy := 0; dy < frame.BlockDim-1; dy++ {
		row := p.Row(y + dy)
		next := p.Row(y + dy + 1)
		for dx := 0; dx < frame.BlockDim; dx++ {
			v := row[x+dx] - next[x+dx]
			if v < 0 {
				v = -v
			}
			sum += v
			n++
		}
	}
	if n != 0 {
		sum /= float32(n)
	}
	const kMul = -1.9272205829012994
	return kMul * sum
}

// PerBlockModulations converts the blurred-difference field in out to the
// final multiplicative quant field: the masking exponent of each block is
// adjusted by the DCT, range, high-frequency and gamma modulations of its
// AC-intensity estimates, then exponentiated and scaled. The intensity
// planes must be block-aligned and out must hold one value per block.
func PerBlockModulations(intensityX, intensityY *imagef.Plane, scale float32, out *imagef.Plane) {
	if intensityX.W != intensityY.W || intensityX.H != intensityY.H {
		panic("aq: intensity planes disagree in size")
	}
	if intensityX.W%frame.BlockDim != 0 || intensityX.H%frame.BlockDim != 0 {
		panic("aq: modulation input not block aligned")
	}
	if out.W != intensityX.W/frame.BlockDim || out.H != intensityX.H/frame.BlockDim {
		panic("aq: modulation output is not one value per block")
	}
	pool.Run(0, out.H, func(by int) {
		y := by * frame.BlockDim
		row := out.Row(by)
		for bx := 0; bx < out.W; bx++ {
			x := bx * frame.BlockDim
			e := ComputeMask(row[bx])
			e += dctModulation(x, y, intensityY)
			e += rangeModulation(x, y, intensityX, intensityY)
			e += hfModulation(x, y, intensityY)
			e += gammaModulation(x, y, intensityX, intensityY)
			// Everything above modulates the exponent; the committed
			// field is multiplicative.
			row[bx] = float32(math.Exp(float64(e))) * scale
		}
	})
}
