package dsp

import (
	"math"

	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/pool"
)

// GaussianKernel returns a normalized 1D Gaussian of length 2*radius+1.
func GaussianKernel(radius int, sigma float64) []float32 {
	k := make([]float32, 2*radius+1)
	scaler := -1.0 / (2 * sigma * sigma)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(scaler * float64(i*i))
		k[i+radius] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range k {
		k[i] *= inv
	}
	return k
}

// ConvolveAndSample blurs in with the given separable kernel and samples the
// result every res pixels in both dimensions. Samples beyond the image edge
// clamp to the nearest valid pixel. The output is ceil-divided in size.
func ConvolveAndSample(in *imagef.Plane, kernel []float32, res int) *imagef.Plane {
	radius := (len(kernel) - 1) / 2
	w, h := in.W, in.H
	outW := (w + res - 1) / res
	outH := (h + res - 1) / res

	// Horizontal pass at full height, already subsampled in x.
	tmp := imagef.NewPlane(outW, h)
	pool.Run(0, h, func(y int) {
		rowIn := in.Row(y)
		rowTmp := tmp.Row(y)
		for ox := 0; ox < outW; ox++ {
			cx := ox * res
			var sum float32
			for i := -radius; i <= radius; i++ {
				x := cx + i
				if x < 0 {
					x = 0
				} else if x >= w {
					x = w - 1
				}
				sum += kernel[i+radius] * rowIn[x]
			}
			rowTmp[ox] = sum
		}
	})

	// Vertical pass, subsampled in y.
	out := imagef.NewPlane(outW, outH)
	pool.Run(0, outH, func(oy int) {
		cy := oy * res
		rowOut := out.Row(oy)
		for i := -radius; i <= radius; i++ {
			y := cy + i
			if y < 0 {
				y = 0
			} else if y >= h {
				y = h - 1
			}
			k := kernel[i+radius]
			rowTmp := tmp.Row(y)
			for x := 0; x < outW; x++ {
				rowOut[x] += k * rowTmp[x]
			}
		}
	})
	return out
}

// Symmetric3 convolves in with a symmetric 3x3 kernel: w0 at the center,
// w1 on the edges, w2 on the corners. Border samples clamp to the nearest
// valid pixel, which for a one-pixel reach equals mirroring.
func Symmetric3(in *imagef.Plane, w0, w1, w2 float32, out *imagef.Plane) {
	if out.W != in.W || out.H != in.H {
		panic("dsp: Symmetric3 dimension mismatch")
	}
	w, h := in.W, in.H
	pool.Run(0, h, func(y int) {
		yt := y - 1
		if yt < 0 {
			yt = 0
		}
		yb := y + 1
		if yb >= h {
			yb = h - 1
		}
		rowT := in.Row(yt)
		rowC := in.Row(y)
		rowB := in.Row(yb)
		rowOut := out.Row(y)
		for x := 0; x < w; x++ {
			xl := x - 1
			if xl < 0 {
				xl = 0
			}
			xr := x + 1
			if xr >= w {
				xr = w - 1
			}
			rowOut[x] = w0*rowC[x] +
				w1*(rowC[xl]+rowC[xr]+rowT[x]+rowB[x]) +
				w2*(rowT[xl]+rowT[xr]+rowB[xl]+rowB[xr])
		}
	})
}
