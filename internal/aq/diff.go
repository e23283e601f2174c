package aq

import (
	"github.com/deepteams/jxl/internal/dsp"
	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/pool"
)

// Smoothing and clipping parameters of the activity map. The sigma was
// tuned together with the modulation constants; the cutoff keeps isolated
// hard edges from dominating the blur.
const (
	kDiffSigma  = 8.2553856725566153
	kDiffCutoff = 0.11883287948847132
)

// kDiffMul0 scales the raw neighborhood differences;
// kMatchGammaOffset bridges the gamma gap between the intensity channel's
// exponent of 3 and the visual model's of roughly 2.6 by evaluating the
// derivative ratio slightly off the true intensity.
const (
	kDiffMul0         = 0.030220460298316064
	kMatchGammaOffset = 0.6542639346391887
)

// DiffPrecompute returns the per-pixel local-difference field of the
// intensity plane, padded to block multiples. Interior pixels combine the
// four axis neighbors and the two straddling differences; row and column
// ends fall back to a one-sided measure, and padding replicates a short
// average of the last valid samples.
func DiffPrecompute(in *imagef.Plane, dim frame.Dimensions, cutoff float32) *imagef.Plane {
	xsize, ysize := dim.XSize, dim.YSize
	out := imagef.NewPlane(dim.XSizePadded, dim.YSizePadded)

	pool.Run(0, ysize, func(y int) {
		y2 := y
		if y+1 < ysize {
			y2 = y + 1
		} else if y > 0 {
			y2 = y - 1
		}
		y1 := y
		if y == 0 && ysize >= 2 {
			y1 = y + 1
		} else if y > 0 {
			y1 = y - 1
		}
		rowIn := in.Row(y)
		rowIn1 := in.Row(y1)
		rowIn2 := in.Row(y2)
		rowOut := out.Row(y)

		gamma := func(v float32) float32 {
			return dsp.RatioOfDerivativesOfCubicRootToSimpleGamma(v+kMatchGammaOffset, false)
		}
		clamp := func(v float32) float32 {
			if v > cutoff {
				return cutoff
			}
			return v
		}
		abs := abs32

		x := 0
		// First pixel of the row: mirror the missing left neighbor.
		{
			x1 := 0
			if xsize > 1 {
				x1 = 1
			}
			x2 := x1
			diff := kDiffMul0 * (abs(rowIn[x]-rowIn[x2]) +
				abs(rowIn[x]-rowIn2[x]) +
				abs(rowIn[x]-rowIn[x1]) +
				abs(rowIn[x]-rowIn1[x]) +
				3*(abs(rowIn2[x]-rowIn1[x])+abs(rowIn[x1]-rowIn[x2])))
			rowOut[x] = clamp(diff * gamma(rowIn[x]))
			x++
		}
		for ; x+1 < xsize; x++ {
			diff := kDiffMul0 * (abs(rowIn[x]-rowIn[x+1]) +
				abs(rowIn[x]-rowIn2[x]) +
				abs(rowIn[x]-rowIn[x-1]) +
				abs(rowIn[x]-rowIn1[x]) +
				3*(abs(rowIn2[x]-rowIn1[x])+abs(rowIn[x-1]-rowIn[x+1])))
			rowOut[x] = clamp(diff * gamma(rowIn[x]))
		}
		// Last pixel of the row: only the vertical difference remains.
		if x < xsize {
			diff := 7 * kDiffMul0 * abs(rowIn[x]-rowIn2[x])
			rowOut[x] = clamp(diff * gamma(rowIn[x]))
			x++
		}

		// Extend to a multiple of 8 columns with a short average, which
		// reacts less to a noisy final column than replication would.
		lastval := rowOut[xsize-1]
		if xsize >= 3 {
			lastval += rowOut[xsize-2]
			lastval += rowOut[xsize-3]
			lastval *= 1.0 / 3
		} else if xsize >= 2 {
			lastval += rowOut[xsize-2]
			lastval *= 0.5
		}
		for ; x < out.W; x++ {
			rowOut[x] = lastval
		}
	})

	// The bottom row has no next row; recompute it from horizontal
	// differences only.
	{
		y := ysize - 1
		rowIn := in.Row(y)
		rowOut := out.Row(y)
		for x := 0; x+1 < xsize; x++ {
			diff := 7 * kDiffMul0 * abs32(rowIn[x]-rowIn[x+1])
			diff *= dsp.RatioOfDerivativesOfCubicRootToSimpleGamma(rowIn[x]+kMatchGammaOffset, false)
			if diff > cutoff {
				diff = cutoff
			}
			rowOut[x] = diff
		}
		if xsize > 1 {
			rowOut[xsize-1] = rowOut[xsize-2]
		}
	}
	// Extend to a multiple of 8 rows, averaging per column.
	if ysize != out.H {
		for x := 0; x < out.W; x++ {
			lastval := out.At(x, ysize-1)
			if ysize >= 3 {
				lastval += out.At(x, ysize-2)
				lastval += out.At(x, ysize-3)
				lastval *= 1.0 / 3
			} else if ysize >= 2 {
				lastval += out.At(x, ysize-2)
				lastval *= 0.5
			}
			for y := ysize; y < out.H; y++ {
				out.Set(x, y, lastval)
			}
		}
	}
	return out
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// AdaptiveQuantizationMap computes the per-block quant field for the given
// intensity plane and its AC-intensity estimates: local differences are
// blurred and subsampled to one value per block, then shaped by the
// per-block modulations.
func AdaptiveQuantizationMap(opsinY, intensityX, intensityY *imagef.Plane,
	dim frame.Dimensions, scale float32) *imagef.Plane {
	sigma := float64(kDiffSigma)
	radius := int(2*sigma + 0.5)
	kernel := dsp.GaussianKernel(radius, sigma)
	out := DiffPrecompute(opsinY, dim, kDiffCutoff)
	out = dsp.ConvolveAndSample(out, kernel, frame.BlockDim)
	PerBlockModulations(intensityX, intensityY, scale, out)
	return out
}

// Weights of the 3x3 Gaussian used to split a plane into its smooth (DC)
// and detail (AC) parts.
const (
	kAcEstW0 = 0.320356
	kAcEstW1 = 0.122822
	kAcEstW2 = 0.047089
)

// IntensityAcEstimate returns the detail component of a plane: the input
// minus its 3x3 Gaussian smoothing. The low frequencies are handled by the
// DC path, so only this remainder should drive the AC modulations.
func IntensityAcEstimate(in *imagef.Plane) *imagef.Plane {
	smoothed := imagef.NewPlane(in.W, in.H)
	dsp.Symmetric3(in, kAcEstW0, kAcEstW1, kAcEstW2, smoothed)
	pool.Run(0, in.H, func(y int) {
		src := in.Row(y)
		dst := smoothed.Row(y)
		for x := range dst {
			dst[x] = src[x] - dst[x]
		}
	})
	return smoothed
}
