package aq

import (
	"math"

	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
)

// Base quant strengths per unit of target distance. The DC strength grows
// sublinearly past kDcQuantMul so very low-quality settings keep a usable
// DC reconstruction.
const (
	kDcQuantMul = 2.9
	kDcQuantPow = 0.55
	kDcQuant    = 1.18
	kAcQuant    = 0.84
)

// InitialQuantDC returns the DC quant strength for a target distance. It is
// capped at 50 so the largest DC value stays representable after the
// inverse smoothing filter adds slack to the nominal range.
func InitialQuantDC(target float32) float32 {
	dcTarget := kDcQuantMul * float32(math.Pow(float64(target)/kDcQuantMul, kDcQuantPow))
	if target < dcTarget {
		dcTarget = target
	}
	q := kDcQuant / dcTarget
	if q > 50 {
		q = 50
	}
	return q
}

// InitialQuantField builds the model-based quant field for opsin at the
// given target distance. rescale stretches the AC strength uniformly; pass
// 1 for the nominal field. The opsin planes must be padded to block
// multiples of dim.
func InitialQuantField(target float32, opsin imagef.Plane3, dim frame.Dimensions,
	rescale float32) *imagef.Plane {
	quantAC := kAcQuant / target
	intensityX := IntensityAcEstimate(opsin[0])
	intensityY := IntensityAcEstimate(opsin[1])
	return AdaptiveQuantizationMap(opsin[1], intensityX, intensityY, dim, quantAC*rescale)
}
