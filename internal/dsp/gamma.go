package dsp

import "math"

// Gamma model constants. The mul factors bridge the scaling difference
// between the codec's intensity range and the psychovisual model's.
const (
	kSGmul     = 200.0
	kSGmul2    = 1.0 / 74.0
	kLog2      = 0.693147181
	kSGRetMul  = kSGmul2 * 18.6580932135 * kLog2
	kSGRetAdd  = kSGmul2 * -20.2789020414
	kSGVOffset = 7.14672470003
)

// SimpleGamma is an HDR-compatible gamma function mapping linear intensity
// to the psychovisual space. Negative inputs clamp to zero; negative
// photons don't exist and would otherwise produce a NaN in the log.
func SimpleGamma(v float32) float32 {
	x := float64(v) * kSGmul
	if x < 0 {
		x = 0
	}
	return float32(kSGRetMul*math.Log2(x+kSGVOffset) + kSGRetAdd)
}

// RatioOfDerivativesOfCubicRootToSimpleGamma converts sensitivity between
// the codec's cube-root intensity space and SimpleGamma's log-gamma space.
// The intensity channel stores the cube root of photons, so the derivative
// ratio at v moves a local contrast measure from one space to the other.
// With invert set the reciprocal ratio is returned.
func RatioOfDerivativesOfCubicRootToSimpleGamma(v float32, invert bool) float32 {
	if v < 0 {
		v = 0
	}
	v64 := float64(v)
	v2 := v64 * v64
	num := kSGRetMul * 3 * kSGmul * v2
	den := kLog2*kSGmul*v64*v2 + kSGVOffset*kLog2
	if invert {
		return float32(num / den)
	}
	return float32(den / num)
}
