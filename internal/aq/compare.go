package aq

import (
	"errors"

	"github.com/deepteams/jxl/internal/dsp"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/pool"
)

// Comparator scores a decoded image against a fixed reference and returns a
// per-pixel distortion map. GoodQualityScore and BadQualityScore define the
// score polarity: when the good score is the smaller of the two, lower
// scores are better and the optimizer minimizes.
type Comparator interface {
	SetReferenceImage(ref imagef.Plane3) error
	CompareWith(img imagef.Plane3) (score float32, diffmap *imagef.Plane, err error)
	GoodQualityScore() float32
	BadQualityScore() float32
}

// ErrNoReference reports a comparison attempted before SetReferenceImage.
var ErrNoReference = errors.New("aq: comparator has no reference image")

// Weights of the chroma channels relative to the gamma-compressed intensity
// difference, and the blur applied before scoring. The blur spreads errors
// over a small neighborhood so single-pixel outliers do not dominate the
// maximum norm.
const (
	cmpWeightX    = 8.0
	cmpWeightB    = 0.4
	cmpBlurRadius = 3
	cmpBlurSigma  = 1.5
)

// OpsinComparator is the default full-reference metric. It measures the
// intensity difference in SimpleGamma space, adds linearly weighted chroma
// differences, blurs the result and scores the maximum. It is a coarse
// stand-in for a full psychovisual model but satisfies the optimizer's
// contract: identical images score zero and localized distortions surface
// in the diffmap where they occur.
type OpsinComparator struct {
	ref      imagef.Plane3
	refGamma *imagef.Plane
	kernel   []float32
	haveRef  bool
}

// NewOpsinComparator returns a comparator with no reference image set.
func NewOpsinComparator() *OpsinComparator {
	return &OpsinComparator{
		kernel: dsp.GaussianKernel(cmpBlurRadius, cmpBlurSigma),
	}
}

// SetReferenceImage installs ref as the comparison baseline. The reference
// is copied; later mutation of ref does not affect comparisons.
func (c *OpsinComparator) SetReferenceImage(ref imagef.Plane3) error {
	for ch := 1; ch < 3; ch++ {
		if ref[ch].W != ref[0].W || ref[ch].H != ref[0].H {
			return errors.New("aq: reference planes disagree in size")
		}
	}
	c.ref = ref.Clone()
	c.refGamma = imagef.NewPlane(ref[1].W, ref[1].H)
	pool.Run(0, ref[1].H, func(y int) {
		src := c.ref[1].Row(y)
		dst := c.refGamma.Row(y)
		for x, v := range src {
			dst[x] = dsp.SimpleGamma(v)
		}
	})
	c.haveRef = true
	return nil
}

// CompareWith scores img against the reference. The returned diffmap has
// the reference dimensions and the score is its maximum.
func (c *OpsinComparator) CompareWith(img imagef.Plane3) (float32, *imagef.Plane, error) {
	if !c.haveRef {
		return 0, nil, ErrNoReference
	}
	w, h := c.ref[0].W, c.ref[0].H
	for ch := 0; ch < 3; ch++ {
		if img[ch].W != w || img[ch].H != h {
			return 0, nil, errors.New("aq: compared image size does not match reference")
		}
	}
	diff := imagef.NewPlane(w, h)
	pool.Run(0, h, func(y int) {
		rx, ry, rb := c.ref[0].Row(y), c.refGamma.Row(y), c.ref[2].Row(y)
		ix, iy, ib := img[0].Row(y), img[1].Row(y), img[2].Row(y)
		out := diff.Row(y)
		for x := 0; x < w; x++ {
			dy := ry[x] - dsp.SimpleGamma(iy[x])
			if dy < 0 {
				dy = -dy
			}
			dx := rx[x] - ix[x]
			if dx < 0 {
				dx = -dx
			}
			db := rb[x] - ib[x]
			if db < 0 {
				db = -db
			}
			out[x] = cmpWeightX*dx + dy + cmpWeightB*db
		}
	})
	blurred := dsp.ConvolveAndSample(diff, c.kernel, 1)
	_, score := blurred.MinMax()
	return score, blurred, nil
}

// GoodQualityScore returns the score of a perfect reproduction.
func (c *OpsinComparator) GoodQualityScore() float32 { return 0 }

// BadQualityScore returns a score no real comparison exceeds.
func (c *OpsinComparator) BadQualityScore() float32 { return 1000 }
