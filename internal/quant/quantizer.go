// Package quant implements the shared quantizer object that maps the
// per-block quant field onto integer quant indices and per-frequency
// reconstruction steps. The optimizer commits candidate fields into it and
// the round-trip oracle reads steps back out of it.
package quant

import (
	"math"

	"github.com/deepteams/jxl/internal/imagef"
)

const (
	// globalScaleDenom is the fixed-point denominator of the global scale.
	globalScaleDenom = 1 << 16
	// MaxQuant is the largest raw quant index.
	MaxQuant = 255
	// dcWeight is the base reconstruction step of the DC coefficient,
	// relative to the DC quant strength.
	dcWeight = 0.15
)

// Quantizer holds the committed quant state: a global fixed-point scale
// such that every raw index fits in 1..MaxQuant, the DC quant strength,
// and the per-frequency step model.
type Quantizer struct {
	globalScale  int32 // numerator over globalScaleDenom
	globalScaleF float32
	invGlobal    float32
	quantDC      float32
}

// NewQuantizer returns a quantizer committed to a neutral uniform strength
// of 1.
func NewQuantizer() *Quantizer {
	q := &Quantizer{}
	q.setGlobalScale(1.0 / 64)
	q.quantDC = 1
	return q
}

// setGlobalScale commits scale (field units per raw step), clamped so the
// fixed-point numerator stays positive.
func (q *Quantizer) setGlobalScale(scale float32) {
	gs := int32(scale*globalScaleDenom + 0.5)
	if gs < 1 {
		gs = 1
	}
	q.globalScale = gs
	q.globalScaleF = float32(gs) / globalScaleDenom
	q.invGlobal = 1 / q.globalScaleF
}

// Scale returns the field-unit size of one raw quant step.
func (q *Quantizer) Scale() float32 { return q.globalScaleF }

// InvGlobalScale returns 1/Scale.
func (q *Quantizer) InvGlobalScale() float32 { return q.invGlobal }

// QuantDC returns the committed DC quant strength.
func (q *Quantizer) QuantDC() float32 { return q.quantDC }

// SetQuantField commits a quant field. The global scale is chosen so the
// field maximum maps to the top raw index; when raw is non-nil every block's
// raw index is written there, clamped to 1..MaxQuant. The field and raw
// grids must agree in size.
func (q *Quantizer) SetQuantField(quantDC float32, qf *imagef.Plane, raw *imagef.PlaneI) {
	if raw != nil && (raw.W != qf.W || raw.H != qf.H) {
		panic("quant: raw grid size does not match field")
	}
	_, maxQ := qf.MinMax()
	if maxQ <= 0 {
		maxQ = 1
	}
	q.setGlobalScale(maxQ / MaxQuant)
	q.quantDC = quantDC
	if raw == nil {
		return
	}
	for y := 0; y < qf.H; y++ {
		src := qf.Row(y)
		dst := raw.Row(y)
		for x, v := range src {
			r := int32(v*q.invGlobal + 0.5)
			if r < 1 {
				r = 1
			} else if r > MaxQuant {
				r = MaxQuant
			}
			dst[x] = r
		}
	}
}

// SetQuant commits a uniform quant strength for both DC and AC.
func (q *Quantizer) SetQuant(quantDC, quantAC float32) {
	if quantAC <= 0 {
		quantAC = 1.0 / 64
	}
	q.setGlobalScale(quantAC / MaxQuant)
	q.quantDC = quantDC
}

// RawFromField maps a single field value to its raw index under the
// committed global scale.
func (q *Quantizer) RawFromField(v float32) int32 {
	r := int32(v*q.invGlobal + 0.5)
	if r < 1 {
		r = 1
	} else if r > MaxQuant {
		r = MaxQuant
	}
	return r
}

// FieldFromRaw maps a raw index back to field units.
func (q *Quantizer) FieldFromRaw(raw int32) float32 {
	return float32(raw) * q.globalScaleF
}

// acWeight is the per-frequency step model: a radial ramp that quantizes
// high frequencies more coarsely. fx, fy are coefficient coordinates within
// a fw x fh coefficient rectangle.
func acWeight(fx, fy, fw, fh int) float32 {
	nx := float64(fx) / float64(fw-1)
	ny := float64(fy) / float64(fh-1)
	r2 := (nx*nx + ny*ny) / 2
	return float32(0.25 + 1.25*r2)
}

// InvQuantAC returns the reconstruction step for coefficient (fx, fy) of a
// fw x fh transform under raw quant index raw.
func (q *Quantizer) InvQuantAC(raw int32, fx, fy, fw, fh int) float32 {
	if raw < 1 {
		raw = 1
	}
	return acWeight(fx, fy, fw, fh) / (float32(raw) * q.globalScaleF)
}

// InvQuantDC returns the reconstruction step of low-frequency coefficients.
func (q *Quantizer) InvQuantDC() float32 {
	dc := q.quantDC
	if dc <= 0 {
		dc = 1e-3
	}
	return dcWeight / dc
}

// QuantizeCoeff maps one transform coefficient to its integer-valued
// quantized form given the reconstruction step.
func QuantizeCoeff(coeff, step float32) float32 {
	return float32(math.Round(float64(coeff / step)))
}
