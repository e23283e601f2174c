package aq

import (
	"fmt"

	"github.com/deepteams/jxl/internal/dsp"
	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/pool"
	"github.com/deepteams/jxl/internal/quant"
)

// Reconstructor produces the decoder-side image for the currently committed
// quant field. The optimizer scores its output against the reference to
// steer the search. saveDecoded and applyColorTransform mirror the
// encoder-side roundtrip switches; implementations working purely in the
// opsin domain may ignore them.
type Reconstructor interface {
	Roundtrip(opsin imagef.Plane3, saveDecoded, applyColorTransform bool) (imagef.Plane3, error)
}

// DCTOracle is the default Reconstructor: per transform footprint it runs
// forward 8x8 DCTs, quantizes every coefficient with the committed steps
// and inverts. It stays in the opsin domain, so the two roundtrip switches
// are accepted and ignored. Input planes must be padded to block multiples.
type DCTOracle struct {
	Dim        frame.Dimensions
	Strategies *frame.AcStrategyGrid
	Quantizer  *quant.Quantizer
	RawQuant   *imagef.PlaneI
}

func (o *DCTOracle) checkInput(opsin imagef.Plane3) error {
	for c := 0; c < 3; c++ {
		if opsin[c].W != o.Dim.XSizePadded || opsin[c].H != o.Dim.YSizePadded {
			return fmt.Errorf("aq: oracle input plane %d is %dx%d, want padded %dx%d",
				c, opsin[c].W, opsin[c].H, o.Dim.XSizePadded, o.Dim.YSizePadded)
		}
	}
	if o.Strategies.W != o.Dim.XSizeBlocks || o.Strategies.H != o.Dim.YSizeBlocks {
		return fmt.Errorf("aq: strategy grid %dx%d does not match %dx%d blocks",
			o.Strategies.W, o.Strategies.H, o.Dim.XSizeBlocks, o.Dim.YSizeBlocks)
	}
	return nil
}

// Roundtrip reconstructs opsin through quantization, group by group in
// parallel.
func (o *DCTOracle) Roundtrip(opsin imagef.Plane3, saveDecoded, applyColorTransform bool) (imagef.Plane3, error) {
	if err := o.checkInput(opsin); err != nil {
		return imagef.Plane3{}, err
	}
	out := imagef.NewPlane3(o.Dim.XSizePadded, o.Dim.YSizePadded)
	numGroups := o.Dim.XSizeGroups * o.Dim.YSizeGroups
	pool.Run(0, numGroups, func(g int) {
		gx := g % o.Dim.XSizeGroups
		gy := g / o.Dim.XSizeGroups
		byEnd := minInt((gy+1)*frame.GroupDimInBlocks, o.Dim.YSizeBlocks)
		bxEnd := minInt((gx+1)*frame.GroupDimInBlocks, o.Dim.XSizeBlocks)
		for by := gy * frame.GroupDimInBlocks; by < byEnd; by++ {
			for bx := gx * frame.GroupDimInBlocks; bx < bxEnd; bx++ {
				if !o.Strategies.IsFirst(bx, by) {
					continue
				}
				o.roundtripFootprint(opsin, out, bx, by)
			}
		}
	})
	return out, nil
}

// roundtripFootprint quantizes and reconstructs every covered 8x8 block of
// the strategy instance whose first block is at (bx, by). All covered
// blocks share the first block's raw quant index.
func (o *DCTOracle) roundtripFootprint(opsin, out imagef.Plane3, bx, by int) {
	acs := o.Strategies.Strategy(bx, by)
	raw := o.RawQuant.At(bx, by)
	var coeffs [frame.DCTBlockSize]float32
	for iy := 0; iy < acs.CoveredBlocksY(); iy++ {
		for ix := 0; ix < acs.CoveredBlocksX(); ix++ {
			px := (bx + ix) * frame.BlockDim
			py := (by + iy) * frame.BlockDim
			for c := 0; c < 3; c++ {
				in := opsin[c]
				dsp.FDCT8x8(in.Pix[py*in.Stride+px:], in.Stride, &coeffs)
				o.quantizeBlock(raw, &coeffs)
				dst := out[c]
				dsp.IDCT8x8(&coeffs, dst.Pix[py*dst.Stride+px:], dst.Stride)
			}
		}
	}
}

// quantizeBlock rounds each coefficient to its reconstruction grid in
// place.
func (o *DCTOracle) quantizeBlock(raw int32, coeffs *[frame.DCTBlockSize]float32) {
	dcStep := o.Quantizer.InvQuantDC()
	coeffs[0] = quant.QuantizeCoeff(coeffs[0], dcStep) * dcStep
	for k := 1; k < frame.DCTBlockSize; k++ {
		step := o.Quantizer.InvQuantAC(raw, k%frame.BlockDim, k/frame.BlockDim,
			frame.BlockDim, frame.BlockDim)
		coeffs[k] = quant.QuantizeCoeff(coeffs[k], step) * step
	}
}

// QuantizedCoefficients returns each channel's integer-valued quantized
// coefficients in block visit order, ready for the tokenizer. Multi-block
// footprints are laid out in the canonical orientation with the per-block
// DCs interleaved into the low-frequency corner, so the tokenizer's
// corner-skipping matches the per-block DC set.
func (o *DCTOracle) QuantizedCoefficients(opsin imagef.Plane3) ([3][]float32, error) {
	if err := o.checkInput(opsin); err != nil {
		return [3][]float32{}, err
	}
	var rows [3][]float32
	var coeffs [frame.DCTBlockSize]float32
	for by := 0; by < o.Strategies.H; by++ {
		for bx := 0; bx < o.Strategies.W; bx++ {
			if !o.Strategies.IsFirst(bx, by) {
				continue
			}
			acs := o.Strategies.Strategy(bx, by)
			raw := o.RawQuant.At(bx, by)
			cxc, cyc := acs.CanonicalLayout()
			transposed := acs.CoveredBlocksY() > acs.CoveredBlocksX()
			for c := 0; c < 3; c++ {
				// Every slab cell is written below, so the pooled memory
				// needs no clearing.
				slab := pool.GetFloat(acs.CoveredBlocks() * frame.DCTBlockSize)
				for iy := 0; iy < acs.CoveredBlocksY(); iy++ {
					for ix := 0; ix < acs.CoveredBlocksX(); ix++ {
						px := (bx + ix) * frame.BlockDim
						py := (by + iy) * frame.BlockDim
						in := opsin[c]
						dsp.FDCT8x8(in.Pix[py*in.Stride+px:], in.Stride, &coeffs)
						dcStep := o.Quantizer.InvQuantDC()
						for k := 0; k < frame.DCTBlockSize; k++ {
							fx, fy := k%frame.BlockDim, k/frame.BlockDim
							var q float32
							if k == 0 {
								q = quant.QuantizeCoeff(coeffs[0], dcStep)
							} else {
								step := o.Quantizer.InvQuantAC(raw, fx, fy,
									frame.BlockDim, frame.BlockDim)
								q = quant.QuantizeCoeff(coeffs[k], step)
							}
							jx, jy, gx, gy := ix, iy, fx, fy
							if transposed {
								jx, jy, gx, gy = iy, ix, fy, fx
							}
							slab[(gy*cyc+jy)*(cxc*frame.BlockDim)+gx*cxc+jx] = q
						}
					}
				}
				rows[c] = append(rows[c], slab...)
				pool.PutFloat(slab)
			}
		}
	}
	return rows, nil
}
