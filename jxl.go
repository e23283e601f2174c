package jxl

import (
	"github.com/deepteams/jxl/internal/aq"
	"github.com/deepteams/jxl/internal/bitio"
	"github.com/deepteams/jxl/internal/entropy"
	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/quant"
)

// EncoderState bundles the per-frame rate-control state: the padded opsin
// image, the transform strategy grid, the quant field being refined and the
// quantizer holding the committed result. All 8x8 blocks start on DCT8;
// callers wanting larger transforms set them on Strategies before running
// the field builders.
type EncoderState struct {
	Dim        Dimensions
	Opsin      Plane3
	Strategies *AcStrategyGrid
	QuantField *Plane
	RawQuant   *PlaneI

	quantizer *quant.Quantizer
}

// NewEncoderState prepares the state for an opsin image of the given pixel
// size. The planes are copied into block-aligned planes with edge
// replication; they must be at least width x height. The quant field starts
// uniform at 1.
func NewEncoderState(opsin Plane3, width, height int) *EncoderState {
	dim := frame.NewDimensions(width, height)
	for c := 0; c < 3; c++ {
		if opsin[c].W < width || opsin[c].H < height {
			panic("jxl: opsin plane smaller than the frame")
		}
	}
	padded := imagef.NewPlane3(dim.XSizePadded, dim.YSizePadded)
	for c := 0; c < 3; c++ {
		padPlane(padded[c], opsin[c], dim)
	}
	strategies := frame.NewAcStrategyGrid(dim.XSizeBlocks, dim.YSizeBlocks)
	strategies.FillDCT8()
	qf := imagef.NewPlane(dim.XSizeBlocks, dim.YSizeBlocks)
	qf.Fill(1)
	return &EncoderState{
		Dim:        dim,
		Opsin:      padded,
		Strategies: strategies,
		QuantField: qf,
		RawQuant:   imagef.NewPlaneI(dim.XSizeBlocks, dim.YSizeBlocks),
		quantizer:  quant.NewQuantizer(),
	}
}

// padPlane copies the valid region of src into dst and replicates the last
// valid column and row into the alignment padding.
func padPlane(dst, src *Plane, dim Dimensions) {
	for y := 0; y < dim.YSizePadded; y++ {
		sy := y
		if sy >= dim.YSize {
			sy = dim.YSize - 1
		}
		srcRow := src.Row(sy)
		dstRow := dst.Row(y)
		copy(dstRow[:dim.XSize], srcRow[:dim.XSize])
		for x := dim.XSize; x < dim.XSizePadded; x++ {
			dstRow[x] = srcRow[dim.XSize-1]
		}
	}
}

func (s *EncoderState) oracle() *aq.DCTOracle {
	return &aq.DCTOracle{
		Dim:        s.Dim,
		Strategies: s.Strategies,
		Quantizer:  s.quantizer,
		RawQuant:   s.RawQuant,
	}
}

// InitialQuantDC returns the DC quant strength for a target distance.
func InitialQuantDC(distance float32) float32 {
	return aq.InitialQuantDC(distance)
}

// InitialQuantField replaces the quant field with the model-based field for
// the state's opsin image and returns it. The field is not yet committed to
// the quantizer; run FindBestQuantizer for that.
func (s *EncoderState) InitialQuantField(p *Params) *Plane {
	rescale := p.Rescale
	if rescale == 0 {
		rescale = 1
	}
	s.QuantField = aq.InitialQuantField(p.distance(), s.Opsin, s.Dim, rescale)
	return s.QuantField
}

// FindBestQuantizer refines the quant field per the params and commits it,
// filling RawQuant with the per-block raw indices. linear is the comparator
// reference; pass the zero Plane3 to score against the state's own opsin
// image. Its planes are padded like the input when needed.
func (s *EncoderState) FindBestQuantizer(linear Plane3, p *Params) error {
	ref := s.Opsin
	if linear[0] != nil {
		if linear[0].W != s.Dim.XSizePadded || linear[0].H != s.Dim.YSizePadded {
			padded := imagef.NewPlane3(s.Dim.XSizePadded, s.Dim.YSizePadded)
			for c := 0; c < 3; c++ {
				padPlane(padded[c], linear[c], s.Dim)
			}
			ref = padded
		} else {
			ref = linear
		}
	}
	cmp := p.Comparator
	if cmp == nil {
		cmp = aq.NewOpsinComparator()
	}
	var oracle Reconstructor = s.oracle()
	if p.Oracle != nil {
		oracle = p.Oracle
	}
	opt := &aq.Optimizer{
		Dim:        s.Dim,
		Strategies: s.Strategies,
		Quantizer:  s.quantizer,
		QuantField: s.QuantField,
		RawQuant:   s.RawQuant,
		Oracle:     oracle,
		Comparator: cmp,
		Schedule:   p.Schedule,
		Debug:      p.Debug,
	}
	return opt.FindBestQuantizer(ref, s.Opsin, p.search())
}

// QuantDC returns the committed DC quant strength.
func (s *EncoderState) QuantDC() float32 { return s.quantizer.QuantDC() }

// RoundtripImage reconstructs the opsin image through the committed
// quantizer, as the decoder would see it.
func (s *EncoderState) RoundtripImage() (Plane3, error) {
	return s.oracle().Roundtrip(s.Opsin, false, false)
}

// TokenizeCoefficients quantizes the image under the committed quantizer
// and tokenizes the coefficients against the default block context map.
func (s *EncoderState) TokenizeCoefficients() ([]Token, error) {
	rows, err := s.oracle().QuantizedCoefficients(s.Opsin)
	if err != nil {
		return nil, err
	}
	bw, bh := s.Dim.XSizeBlocks, s.Dim.YSizeBlocks
	nzGrid := [3]*imagef.PlaneI{
		imagef.NewPlaneI(bw, bh),
		imagef.NewPlaneI(bw, bh),
		imagef.NewPlaneI(bw, bh),
	}
	qdc := imagef.NewPlaneB(bw, bh)
	return entropy.TokenizeCoefficients(
		frame.DefaultCoeffOrders(), rows, s.Strategies, frame.CS444,
		nzGrid, qdc, s.RawQuant, entropy.DefaultBlockCtxMap(), nil), nil
}

// DefaultBlockCtxMap returns the built-in block context map.
func DefaultBlockCtxMap() *BlockCtxMap { return entropy.DefaultBlockCtxMap() }

// EncodeBlockCtxMap serializes a block context map to its wire bytes.
func EncodeBlockCtxMap(m *BlockCtxMap) []byte {
	w := bitio.NewWriter(64)
	entropy.EncodeBlockCtxMap(m, w)
	return w.Finish()
}

// DecodeBlockCtxMap parses a block context map from its wire bytes.
func DecodeBlockCtxMap(data []byte) (*BlockCtxMap, error) {
	return entropy.DecodeBlockCtxMap(bitio.NewReader(data))
}
