package aq

import (
	"testing"

	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/quant"
)

func newTestOracle(wBlocks, hBlocks int) *DCTOracle {
	dim := frame.NewDimensions(wBlocks*frame.BlockDim, hBlocks*frame.BlockDim)
	strategies := frame.NewAcStrategyGrid(wBlocks, hBlocks)
	strategies.FillDCT8()
	qz := quant.NewQuantizer()
	qf := imagef.NewPlane(wBlocks, hBlocks)
	qf.Fill(1)
	raw := imagef.NewPlaneI(wBlocks, hBlocks)
	qz.SetQuantField(1, qf, raw)
	return &DCTOracle{
		Dim:        dim,
		Strategies: strategies,
		Quantizer:  qz,
		RawQuant:   raw,
	}
}

func TestOracleFlatRoundtripExact(t *testing.T) {
	o := newTestOracle(2, 2)
	opsin := imagef.NewPlane3(16, 16)
	for c := 0; c < 3; c++ {
		opsin[c].Fill(0.3)
	}
	out, err := o.Roundtrip(opsin, false, false)
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		for y := 0; y < 16; y++ {
			for x, v := range out[c].Row(y) {
				if absDiff(v, 0.3) > 1e-4 {
					t.Fatalf("channel %d (%d,%d) = %f, want 0.3", c, x, y, v)
				}
			}
		}
	}
}

func TestOracleErrorShrinksWithFinerQuant(t *testing.T) {
	coarse := newTestOracle(2, 2)
	fine := newTestOracle(2, 2)
	// Re-commit the fine oracle at ten times the quant strength.
	qf := imagef.NewPlane(2, 2)
	qf.Fill(10)
	fine.Quantizer.SetQuantField(10, qf, fine.RawQuant)

	opsin := imagef.NewPlane3(16, 16)
	for y := 0; y < 16; y++ {
		row := opsin[1].Row(y)
		for x := range row {
			row[x] = 0.05 * float32((x*7+y*3)%11)
		}
	}
	errFor := func(o *DCTOracle) float32 {
		out, err := o.Roundtrip(opsin, false, false)
		if err != nil {
			t.Fatal(err)
		}
		var worst float32
		for y := 0; y < 16; y++ {
			src := opsin[1].Row(y)
			dec := out[1].Row(y)
			for x := range src {
				if d := absDiff(src[x], dec[x]); d > worst {
					worst = d
				}
			}
		}
		return worst
	}
	if ec, ef := errFor(coarse), errFor(fine); ef >= ec {
		t.Errorf("fine quant error %f not below coarse %f", ef, ec)
	}
}

func TestOracleRejectsUnpaddedInput(t *testing.T) {
	o := newTestOracle(2, 2)
	if _, err := o.Roundtrip(imagef.NewPlane3(15, 16), false, false); err == nil {
		t.Error("wrong-size input not rejected")
	}
}

func TestQuantizedCoefficientsLayout(t *testing.T) {
	o := newTestOracle(2, 2)
	o.Strategies = frame.NewAcStrategyGrid(2, 2)
	o.Strategies.Set(0, 0, frame.DCT16x16)

	// Distinct flat value per 8x8 quadrant: only the per-block DCs are
	// non-zero, and they must land in the low-frequency corner.
	opsin := imagef.NewPlane3(16, 16)
	for y := 0; y < 16; y++ {
		row := opsin[1].Row(y)
		for x := range row {
			row[x] = 0.15 * float32(1+(y/8)*2+x/8)
		}
	}
	rows, err := o.QuantizedCoefficients(opsin)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows[1]) != 4*frame.DCTBlockSize {
		t.Fatalf("channel slab has %d coefficients, want %d", len(rows[1]), 4*frame.DCTBlockSize)
	}
	// Canonical width is 16; block (ix,iy)'s DC sits at iy*16+ix.
	corner := []float32{rows[1][0], rows[1][1], rows[1][16], rows[1][17]}
	for i := 1; i < 4; i++ {
		if corner[i] <= corner[i-1] {
			t.Errorf("corner DCs %v are not increasing with the quadrant values", corner)
		}
	}
	for k, v := range rows[1] {
		if k == 0 || k == 1 || k == 16 || k == 17 {
			continue
		}
		if absDiff(v, 0) > 0.5 {
			t.Errorf("coefficient %d = %f, want ~0 outside the corner", k, v)
		}
	}
}

func TestQuantizedCoefficientsBlockOrder(t *testing.T) {
	o := newTestOracle(2, 1)
	opsin := imagef.NewPlane3(16, 8)
	opsin[1].Fill(0.3)
	rows, err := o.QuantizedCoefficients(opsin)
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		if len(rows[c]) != 2*frame.DCTBlockSize {
			t.Fatalf("channel %d has %d coefficients, want %d", c, len(rows[c]), 2*frame.DCTBlockSize)
		}
	}
	// Both luma blocks are flat: DC non-zero, AC zero.
	for b := 0; b < 2; b++ {
		blk := rows[1][b*frame.DCTBlockSize : (b+1)*frame.DCTBlockSize]
		if blk[0] == 0 {
			t.Errorf("block %d DC is zero", b)
		}
		for k := 1; k < frame.DCTBlockSize; k++ {
			if blk[k] != 0 {
				t.Errorf("block %d AC %d = %f, want 0", b, k, blk[k])
			}
		}
	}
}
