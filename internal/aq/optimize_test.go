package aq

import (
	"testing"

	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/quant"
)

// fixedComparator scores every comparison with the same value and a
// constant diffmap.
type fixedComparator struct {
	calls int
	score float32
	diff  float32
}

func (c *fixedComparator) SetReferenceImage(imagef.Plane3) error { return nil }

func (c *fixedComparator) CompareWith(img imagef.Plane3) (float32, *imagef.Plane, error) {
	c.calls++
	d := imagef.NewPlane(img[0].W, img[0].H)
	d.Fill(c.diff)
	return c.score, d, nil
}

func (c *fixedComparator) GoodQualityScore() float32 { return 0 }
func (c *fixedComparator) BadQualityScore() float32  { return 1 }

// identityOracle returns its input untouched.
type identityOracle struct {
	calls int
}

func (o *identityOracle) Roundtrip(opsin imagef.Plane3, _, _ bool) (imagef.Plane3, error) {
	o.calls++
	return opsin.Clone(), nil
}

// newTestOptimizer builds an optimizer over a w x h all-8x8 block grid with
// a mildly varying quant field.
func newTestOptimizer(w, h int) (*Optimizer, *fixedComparator, *identityOracle) {
	dim := frame.NewDimensions(w*frame.BlockDim, h*frame.BlockDim)
	strategies := frame.NewAcStrategyGrid(w, h)
	strategies.FillDCT8()
	qf := imagef.NewPlane(w, h)
	for y := 0; y < h; y++ {
		row := qf.Row(y)
		for x := range row {
			row[x] = 0.5 + 0.1*float32(y*w+x)
		}
	}
	cmp := &fixedComparator{}
	oracle := &identityOracle{}
	return &Optimizer{
		Dim:        dim,
		Strategies: strategies,
		Quantizer:  quant.NewQuantizer(),
		QuantField: qf,
		RawQuant:   imagef.NewPlaneI(w, h),
		Oracle:     oracle,
		Comparator: cmp,
	}, cmp, oracle
}

func testImage(dim frame.Dimensions) imagef.Plane3 {
	img := imagef.NewPlane3(dim.XSizePadded, dim.YSizePadded)
	for c := 0; c < 3; c++ {
		for y := 0; y < img[c].H; y++ {
			row := img[c].Row(y)
			for x := range row {
				row[x] = 0.1 * float32((x+y*3+c)%7)
			}
		}
	}
	return img
}

func planesEqual(a, b *imagef.Plane) bool {
	if a.W != b.W || a.H != b.H {
		return false
	}
	for y := 0; y < a.H; y++ {
		ra, rb := a.Row(y), b.Row(y)
		for x := range ra {
			if ra[x] != rb[x] {
				return false
			}
		}
	}
	return true
}

func TestStandardSearchZeroIterations(t *testing.T) {
	o, cmp, oracle := newTestOptimizer(4, 3)
	cmp.score = 1
	cmp.diff = 1
	before := o.QuantField.Clone()
	img := testImage(o.Dim)

	err := o.FindBestQuantizer(img, img, &SearchParams{
		Distance: 1,
		MaxIters: 0,
		Tier:     TierKitten,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.calls != 1 {
		t.Errorf("comparator ran %d times, want 1", cmp.calls)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle ran %d times, want 1", oracle.calls)
	}
	if !planesEqual(before, o.QuantField) {
		t.Error("quant field changed with zero feedback iterations")
	}
	// The single pass still commits: raw indices reflect the field.
	for y := 0; y < o.RawQuant.H; y++ {
		row := o.RawQuant.Row(y)
		for x, raw := range row {
			if want := o.Quantizer.RawFromField(o.QuantField.At(x, y)); raw != want {
				t.Fatalf("raw[%d][%d] = %d, want %d", y, x, raw, want)
			}
		}
	}
}

func TestStandardSearchRaisesQuantWhereDistortionHigh(t *testing.T) {
	o, cmp, _ := newTestOptimizer(3, 3)
	cmp.score = 3
	cmp.diff = 3 // everywhere three times over target
	before := o.QuantField.Clone()
	img := testImage(o.Dim)

	err := o.FindBestQuantizer(img, img, &SearchParams{
		Distance: 1,
		MaxIters: 1,
		Tier:     TierKitten,
	})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if o.QuantField.At(x, y) <= before.At(x, y) {
				t.Errorf("field (%d,%d) = %f, did not grow from %f",
					x, y, o.QuantField.At(x, y), before.At(x, y))
			}
		}
	}
}

func TestMaxErrorSearchPerfectRoundtripKeepsField(t *testing.T) {
	o, _, _ := newTestOptimizer(4, 2)
	before := o.QuantField.Clone()
	img := testImage(o.Dim)

	err := o.FindBestQuantizer(img, img, &SearchParams{
		Distance:     1,
		MaxIters:     2,
		MaxErrorMode: true,
		MaxError:     [3]float32{0.01, 0.01, 0.01},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !planesEqual(before, o.QuantField) {
		t.Error("perfect roundtrip changed the quant field")
	}
}

func TestHQSearchCommitsBestField(t *testing.T) {
	o, cmp, _ := newTestOptimizer(3, 2)
	cmp.score = 0 // always under target, nothing to fix
	before := o.QuantField.Clone()
	img := testImage(o.Dim)

	err := o.FindBestQuantizer(img, img, &SearchParams{
		Distance:   1,
		MaxItersHQ: 1,
		Tier:       TierTortoise,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !planesEqual(before, o.QuantField) {
		t.Error("field under target was modified")
	}
	if got := o.Quantizer.QuantDC(); got != 1.2 {
		t.Errorf("committed DC quant %f, want the 1.2 starting point", got)
	}
}

func TestFindBestQuantizerFalconUniform(t *testing.T) {
	o, cmp, oracle := newTestOptimizer(3, 3)
	img := testImage(o.Dim)
	err := o.FindBestQuantizer(img, img, &SearchParams{
		Distance: 2,
		Tier:     TierFalcon,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.calls != 0 || oracle.calls != 0 {
		t.Error("fastest tier ran a scoring pass")
	}
	if got, want := o.Quantizer.QuantDC(), InitialQuantDC(2); got != want {
		t.Errorf("DC quant = %f, want %f", got, want)
	}
	first := o.RawQuant.At(0, 0)
	for y := 0; y < o.RawQuant.H; y++ {
		for x := 0; x < o.RawQuant.W; x++ {
			if o.RawQuant.At(x, y) != first {
				t.Fatalf("raw field not uniform at (%d,%d)", x, y)
			}
		}
	}
}

func TestAdjustQuantFieldFootprintMax(t *testing.T) {
	strategies := frame.NewAcStrategyGrid(4, 2)
	strategies.Set(0, 0, frame.DCT16x16)
	strategies.Set(2, 0, frame.DCT8)
	strategies.Set(3, 0, frame.DCT8)
	strategies.Set(2, 1, frame.DCT16x8)
	qf := imagef.NewPlane(4, 2)
	vals := [][]float32{
		{1, 4, 7, 8},
		{2, 3, 5, 6},
	}
	for y, row := range vals {
		copy(qf.Row(y), row)
	}
	AdjustQuantField(strategies, qf)

	for _, cell := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if got := qf.At(cell[0], cell[1]); got != 4 {
			t.Errorf("16x16 cell (%d,%d) = %f, want footprint max 4", cell[0], cell[1], got)
		}
	}
	if qf.At(2, 0) != 7 || qf.At(3, 0) != 8 {
		t.Error("plain 8x8 cells were modified")
	}
	if qf.At(2, 1) != 6 || qf.At(3, 1) != 6 {
		t.Error("16x8 cells did not take the footprint max")
	}
}

func TestAdjustQuantVal(t *testing.T) {
	q := float32(2.0)
	if AdjustQuantVal(&q, 0, 0.1, 2.0) {
		t.Error("value at the ceiling reported a change")
	}
	if q != 2.0 {
		t.Errorf("value at the ceiling moved to %f", q)
	}

	q = 1.0
	if !AdjustQuantVal(&q, 0, 0.25, 4.0) {
		t.Error("no change reported")
	}
	// 1/1 - 0.25 = 0.75, so q becomes 1/0.75.
	if want := float32(1 / 0.75); absDiff(q, want) > 1e-6 {
		t.Errorf("q = %f, want %f", q, want)
	}

	// Farther from the peak moves less.
	qNear, qFar := float32(1.0), float32(1.0)
	AdjustQuantVal(&qNear, 0, 0.25, 4.0)
	AdjustQuantVal(&qFar, 3, 0.25, 4.0)
	if qFar >= qNear {
		t.Errorf("far adjustment %f not smaller than near %f", qFar, qNear)
	}

	// Never exceeds the ceiling.
	q = 1.0
	AdjustQuantVal(&q, 0, 10, 2.0)
	if q > 2.0 {
		t.Errorf("q = %f exceeds ceiling 2", q)
	}
}

func TestTileDistMapUniform(t *testing.T) {
	strategies := frame.NewAcStrategyGrid(2, 2)
	strategies.FillDCT8()
	distmap := imagef.NewPlane(16, 16)
	distmap.Fill(0.5)
	tiles := TileDistMap(distmap, 8, 0, strategies)
	// The order-16 mean of a constant is the constant, times the norm
	// factor.
	want := float32(1.2 * 0.5)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := tiles.At(x, y); absDiff(got, want) > 1e-4 {
				t.Errorf("tile (%d,%d) = %f, want %f", x, y, got, want)
			}
		}
	}
}

func TestTileDistMapMonotone(t *testing.T) {
	strategies := frame.NewAcStrategyGrid(2, 2)
	strategies.FillDCT8()
	distmap := imagef.NewPlane(16, 16)
	distmap.Fill(0.5)
	base := TileDistMap(distmap, 8, 0, strategies)

	distmap.Set(3, 4, 2.0) // inside tile (0,0)
	bumped := TileDistMap(distmap, 8, 0, strategies)
	if bumped.At(0, 0) <= base.At(0, 0) {
		t.Error("raising a pixel did not raise its tile")
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if bumped.At(x, y) < base.At(x, y) {
				t.Errorf("tile (%d,%d) decreased", x, y)
			}
		}
	}
}

func TestTileDistMapMultiBlockPools(t *testing.T) {
	strategies := frame.NewAcStrategyGrid(2, 2)
	strategies.Set(0, 0, frame.DCT16x16)
	distmap := imagef.NewPlane(16, 16)
	distmap.Fill(0.25)
	distmap.Set(12, 12, 3.0)
	tiles := TileDistMap(distmap, 8, 0, strategies)
	v := tiles.At(0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if tiles.At(x, y) != v {
				t.Errorf("footprint cell (%d,%d) = %f, want pooled %f", x, y, tiles.At(x, y), v)
			}
		}
	}
	if v <= 1.2*0.25 {
		t.Errorf("pooled value %f ignores the hot pixel", v)
	}
}

func TestDistToPeakMapNoPeaks(t *testing.T) {
	field := imagef.NewPlane(5, 5)
	field.Fill(0.5)
	m := DistToPeakMap(field, 1.0, 2, 0)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if m.At(x, y) != -1 {
				t.Fatalf("(%d,%d) = %f, want -1 with no peaks", x, y, m.At(x, y))
			}
		}
	}
}

func TestDistToPeakMapSinglePeak(t *testing.T) {
	field := imagef.NewPlane(5, 5)
	field.Fill(0.5)
	field.Set(2, 2, 2.0)
	m := DistToPeakMap(field, 1.0, 1, 0)
	if m.At(2, 2) != 0 {
		t.Errorf("peak distance = %f, want 0", m.At(2, 2))
	}
	for _, cell := range [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}, {1, 1}, {3, 3}} {
		if got := m.At(cell[0], cell[1]); got != 1 {
			t.Errorf("neighbor (%d,%d) = %f, want 1", cell[0], cell[1], got)
		}
	}
	if m.At(0, 2) != -1 || m.At(4, 4) != -1 {
		t.Error("cells outside the peak window were marked")
	}
}

func TestInitialQuantDC(t *testing.T) {
	if got := InitialQuantDC(1e6); got > 0.01 {
		t.Errorf("huge target gave DC quant %f, want near zero", got)
	}
	if got := InitialQuantDC(1e-4); got != 50 {
		t.Errorf("tiny target gave %f, want the 50 cap", got)
	}
	if InitialQuantDC(0.5) <= InitialQuantDC(1) || InitialQuantDC(1) <= InitialQuantDC(4) {
		t.Error("DC quant is not decreasing in target distance")
	}
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
