package aq

import (
	"fmt"
	"math"

	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
	"github.com/deepteams/jxl/internal/quant"
)

// SpeedTier orders the encoder effort settings from fastest to slowest.
type SpeedTier int

const (
	// TierFalcon skips the model field entirely and commits a uniform
	// quant.
	TierFalcon SpeedTier = iota
	// TierCheetah through TierSquirrel commit the model field without a
	// search.
	TierCheetah
	TierHare
	TierWombat
	TierSquirrel
	// TierKitten runs the standard distortion-guided search.
	TierKitten
	// TierTortoise runs the exhaustive local search.
	TierTortoise
)

// SearchSchedule holds the per-iteration tables of the searches. The zero
// value of any table falls back to the defaults below.
type SearchSchedule struct {
	// Pow is the per-iteration softening exponent applied to blocks whose
	// distortion is under target; a zero entry leaves them untouched.
	Pow []float64
	// PowMod shifts the softening exponent by (target-1) per iteration.
	PowMod []float64
	// Margins widens the per-iteration distortion tiles by the given
	// number of pixels, down-weighting the widened border.
	Margins []int
	// AdjSpeed is the per-outer-pass adjustment speed of the local
	// search.
	AdjSpeed []float32
	// OriginalComparisonRound is the iteration whose field is clamped
	// toward the model field, and after which worsening updates roll
	// back.
	OriginalComparisonRound int
	// MaxDistanceIncrease is the relative local distortion growth beyond
	// which an update rolls back.
	MaxDistanceIncrease float32
	// InitMul is the model-field share of the clamp applied at
	// OriginalComparisonRound.
	InitMul float64
	// LocalOptMargin is the tile margin of the rollback distortion map.
	LocalOptMargin int
}

// DefaultSearchSchedule returns the tuned schedule.
func DefaultSearchSchedule() *SearchSchedule {
	return &SearchSchedule{
		Pow:                     []float64{0.2, 0.2},
		PowMod:                  []float64{0, 0},
		AdjSpeed:                []float32{0.1, 0.04},
		OriginalComparisonRound: 1,
		MaxDistanceIncrease:     1.015,
		InitMul:                 0.6,
		LocalOptMargin:          2,
	}
}

func (s *SearchSchedule) margin(i int) int {
	if i < len(s.Margins) {
		return s.Margins[i]
	}
	return 0
}

func (s *SearchSchedule) pow(i int, target float32) float64 {
	if i >= len(s.Pow) {
		return 0
	}
	p := s.Pow[i]
	if i < len(s.PowMod) {
		p += float64(target-1) * s.PowMod[i]
	}
	if p < 0 {
		p = 0
	}
	return p
}

func (s *SearchSchedule) adjSpeed(outer int) float32 {
	if len(s.AdjSpeed) == 0 {
		return 0.04
	}
	if outer >= len(s.AdjSpeed) {
		outer = len(s.AdjSpeed) - 1
	}
	return s.AdjSpeed[outer]
}

// SearchParams carries the per-encode settings of the quant search.
type SearchParams struct {
	// Distance is the target psychovisual distance; smaller is better
	// quality.
	Distance float32
	// MaxIters bounds the feedback iterations of the standard and
	// max-error searches; both always run MaxIters+1 scoring passes.
	MaxIters int
	// MaxItersHQ bounds the scoring passes of the exhaustive search.
	MaxItersHQ int
	// MaxErrorMode switches to the per-channel absolute error targets in
	// MaxError instead of the distance.
	MaxErrorMode bool
	MaxError     [3]float32
	// UniformQuant, when positive, bypasses every search and commits the
	// given strength for DC and AC.
	UniformQuant float32
	// Tier selects the search effort.
	Tier SpeedTier
	// Rescale stretches uniform quant strengths; zero means 1.
	Rescale float32
}

func (p *SearchParams) rescale() float32 {
	if p.Rescale == 0 {
		return 1
	}
	return p.Rescale
}

// Optimizer runs the quant-field searches over a set of borrowed
// collaborators. QuantField is refined in place; the quantizer and the raw
// field hold the committed result after a search returns.
type Optimizer struct {
	Dim        frame.Dimensions
	Strategies *frame.AcStrategyGrid
	Quantizer  *quant.Quantizer
	QuantField *imagef.Plane
	RawQuant   *imagef.PlaneI
	Oracle     Reconstructor
	Comparator Comparator
	Schedule   *SearchSchedule
	Debug      DebugOptions

	// Iterations counts the scoring passes run, across searches. Debug
	// plane dumps are numbered by it.
	Iterations int
}

func (o *Optimizer) schedule() *SearchSchedule {
	if o.Schedule != nil {
		return o.Schedule
	}
	return DefaultSearchSchedule()
}

// AdjustQuantVal raises the quant strength q toward the ceiling:
// factor/(d+1) is subtracted from the reciprocal 1/q, where d is the
// distance to the nearest distortion peak. Values at the ceiling are left
// alone; the return value reports whether q changed.
func AdjustQuantVal(q *float32, d, factor, quantMax float32) bool {
	if *q >= 0.999*quantMax {
		return false
	}
	invQ := 1 / *q
	adjInvQ := invQ - factor/(d+1)
	if adjInvQ < 1/quantMax {
		adjInvQ = 1 / quantMax
	}
	*q = 1 / adjInvQ
	return true
}

// AdjustQuantField replaces the field inside every multi-block transform
// with the footprint maximum, so one strategy instance is quantized
// uniformly at its most demanding block.
func AdjustQuantField(strategies *frame.AcStrategyGrid, qf *imagef.Plane) {
	if qf.W != strategies.W || qf.H != strategies.H {
		panic("aq: quant field does not match strategy grid")
	}
	for by := 0; by < qf.H; by++ {
		for bx := 0; bx < qf.W; bx++ {
			if !strategies.IsFirst(bx, by) {
				continue
			}
			acs := strategies.Strategy(bx, by)
			max := qf.At(bx, by)
			for iy := 0; iy < acs.CoveredBlocksY(); iy++ {
				for ix := 0; ix < acs.CoveredBlocksX(); ix++ {
					if v := qf.At(bx+ix, by+iy); v > max {
						max = v
					}
				}
			}
			for iy := 0; iy < acs.CoveredBlocksY(); iy++ {
				for ix := 0; ix < acs.CoveredBlocksX(); ix++ {
					qf.Set(bx+ix, by+iy, max)
				}
			}
		}
	}
}

// TileDistMap reduces a per-pixel distortion map to one value per block: an
// order-16 mean over the block's tile, optionally widened by margin pixels
// with down-weighted borders. Multi-block footprints pool their whole
// region and replicate the result to every covered cell.
func TileDistMap(distmap *imagef.Plane, tileSize, margin int,
	strategies *frame.AcStrategyGrid) *imagef.Plane {
	tileW := (distmap.W + tileSize - 1) / tileSize
	tileH := (distmap.H + tileSize - 1) / tileSize
	out := imagef.NewPlane(tileW, tileH)
	const (
		kBorderMul = 0.98
		kCornerMul = 0.7
		kTileNorm  = 1.2
	)
	for ty := 0; ty < tileH; ty++ {
		for tx := 0; tx < tileW; tx++ {
			if !strategies.IsFirst(tx, ty) {
				continue
			}
			acs := strategies.Strategy(tx, ty)
			regionW := acs.CoveredBlocksX() * tileSize
			regionH := acs.CoveredBlocksY() * tileSize
			yBegin := maxInt(0, tileSize*ty-margin)
			yEnd := minInt(distmap.H, tileSize*ty+regionH+margin)
			xBegin := maxInt(0, tileSize*tx-margin)
			xEnd := minInt(distmap.W, tileSize*tx+regionW+margin)
			var distNorm float64
			var pixels float64
			for y := yBegin; y < yEnd; y++ {
				ymul := float32(1)
				if margin != 0 && (y == yBegin || y == yEnd-1) {
					ymul = kBorderMul
				}
				row := distmap.Row(y)
				for x := xBegin; x < xEnd; x++ {
					xmul := ymul
					if margin != 0 && (x == xBegin || x == xEnd-1) {
						if xmul == 1 {
							xmul = kBorderMul
						} else {
							xmul = kCornerMul
						}
					}
					v := float64(row[x])
					v *= v
					v *= v
					v *= v
					v *= v
					distNorm += float64(xmul) * v
					pixels += float64(xmul)
				}
			}
			if pixels == 0 {
				pixels = 1
			}
			// The order-16 mean sits below the maximum; the norm factor
			// narrows the gap.
			tileDist := float32(kTileNorm * math.Pow(distNorm/pixels, 1.0/16))
			for iy := 0; iy < acs.CoveredBlocksY(); iy++ {
				for ix := 0; ix < acs.CoveredBlocksX(); ix++ {
					out.Set(tx+ix, ty+iy, tileDist)
				}
			}
		}
	}
	return out
}

// DistToPeakMap marks the neighborhoods of distortion peaks: cells whose
// value exceeds the peakWeight blend of peakMin and the local window
// maximum spread their Chebyshev distance over the window, keeping the
// minimum. Cells not near any peak hold -1.
func DistToPeakMap(field *imagef.Plane, peakMin float32, localRadius int,
	peakWeight float32) *imagef.Plane {
	out := imagef.NewPlane(field.W, field.H)
	out.Fill(-1)
	for y0 := 0; y0 < field.H; y0++ {
		for x0 := 0; x0 < field.W; x0++ {
			xMin := maxInt(0, x0-localRadius)
			yMin := maxInt(0, y0-localRadius)
			xMax := minInt(field.W, x0+1+localRadius)
			yMax := minInt(field.H, y0+1+localRadius)
			localMax := peakMin
			for y := yMin; y < yMax; y++ {
				row := field.Row(y)
				for x := xMin; x < xMax; x++ {
					if row[x] > localMax {
						localMax = row[x]
					}
				}
			}
			if field.At(x0, y0) <= (1-peakWeight)*peakMin+peakWeight*localMax {
				continue
			}
			for y := yMin; y < yMax; y++ {
				row := out.Row(y)
				for x := xMin; x < xMax; x++ {
					dist := float32(maxInt(absInt(y-y0), absInt(x-x0)))
					if row[x] < 0 || row[x] > dist {
						row[x] = dist
					}
				}
			}
		}
	}
	return out
}

// FindBestQuantizer commits a quantizer according to the search parameters:
// max-error mode runs the error-targeted search, the fastest tier and the
// uniform override commit without searching, middle tiers commit the model
// field directly, and the two slowest tiers run the distortion-guided
// searches against linear.
func (o *Optimizer) FindBestQuantizer(linear, opsin imagef.Plane3, p *SearchParams) error {
	switch {
	case p.MaxErrorMode:
		return o.findBestQuantizationMaxError(opsin, p)
	case p.Tier == TierFalcon:
		o.commitUniform(InitialQuantDC(p.Distance), kAcQuant/p.Distance)
	case p.UniformQuant > 0:
		u := p.UniformQuant * p.rescale()
		o.commitUniform(u, u)
	case p.Tier < TierKitten:
		AdjustQuantField(o.Strategies, o.QuantField)
		o.Quantizer.SetQuantField(InitialQuantDC(p.Distance), o.QuantField, o.RawQuant)
	case p.Tier == TierTortoise:
		return o.findBestQuantizationHQ(linear, opsin, p)
	default:
		return o.findBestQuantization(linear, opsin, p)
	}
	return nil
}

// commitUniform commits a flat field at the given strengths.
func (o *Optimizer) commitUniform(quantDC, quantAC float32) {
	o.Quantizer.SetQuant(quantDC, quantAC)
	o.QuantField.Fill(quantAC)
	for y := 0; y < o.RawQuant.H; y++ {
		row := o.RawQuant.Row(y)
		for x := range row {
			row[x] = o.Quantizer.RawFromField(quantAC)
		}
	}
}

// findBestQuantization is the standard search: score, scale each block by
// its distortion-to-target ratio, clamp, repeat. After the comparison
// round, updates that raised both the quant and the local distortion are
// rolled back one step.
func (o *Optimizer) findBestQuantization(linear, opsin imagef.Plane3, p *SearchParams) error {
	target := p.Distance
	cmp := o.Comparator
	if err := cmp.SetReferenceImage(linear); err != nil {
		return err
	}
	lowerIsBetter := cmp.GoodQualityScore() < cmp.BadQualityScore()
	initialQuantDC := InitialQuantDC(target)
	AdjustQuantField(o.Strategies, o.QuantField)
	sched := o.schedule()
	sink := o.Debug.sink()

	qf := o.QuantField
	initialField := qf.Clone()
	lastField := qf.Clone()
	var lastLocalOpt *imagef.Plane

	// Allowed field range: spread the model field's ratio toward 250 with
	// more room upward than downward.
	qfMin, qfMax := initialField.MinMax()
	devLow := float32(math.Sqrt(float64(250 * qfMin / qfMax)))
	asymmetry := float32(2)
	if devLow < asymmetry {
		asymmetry = devLow
	}
	qfLower := qfMin / (asymmetry * devLow)
	qfHigher := qfMax * (devLow / asymmetry)

	for i := 0; i <= p.MaxIters; i++ {
		if o.Debug.DumpQuantState {
			o.logQuantField(sink)
		}
		o.Quantizer.SetQuantField(initialQuantDC, qf, o.RawQuant)
		decoded, err := o.Oracle.Roundtrip(opsin, true, true)
		if err != nil {
			return fmt.Errorf("aq: roundtrip: %w", err)
		}
		score, diffmap, err := cmp.CompareWith(decoded)
		if err != nil {
			return fmt.Errorf("aq: compare: %w", err)
		}
		if !lowerIsBetter {
			score = -score
			negatePlane(diffmap)
		}
		tileDistmap := TileDistMap(diffmap, frame.BlockDim, sched.margin(i), o.Strategies)
		localOpt := TileDistMap(diffmap, frame.BlockDim, sched.LocalOptMargin, o.Strategies)
		o.Iterations++
		if o.Debug.Sink != nil {
			o.dumpHeatmaps(sink, target, qf, tileDistmap)
		}
		if o.Debug.LogSearchState {
			minQ, maxQ := qf.MinMax()
			sink.Logf("\nsearch iter: %d/%d\n", i, p.MaxIters)
			sink.Logf("score: %f\n", score)
			sink.Logf("quant range: %f ... %f  DC quant: %f\n", minQ, maxQ, initialQuantDC)
		}

		if i > sched.OriginalComparisonRound {
			// Undo the last update where it raised the quant and grew
			// the nearby distortion.
			for y := 0; y < qf.H; y++ {
				rowQ := qf.Row(y)
				rowDist := localOpt.Row(y)
				rowLastDist := lastLocalOpt.Row(y)
				rowLastQ := lastField.Row(y)
				for x := range rowQ {
					if rowQ[x] > rowLastQ[x] &&
						rowDist[x] > sched.MaxDistanceIncrease*rowLastDist[x] {
						rowQ[x] = rowLastQ[x]
					}
				}
			}
		}
		lastField.CopyFrom(qf)
		lastLocalOpt = localOpt
		if i == p.MaxIters {
			break
		}

		if i == sched.OriginalComparisonRound {
			// Don't let the search drift far below the model field; the
			// AC precision it encodes damps DC reconstruction ripple.
			initMul := sched.InitMul
			for y := 0; y < qf.H; y++ {
				rowQ := qf.Row(y)
				rowInit := initialField.Row(y)
				for x := range rowQ {
					clamp := float32((1-initMul)*float64(rowQ[x]) + initMul*float64(rowInit[x]))
					if rowQ[x] < clamp {
						rowQ[x] = clampRange(clamp, qfLower, qfHigher)
					}
				}
			}
		}

		curPow := sched.pow(i, target)
		for y := 0; y < qf.H; y++ {
			rowDist := tileDistmap.Row(y)
			rowQ := qf.Row(y)
			for x := range rowQ {
				diff := rowDist[x] / target
				if diff > 1 {
					old := rowQ[x]
					rowQ[x] *= diff
					// Force at least one raw quant step, or the block
					// never moves.
					qfOld := int(old*o.Quantizer.InvGlobalScale() + 0.5)
					qfNew := int(rowQ[x]*o.Quantizer.InvGlobalScale() + 0.5)
					if qfOld == qfNew {
						rowQ[x] = old + o.Quantizer.Scale()
					}
				} else if curPow > 0 {
					rowQ[x] *= float32(math.Pow(float64(diff), curPow))
				}
				rowQ[x] = clampRange(rowQ[x], qfLower, qfHigher)
			}
		}
	}
	o.Quantizer.SetQuantField(initialQuantDC, qf, o.RawQuant)
	return nil
}

// findBestQuantizationMaxError targets per-channel absolute reconstruction
// errors instead of a perceptual distance. Each footprint's quant scales by
// its worst relative error: above 1 it grows proportionally, between half
// and 1 it holds, and below half it shrinks toward the error budget. A
// perfect footprint is left unchanged.
func (o *Optimizer) findBestQuantizationMaxError(opsin imagef.Plane3, p *SearchParams) error {
	initialQuantDC := 16 * float32(math.Sqrt(0.1/float64(p.Distance)))
	AdjustQuantField(o.Strategies, o.QuantField)
	var invMaxErr [3]float32
	for c := range invMaxErr {
		if p.MaxError[c] > 0 {
			invMaxErr[c] = 1 / p.MaxError[c]
		}
	}
	qf := o.QuantField
	for i := 0; i <= p.MaxIters; i++ {
		o.Quantizer.SetQuantField(initialQuantDC, qf, o.RawQuant)
		decoded, err := o.Oracle.Roundtrip(opsin, false, false)
		if err != nil {
			return fmt.Errorf("aq: roundtrip: %w", err)
		}
		o.Iterations++
		for by := 0; by < o.Strategies.H; by++ {
			for bx := 0; bx < o.Strategies.W; bx++ {
				if !o.Strategies.IsFirst(bx, by) {
					continue
				}
				acs := o.Strategies.Strategy(bx, by)
				var maxError float32
				for c := 0; c < 3; c++ {
					yEnd := minInt((by+acs.CoveredBlocksY())*frame.BlockDim, decoded[c].H)
					xEnd := minInt((bx+acs.CoveredBlocksX())*frame.BlockDim, decoded[c].W)
					for y := by * frame.BlockDim; y < yEnd; y++ {
						inRow := opsin[c].Row(y)
						decRow := decoded[c].Row(y)
						for x := bx * frame.BlockDim; x < xEnd; x++ {
							e := abs32(inRow[x]-decRow[x]) * invMaxErr[c]
							if e > maxError {
								maxError = e
							}
						}
					}
				}
				mul := float32(1)
				if maxError > 1 {
					mul = maxError
				} else if maxError > 0 && maxError < 0.5 {
					mul = 2 * maxError
				}
				for qy := by; qy < by+acs.CoveredBlocksY(); qy++ {
					row := qf.Row(qy)
					for qx := bx; qx < bx+acs.CoveredBlocksX(); qx++ {
						row[qx] *= mul
					}
				}
			}
		}
	}
	o.Quantizer.SetQuantField(initialQuantDC, qf, o.RawQuant)
	return nil
}

// findBestQuantizationHQ is the exhaustive search: it repeatedly raises
// the quant around distortion peaks with a growing search radius, raising
// the DC quant and the quant ceiling when progress stalls, over two outer
// passes with a global shrink in between. The best field seen is committed.
func (o *Optimizer) findBestQuantizationHQ(linear, opsin imagef.Plane3, p *SearchParams) error {
	cmp := o.Comparator
	if err := cmp.SetReferenceImage(linear); err != nil {
		return err
	}
	lowerIsBetter := cmp.GoodQualityScore() < cmp.BadQualityScore()
	AdjustQuantField(o.Strategies, o.QuantField)
	sched := o.schedule()
	sink := o.Debug.sink()
	target := p.Distance

	qf := o.QuantField
	bestField := qf.Clone()
	bestScore := float32(1e6)
	const kMaxOuterIters = 2
	outerIter := 0
	iter := 0
	searchRadius := 0
	quantCeil := float32(5)
	quantDC := float32(1.2)
	bestQuantDC := quantDC
	numStalling := 0

	for {
		if o.Debug.DumpQuantState {
			o.logQuantField(sink)
		}
		_, qMax := qf.MinMax()
		iter++
		o.Quantizer.SetQuantField(quantDC, qf, o.RawQuant)
		decoded, err := o.Oracle.Roundtrip(opsin, true, true)
		if err != nil {
			return fmt.Errorf("aq: roundtrip: %w", err)
		}
		score, diffmap, err := cmp.CompareWith(decoded)
		if err != nil {
			return fmt.Errorf("aq: compare: %w", err)
		}
		if !lowerIsBetter {
			score = -score
			negatePlane(diffmap)
		}
		bestUpdated := false
		if score <= bestScore {
			bestField.CopyFrom(qf)
			bestScore = score
			if bestScore < target {
				bestScore = target
			}
			bestUpdated = true
			bestQuantDC = quantDC
			numStalling = 0
		} else if outerIter == 0 {
			numStalling++
		}
		tileDistmap := TileDistMap(diffmap, frame.BlockDim, 0, o.Strategies)
		o.Iterations++
		if o.Debug.Sink != nil {
			o.dumpHeatmaps(sink, target, qf, tileDistmap)
		}
		if o.Debug.LogSearchState {
			minQ, maxQ := qf.MinMax()
			mark := ""
			if bestUpdated {
				mark = " (*)"
			}
			sink.Logf("\nsearch iter: %d/%d%s\n", iter, p.MaxItersHQ, mark)
			sink.Logf("score: %f\n", score)
			sink.Logf("quant range: %f ... %f  DC quant: %f\n", minQ, maxQ, quantDC)
			sink.Logf("search radius: %d\n", searchRadius)
		}
		if iter >= p.MaxItersHQ {
			break
		}
		changed := false
		for !changed && score > target {
			for radius := 0; radius <= searchRadius && !changed; radius++ {
				distToPeak := DistToPeakMap(tileDistmap, target, radius, 0)
				for y := 0; y < qf.H; y++ {
					rowQ := qf.Row(y)
					rowDist := distToPeak.Row(y)
					rowTile := tileDistmap.Row(y)
					for x := range rowQ {
						if rowDist[x] >= 0 {
							factor := sched.adjSpeed(outerIter) * rowTile[x]
							if AdjustQuantVal(&rowQ[x], rowDist[x], factor, quantCeil) {
								changed = true
							}
						}
					}
				}
			}
			if !changed || numStalling >= 3 {
				// Widen the search before giving up on this field.
				if searchRadius < 4 &&
					(qMax < 0.99*quantCeil || quantCeil >= 3+float32(searchRadius)) {
					searchRadius++
					continue
				}
				if quantDC < 0.4*quantCeil-0.8 {
					quantDC += 0.2
					changed = true
					continue
				}
				if quantCeil < 8 {
					quantCeil += 0.5
					continue
				}
				break
			}
		}
		if !changed {
			outerIter++
			if outerIter == kMaxOuterIters {
				break
			}
			const kQuantScale = 0.75
			for y := 0; y < qf.H; y++ {
				row := qf.Row(y)
				for x := range row {
					row[x] *= kQuantScale
				}
			}
			numStalling = 0
		}
	}
	o.Quantizer.SetQuantField(bestQuantDC, bestField, o.RawQuant)
	qf.CopyFrom(bestField)
	return nil
}

// dumpHeatmaps emits the inverse quant field and the tile distortion as
// severity planes, normalized so the good threshold maps to 0 and the bad
// one to 1.
func (o *Optimizer) dumpHeatmaps(sink DebugSink, target float32, qf, tileHeatmap *imagef.Plane) {
	invQ := imagef.NewPlane(qf.W, qf.H)
	for y := 0; y < qf.H; y++ {
		src := qf.Row(y)
		dst := invQ.Row(y)
		for x, v := range src {
			dst[x] = 1 / v
		}
	}
	sink.DumpPlane("quant_heatmap", o.Iterations, severityPlane(invQ, 4*target, 6*target))
	sink.DumpPlane("tile_heatmap", o.Iterations, severityPlane(tileHeatmap, target, 1.5*target))
}

// severityPlane normalizes a plane against a good/bad threshold pair:
// values at or below good map to 0, bad maps to 1, worse values saturate.
func severityPlane(p *imagef.Plane, good, bad float32) *imagef.Plane {
	out := imagef.NewPlane(p.W, p.H)
	scale := bad - good
	if scale <= 0 {
		scale = 1
	}
	for y := 0; y < p.H; y++ {
		src := p.Row(y)
		dst := out.Row(y)
		for x, v := range src {
			dst[x] = clampRange((v-good)/scale, 0, 1)
		}
	}
	return out
}

func (o *Optimizer) logQuantField(sink DebugSink) {
	sink.Logf("\nQuantization field:\n")
	for y := 0; y < o.QuantField.H; y++ {
		row := o.QuantField.Row(y)
		for _, v := range row {
			sink.Logf(" %.5f", v)
		}
		sink.Logf("\n")
	}
}

func negatePlane(p *imagef.Plane) {
	for y := 0; y < p.H; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = -row[x]
		}
	}
}

func clampRange(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
