package frame

import "fmt"

// AcStrategy identifies the transform size/shape chosen for a block region.
type AcStrategy uint8

const (
	// DCT8 is the plain 8x8 DCT.
	DCT8 AcStrategy = iota
	// Identity codes the block without a frequency transform.
	Identity
	// DCT2x2 applies 2x2 DCTs within one 8x8 block.
	DCT2x2
	// DCT4x4 applies 4x4 DCTs within one 8x8 block.
	DCT4x4
	// DCT16x16 merges a 2x2 block region.
	DCT16x16
	// DCT32x32 merges a 4x4 block region.
	DCT32x32
	// DCT16x8 merges two blocks side by side (16 wide, 8 tall).
	DCT16x8
	// DCT8x16 merges two blocks stacked (8 wide, 16 tall).
	DCT8x16
	// DCT32x8 merges four blocks in a row.
	DCT32x8
	// DCT8x32 merges four blocks in a column.
	DCT8x32
	// DCT32x16 merges a 4x2 block region.
	DCT32x16
	// DCT16x32 merges a 2x4 block region.
	DCT16x32

	numStrategies
)

// NumStrategyOrders is the number of distinct coefficient-order classes.
// Strategies with the same covered shape (up to transposition) and similar
// spectra share an order class.
const NumStrategyOrders = 7

// strategyInfo maps a strategy to its covered-block extents and its order
// class. The order class clusters transforms that share a scan order.
var strategyInfo = [numStrategies]struct {
	cx, cy uint8
	order  uint8
}{
	DCT8:     {1, 1, 0},
	Identity: {1, 1, 1},
	DCT2x2:   {1, 1, 1},
	DCT4x4:   {1, 1, 1},
	DCT16x16: {2, 2, 2},
	DCT32x32: {4, 4, 3},
	DCT16x8:  {2, 1, 4},
	DCT8x16:  {1, 2, 4},
	DCT32x8:  {4, 1, 6},
	DCT8x32:  {1, 4, 6},
	DCT32x16: {4, 2, 5},
	DCT16x32: {2, 4, 5},
}

// CoveredBlocksX returns the strategy's width in 8x8 blocks.
func (s AcStrategy) CoveredBlocksX() int { return int(strategyInfo[s].cx) }

// CoveredBlocksY returns the strategy's height in 8x8 blocks.
func (s AcStrategy) CoveredBlocksY() int { return int(strategyInfo[s].cy) }

// CoveredBlocks returns the total number of 8x8 blocks the strategy spans,
// which also equals its number of low-frequency coefficients.
func (s AcStrategy) CoveredBlocks() int {
	return int(strategyInfo[s].cx) * int(strategyInfo[s].cy)
}

// Log2CoveredBlocks returns log2 of CoveredBlocks. Covered-block counts are
// always powers of two.
func (s AcStrategy) Log2CoveredBlocks() int {
	n := s.CoveredBlocks()
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// OrderClass returns the coefficient-order class of the strategy.
func (s AcStrategy) OrderClass() int { return int(strategyInfo[s].order) }

// CanonicalLayout returns the covered extents swapped so that cy <= cx,
// the orientation in which coefficients of transposed strategy pairs are
// stored.
func (s AcStrategy) CanonicalLayout() (cx, cy int) {
	cx, cy = s.CoveredBlocksX(), s.CoveredBlocksY()
	if cy > cx {
		cx, cy = cy, cx
	}
	return cx, cy
}

// firstFlag marks the top-left cell of a strategy instance in the grid.
const firstFlag = 0x80

// AcStrategyGrid stores the per-block strategy choice. Every cell of a
// multi-block transform holds the strategy tag; only the top-left cell
// carries the first-block flag.
type AcStrategyGrid struct {
	W, H  int // in blocks
	cells []uint8
}

// NewAcStrategyGrid allocates a grid of w x h block cells with every cell
// unset.
func NewAcStrategyGrid(w, h int) *AcStrategyGrid {
	g := &AcStrategyGrid{W: w, H: h, cells: make([]uint8, w*h)}
	for i := range g.cells {
		g.cells[i] = 0xff
	}
	return g
}

// FillDCT8 assigns the plain 8x8 transform to every block.
func (g *AcStrategyGrid) FillDCT8() {
	for i := range g.cells {
		g.cells[i] = uint8(DCT8) | firstFlag
	}
}

// Set places a strategy instance with its first block at (bx, by). The
// whole footprint must lie inside the grid and must not overlap an already
// placed instance; violations are caller bugs and panic.
func (g *AcStrategyGrid) Set(bx, by int, s AcStrategy) {
	cx, cy := s.CoveredBlocksX(), s.CoveredBlocksY()
	if bx < 0 || by < 0 || bx+cx > g.W || by+cy > g.H {
		panic(fmt.Sprintf("frame: strategy footprint %dx%d at (%d,%d) outside %dx%d grid",
			cx, cy, bx, by, g.W, g.H))
	}
	for y := by; y < by+cy; y++ {
		for x := bx; x < bx+cx; x++ {
			if g.cells[y*g.W+x] != 0xff {
				panic(fmt.Sprintf("frame: strategy footprint overlap at (%d,%d)", x, y))
			}
		}
	}
	for y := by; y < by+cy; y++ {
		for x := bx; x < bx+cx; x++ {
			g.cells[y*g.W+x] = uint8(s)
		}
	}
	g.cells[by*g.W+bx] |= firstFlag
}

// Strategy returns the strategy covering block (bx, by).
func (g *AcStrategyGrid) Strategy(bx, by int) AcStrategy {
	c := g.cells[by*g.W+bx]
	if c == 0xff {
		panic(fmt.Sprintf("frame: block (%d,%d) has no strategy assigned", bx, by))
	}
	return AcStrategy(c &^ firstFlag)
}

// IsFirst reports whether (bx, by) is the top-left cell of its strategy
// instance.
func (g *AcStrategyGrid) IsFirst(bx, by int) bool {
	c := g.cells[by*g.W+bx]
	return c != 0xff && c&firstFlag != 0
}
