package frame

// Coefficient scan orders. For a transform covering cx*cy blocks in
// canonical (cy <= cx) layout, coefficients live in a rectangle of
// cx*BlockDim columns and cy*BlockDim rows. The first cx*cy entries of the
// order are the low-frequency corner (rows < cy, columns < cx) in raster
// order; the remaining entries walk the rectangle in zig-zag (anti-diagonal)
// order, skipping that corner.

// orderShapes maps an order class to the canonical covered extents of its
// strategies.
var orderShapes = [NumStrategyOrders][2]int{
	{1, 1}, // DCT8
	{1, 1}, // Identity, DCT2x2, DCT4x4
	{2, 2}, // DCT16x16
	{4, 4}, // DCT32x32
	{2, 1}, // DCT16x8, DCT8x16
	{4, 2}, // DCT32x16, DCT16x32
	{4, 1}, // DCT32x8, DCT8x32
}

// NaturalOrder builds the scan order for a canonical cx x cy covered shape.
func NaturalOrder(cx, cy int) []int32 {
	w := cx * BlockDim
	h := cy * BlockDim
	order := make([]int32, 0, w*h)

	isLLF := func(x, y int) bool { return x < cx && y < cy }

	// Low-frequency corner first, raster order.
	for y := 0; y < cy; y++ {
		for x := 0; x < cx; x++ {
			order = append(order, int32(y*w+x))
		}
	}
	// Zig-zag over the rest. Even diagonals run bottom-left to top-right.
	for d := 0; d < w+h-1; d++ {
		if d&1 == 0 {
			for y := min(d, h-1); y >= 0 && d-y < w; y-- {
				x := d - y
				if !isLLF(x, y) {
					order = append(order, int32(y*w+x))
				}
			}
		} else {
			for x := min(d, w-1); x >= 0 && d-x < h; x-- {
				y := d - x
				if !isLLF(x, y) {
					order = append(order, int32(y*w+x))
				}
			}
		}
	}
	return order
}

// CoeffOrders holds one scan order per (order class, channel).
type CoeffOrders struct {
	orders [NumStrategyOrders][3][]int32
}

// DefaultCoeffOrders builds the natural orders for every class; all three
// channels share them until a custom per-channel order is installed.
func DefaultCoeffOrders() *CoeffOrders {
	co := &CoeffOrders{}
	for class := 0; class < NumStrategyOrders; class++ {
		o := NaturalOrder(orderShapes[class][0], orderShapes[class][1])
		for c := 0; c < 3; c++ {
			co.orders[class][c] = o
		}
	}
	return co
}

// Order returns the scan order for an order class and channel.
func (co *CoeffOrders) Order(class, channel int) []int32 {
	return co.orders[class][channel]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
