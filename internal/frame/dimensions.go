// Package frame holds the geometry shared by the quantization and
// tokenization pipeline: frame dimensions, the per-block transform strategy
// map, coefficient scan orders and chroma subsampling.
package frame

const (
	// BlockDim is the transform block edge in samples.
	BlockDim = 8
	// DCTBlockSize is the number of coefficients in one 8x8 block.
	DCTBlockSize = BlockDim * BlockDim
	// GroupDim is the edge of one encode/decode group in samples.
	GroupDim = 256
	// GroupDimInBlocks is the edge of one group in blocks.
	GroupDimInBlocks = GroupDim / BlockDim
)

// Dimensions caches the block- and group-aligned sizes derived from the
// pixel size of a frame.
type Dimensions struct {
	XSize, YSize             int // in pixels
	XSizePadded, YSizePadded int // rounded up to a multiple of BlockDim
	XSizeBlocks, YSizeBlocks int
	XSizeGroups, YSizeGroups int
}

// ceilDiv returns ceil(a/b) for positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// NewDimensions derives all aligned sizes from a pixel size.
func NewDimensions(xsize, ysize int) Dimensions {
	xb := ceilDiv(xsize, BlockDim)
	yb := ceilDiv(ysize, BlockDim)
	return Dimensions{
		XSize:       xsize,
		YSize:       ysize,
		XSizePadded: xb * BlockDim,
		YSizePadded: yb * BlockDim,
		XSizeBlocks: xb,
		YSizeBlocks: yb,
		XSizeGroups: ceilDiv(xsize, GroupDim),
		YSizeGroups: ceilDiv(ysize, GroupDim),
	}
}
