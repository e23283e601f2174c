// Package dsp holds the scalar signal-processing kernels used by the
// adaptive quantization and coefficient pipeline: 8x8 DCTs, Gaussian
// smoothing, and the gamma derivative-ratio model.
//
// Hot kernels are exposed as function variables so that platform-specific
// implementations can replace the pure-Go reference at init time. Init()
// installs the scalar implementations; equivalence between the dispatch
// variable and the scalar reference is enforced by tests.
package dsp

// BlockDim is the transform block edge in samples.
const BlockDim = 8

// Function variables for dispatch. Set to pure-Go implementations by
// Init() and overridable by platform-specific code in the future.
var (
	// FDCT8x8 computes the forward 8x8 orthonormal DCT-II of a block read
	// from src with the given row stride, writing 64 coefficients in
	// raster order (DC first).
	FDCT8x8 func(src []float32, srcStride int, out *[64]float32)

	// IDCT8x8 is the inverse of FDCT8x8, writing the spatial block to dst
	// with the given row stride.
	IDCT8x8 func(coeffs *[64]float32, dst []float32, dstStride int)
)

// Init installs the pure-Go reference implementations. It must run before
// any dispatch variable is used; the package init does this automatically.
func Init() {
	initDCTBasis()
	FDCT8x8 = fdct8x8
	IDCT8x8 = idct8x8
}

func init() {
	Init()
}
