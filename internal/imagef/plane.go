// Package imagef provides float and integer sample planes with explicit
// strides. All block-level code in this module addresses pixels through
// these planes instead of raw pointer arithmetic, so every row access is
// bounds-checked by the runtime.
package imagef

// Plane is a single-channel float32 image. Rows are padded so that the
// stride is a multiple of 8 samples, which keeps 8x8 block rows contiguous
// and lane-friendly.
type Plane struct {
	W, H   int
	Stride int
	Pix    []float32
}

// strideFor rounds a width up to the next multiple of 8.
func strideFor(w int) int {
	return (w + 7) &^ 7
}

// NewPlane allocates a zeroed w x h plane.
func NewPlane(w, h int) *Plane {
	s := strideFor(w)
	return &Plane{W: w, H: h, Stride: s, Pix: make([]float32, s*h)}
}

// Row returns row y, sliced to the visible width.
func (p *Plane) Row(y int) []float32 {
	off := y * p.Stride
	return p.Pix[off : off+p.W : off+p.Stride]
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) float32 {
	return p.Pix[y*p.Stride+x]
}

// Set stores v at (x, y).
func (p *Plane) Set(x, y int, v float32) {
	p.Pix[y*p.Stride+x] = v
}

// Fill sets every visible sample to v.
func (p *Plane) Fill(v float32) {
	for y := 0; y < p.H; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	q := NewPlane(p.W, p.H)
	copy(q.Pix, p.Pix)
	return q
}

// CopyFrom copies the visible samples of src into p. Both planes must have
// the same dimensions.
func (p *Plane) CopyFrom(src *Plane) {
	if p.W != src.W || p.H != src.H {
		panic("imagef: CopyFrom dimension mismatch")
	}
	for y := 0; y < p.H; y++ {
		copy(p.Row(y), src.Row(y))
	}
}

// MinMax returns the smallest and largest visible sample. An empty plane
// returns (0, 0).
func (p *Plane) MinMax() (min, max float32) {
	if p.W == 0 || p.H == 0 {
		return 0, 0
	}
	min = p.Pix[0]
	max = p.Pix[0]
	for y := 0; y < p.H; y++ {
		row := p.Row(y)
		for _, v := range row {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

// PlaneI is a single-channel int32 image with the same layout rules as
// Plane.
type PlaneI struct {
	W, H   int
	Stride int
	Pix    []int32
}

// NewPlaneI allocates a zeroed w x h int32 plane.
func NewPlaneI(w, h int) *PlaneI {
	s := strideFor(w)
	return &PlaneI{W: w, H: h, Stride: s, Pix: make([]int32, s*h)}
}

// Row returns row y, sliced to the visible width.
func (p *PlaneI) Row(y int) []int32 {
	off := y * p.Stride
	return p.Pix[off : off+p.W : off+p.Stride]
}

// At returns the sample at (x, y).
func (p *PlaneI) At(x, y int) int32 {
	return p.Pix[y*p.Stride+x]
}

// Set stores v at (x, y).
func (p *PlaneI) Set(x, y int, v int32) {
	p.Pix[y*p.Stride+x] = v
}

// Fill sets every visible sample to v.
func (p *PlaneI) Fill(v int32) {
	for y := 0; y < p.H; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// PlaneB is a single-channel uint8 image.
type PlaneB struct {
	W, H   int
	Stride int
	Pix    []uint8
}

// NewPlaneB allocates a zeroed w x h uint8 plane.
func NewPlaneB(w, h int) *PlaneB {
	s := strideFor(w)
	return &PlaneB{W: w, H: h, Stride: s, Pix: make([]uint8, s*h)}
}

// Row returns row y, sliced to the visible width.
func (p *PlaneB) Row(y int) []uint8 {
	off := y * p.Stride
	return p.Pix[off : off+p.W : off+p.Stride]
}

// Plane3 is a three-channel float image, indexed 0..2 in the codec's
// channel order (X, Y, B).
type Plane3 [3]*Plane

// NewPlane3 allocates three zeroed w x h planes.
func NewPlane3(w, h int) Plane3 {
	return Plane3{NewPlane(w, h), NewPlane(w, h), NewPlane(w, h)}
}

// Clone returns a deep copy of all three planes.
func (p Plane3) Clone() Plane3 {
	return Plane3{p[0].Clone(), p[1].Clone(), p[2].Clone()}
}
