package frame

// ChromaSubsampling selects the sampling grid of the chroma-like channels
// (indices 0 and 2) relative to the luma-like channel (index 1).
type ChromaSubsampling uint8

const (
	// CS444 samples all channels at full resolution.
	CS444 ChromaSubsampling = iota
	// CS422 halves the chroma horizontal resolution.
	CS422
	// CS420 halves the chroma resolution in both dimensions.
	CS420
)

// HShift returns the horizontal chroma downshift in block coordinates.
func (cs ChromaSubsampling) HShift() int {
	if cs == CS422 || cs == CS420 {
		return 1
	}
	return 0
}

// VShift returns the vertical chroma downshift in block coordinates.
func (cs ChromaSubsampling) VShift() int {
	if cs == CS420 {
		return 1
	}
	return 0
}
