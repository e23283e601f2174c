// Package entropy implements the context-adaptive coefficient tokenizer:
// zig-zag signed packing, the block context map with its wire format, and
// the conversion of quantized coefficients into a context-tagged token
// stream for the entropy backend.
package entropy

// Token is one entropy-coder input symbol: a context id selecting the
// probability model and the value to code under it.
type Token struct {
	Ctx   uint32
	Value uint32
}

// PackSigned maps a signed value to an unsigned one by zig-zag packing:
// 0, -1, 1, -2, 2, ... become 0, 1, 2, 3, 4, ... The mapping is bijective.
func PackSigned(v int32) uint32 {
	return (uint32(v) << 1) ^ uint32(v>>31)
}

// UnpackSigned inverts PackSigned.
func UnpackSigned(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}
