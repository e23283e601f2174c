package entropy

import (
	"errors"
	"fmt"

	"github.com/deepteams/jxl/internal/bitio"
	"github.com/deepteams/jxl/internal/frame"
)

// ErrInvalidCtxMap reports a malformed serialized block context map.
var ErrInvalidCtxMap = errors.New("entropy: invalid block context map")

// ctxMapEntryBits is the width of one serialized context-table entry.
const ctxMapEntryBits = 6

// Threshold value distributions for the u32 coder. DC thresholds are
// zig-zag packed signed values; AC thresholds are coded minus one since
// zero is not a valid boundary.
var (
	kDCThresholdDist = bitio.U32Dist{
		Bits:   [4]uint8{4, 8, 16, 32},
		Offset: [4]uint32{0, 16, 272, 65808},
	}
	kQFThresholdDist = bitio.U32Dist{
		Bits:   [4]uint8{2, 4, 6, 8},
		Offset: [4]uint32{0, 4, 20, 84},
	}
)

// EncodeBlockCtxMap serializes m. The canonical default is signaled with a
// single flag bit; anything else writes the threshold lists and the full
// context table.
func EncodeBlockCtxMap(m *BlockCtxMap, w *bitio.Writer) {
	if m.IsDefault() {
		w.WriteBit(true)
		return
	}
	w.WriteBit(false)
	for c := 0; c < 3; c++ {
		w.WriteBits(uint32(len(m.DCThresholds[c])), 4)
		for _, t := range m.DCThresholds[c] {
			w.WriteU32(kDCThresholdDist, PackSigned(t))
		}
	}
	w.WriteBits(uint32(len(m.QFThresholds)), 4)
	for _, t := range m.QFThresholds {
		w.WriteU32(kQFThresholdDist, t-1)
	}
	for _, v := range m.CtxMap {
		w.WriteBits(uint32(v), ctxMapEntryBits)
	}
}

// DecodeBlockCtxMap parses a serialized block context map, validating the
// two cardinality constraints: the derived DC-context count times the AC
// bucket count may not exceed 64, and the number of distinct context ids
// may not exceed 16. Violations are malformed input, not programmer error.
func DecodeBlockCtxMap(r *bitio.Reader) (*BlockCtxMap, error) {
	if r.ReadBit() {
		return DefaultBlockCtxMap(), nil
	}
	m := &BlockCtxMap{}
	numDC := 1
	for c := 0; c < 3; c++ {
		n := int(r.ReadBits(4))
		numDC *= n + 1
		m.DCThresholds[c] = make([]int32, n)
		for i := range m.DCThresholds[c] {
			m.DCThresholds[c][i] = UnpackSigned(r.ReadU32(kDCThresholdDist))
		}
	}
	nq := int(r.ReadBits(4))
	m.QFThresholds = make([]uint32, nq)
	for i := range m.QFThresholds {
		m.QFThresholds[i] = r.ReadU32(kQFThresholdDist) + 1
	}

	if numDC*(nq+1) > maxCtxTable {
		return nil, fmt.Errorf("%w: %d derived contexts exceed %d",
			ErrInvalidCtxMap, numDC*(nq+1), maxCtxTable)
	}

	m.CtxMap = make([]uint8, 3*frame.NumStrategyOrders*numDC*(nq+1))
	for i := range m.CtxMap {
		m.CtxMap[i] = uint8(r.ReadBits(ctxMapEntryBits))
	}
	if r.Overrun() {
		return nil, fmt.Errorf("%w: truncated stream", ErrInvalidCtxMap)
	}
	m.finalize()
	if m.numCtxs > maxDistinctCtxs {
		return nil, fmt.Errorf("%w: %d distinct contexts exceed %d",
			ErrInvalidCtxMap, m.numCtxs, maxDistinctCtxs)
	}
	return m, nil
}
