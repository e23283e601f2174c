package entropy

import (
	"fmt"

	"github.com/deepteams/jxl/internal/frame"
)

const (
	// NonZeroBuckets is the number of buckets the predicted non-zero count
	// collapses into: exact below 8, halved above, capped at 64.
	NonZeroBuckets = 37
	// ZeroDensityContextCount is the number of per-coefficient contexts
	// within one block context.
	ZeroDensityContextCount = 458
	// maxCtxTable bounds the derived DC-context count times the AC bucket
	// count in a decoded map.
	maxCtxTable = 64
	// maxDistinctCtxs bounds the number of distinct context ids in a
	// decoded map.
	maxDistinctCtxs = 16
)

// kDefaultCtxMap is the canonical context table: one entry per
// (channel, order class) with luma distinct and the two chroma channels
// shared. Rows are luma-like, then the two chroma-like channels.
var kDefaultCtxMap = [3 * frame.NumStrategyOrders]uint8{
	0, 1, 2, 2, 3, 3, 4,
	5, 6, 7, 7, 8, 8, 9,
	5, 6, 7, 7, 8, 8, 9,
}

// BlockCtxMap assigns each block a small context id from its quantized DC
// bucket, its AC quant bucket, its transform order class and its channel.
type BlockCtxMap struct {
	// DCThresholds holds per-channel ascending DC bucket boundaries.
	DCThresholds [3][]int32
	// QFThresholds holds ascending AC-quant bucket boundaries.
	QFThresholds []uint32
	// CtxMap is the context table, indexed by the flattened tuple.
	CtxMap []uint8

	numCtxs   int
	numDCCtxs int
}

// DefaultBlockCtxMap returns the canonical default configuration.
func DefaultBlockCtxMap() *BlockCtxMap {
	m := &BlockCtxMap{CtxMap: append([]uint8(nil), kDefaultCtxMap[:]...)}
	m.finalize()
	return m
}

// NewBlockCtxMap builds a custom map. The table length must match the
// threshold configuration; a mismatch is a caller bug and panics.
func NewBlockCtxMap(dcThresholds [3][]int32, qfThresholds []uint32, ctxMap []uint8) *BlockCtxMap {
	m := &BlockCtxMap{
		DCThresholds: dcThresholds,
		QFThresholds: qfThresholds,
		CtxMap:       ctxMap,
	}
	numDC := 1
	for c := 0; c < 3; c++ {
		numDC *= len(dcThresholds[c]) + 1
	}
	want := 3 * frame.NumStrategyOrders * numDC * (len(qfThresholds) + 1)
	if len(ctxMap) != want {
		panic(fmt.Sprintf("entropy: context table has %d entries, want %d", len(ctxMap), want))
	}
	m.finalize()
	return m
}

// finalize derives the cached context counts from the table.
func (m *BlockCtxMap) finalize() {
	m.numDCCtxs = 1
	for c := 0; c < 3; c++ {
		m.numDCCtxs *= len(m.DCThresholds[c]) + 1
	}
	maxCtx := uint8(0)
	for _, v := range m.CtxMap {
		if v > maxCtx {
			maxCtx = v
		}
	}
	m.numCtxs = int(maxCtx) + 1
}

// IsDefault reports whether the map equals the canonical default.
func (m *BlockCtxMap) IsDefault() bool {
	if len(m.DCThresholds[0]) != 0 || len(m.DCThresholds[1]) != 0 ||
		len(m.DCThresholds[2]) != 0 || len(m.QFThresholds) != 0 {
		return false
	}
	if len(m.CtxMap) != len(kDefaultCtxMap) {
		return false
	}
	for i, v := range m.CtxMap {
		if v != kDefaultCtxMap[i] {
			return false
		}
	}
	return true
}

// NumCtxs returns the number of distinct block context ids.
func (m *BlockCtxMap) NumCtxs() int { return m.numCtxs }

// NumACContexts returns the total context-id space consumed by the
// tokenizer: the non-zero-count contexts followed by the per-coefficient
// zero-density contexts of every block context.
func (m *BlockCtxMap) NumACContexts() int {
	return NonZeroBuckets*m.numCtxs + m.numCtxs*ZeroDensityContextCount
}

// DCIndex collapses the three channels' quantized DC values into the
// combined DC bucket index used by Context.
func (m *BlockCtxMap) DCIndex(dc [3]int32) uint8 {
	idx := 0
	mul := 1
	for c := 0; c < 3; c++ {
		bucket := 0
		for _, t := range m.DCThresholds[c] {
			if dc[c] > t {
				bucket++
			}
		}
		idx += mul * bucket
		mul *= len(m.DCThresholds[c]) + 1
	}
	return uint8(idx)
}

// Context returns the block context id for a combined DC bucket index, a
// raw AC quant value, a transform order class and a channel.
func (m *BlockCtxMap) Context(dcIdx uint8, qf int32, orderClass, channel int) int {
	qfIdx := 0
	for _, t := range m.QFThresholds {
		if uint32(qf) > t {
			qfIdx++
		}
	}
	// Luma-like channel first: 1 -> 0, 0 -> 1, 2 -> 2.
	idx := channel
	if channel < 2 {
		idx = channel ^ 1
	}
	idx = idx*frame.NumStrategyOrders + orderClass
	idx = idx*m.numDCCtxs + int(dcIdx)
	idx = idx*(len(m.QFThresholds)+1) + qfIdx
	return int(m.CtxMap[idx])
}

// NonZeroContext returns the context for the non-zero-count token of a
// block, conditioned on the neighbor-predicted count.
func (m *BlockCtxMap) NonZeroContext(predicted int32, blockCtx int) int {
	if predicted > 64 {
		predicted = 64
	}
	var bucket int32
	if predicted < 8 {
		bucket = predicted
	} else {
		bucket = 4 + predicted/2
	}
	return int(bucket)*m.numCtxs + blockCtx
}

// ZeroDensityContextsOffset returns the base context id of a block
// context's per-coefficient contexts, placed after all non-zero-count
// contexts.
func (m *BlockCtxMap) ZeroDensityContextsOffset(blockCtx int) int {
	return NonZeroBuckets*m.numCtxs + blockCtx*ZeroDensityContextCount
}
