// Package pool provides bucketed sync.Pool instances for reducing allocations
// in hot paths, plus a bounded parallel-for used by the row- and
// group-parallel encoder phases. Buffers are organized by size class to
// minimize waste.
package pool

import "sync"

// Size classes for bucketed pools, counted in float32 samples.
const (
	Size256  = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
)

// bucketIndex returns the pool index for a given sample count.
func bucketIndex(n int) int {
	switch {
	case n <= Size256:
		return 0
	case n <= Size1K:
		return 1
	case n <= Size4K:
		return 2
	case n <= Size16K:
		return 3
	case n <= Size64K:
		return 4
	case n <= Size256K:
		return 5
	default:
		return 6
	}
}

var sizes = [7]int{Size256, Size1K, Size4K, Size16K, Size64K, Size256K, Size1M}

var floatPools [7]sync.Pool

func init() {
	for i := range floatPools {
		n := sizes[i]
		floatPools[i] = sync.Pool{
			New: func() any {
				b := make([]float32, n)
				return &b
			},
		}
	}
}

// GetFloat returns a float32 slice of length n from the pool. The contents
// are unspecified; callers that need zeroed memory must clear it. The caller
// must call PutFloat when done.
func GetFloat(n int) []float32 {
	idx := bucketIndex(n)
	bp := floatPools[idx].Get().(*[]float32)
	b := *bp
	if cap(b) < n {
		b = make([]float32, n)
		*bp = b
		return b
	}
	return b[:n]
}

// PutFloat returns a slice to the pool. The slice must have been obtained
// from GetFloat. Slices smaller than Size256 are not pooled.
func PutFloat(b []float32) {
	c := cap(b)
	if c < Size256 {
		return
	}
	idx := bucketIndex(c)
	b = b[:c]
	floatPools[idx].Put(&b)
}
