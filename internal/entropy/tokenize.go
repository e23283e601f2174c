package entropy

import (
	"fmt"

	"github.com/deepteams/jxl/internal/frame"
	"github.com/deepteams/jxl/internal/imagef"
)

// kCoeffNumNonzeroContext buckets the remaining non-zero count. Entry 0 is
// never used since tokenization stops when the count reaches zero. Offsets
// were chosen so that the sum with kCoeffFreqContext stays below
// ZeroDensityContextCount/2.
var kCoeffNumNonzeroContext = [64]uint8{
	0, 0, 31, 62, 62, 93, 93, 93, 93, 123, 123, 123, 123,
	152, 152, 152, 152, 152, 152, 152, 152, 180, 180, 180, 180,
	180, 180, 180, 180, 180, 180, 180, 180, 206, 206, 206, 206,
	206, 206, 206, 206, 206, 206, 206, 206, 206, 206, 206, 206,
	206, 206, 206, 206, 206, 206, 206, 206, 206, 206, 206, 206,
	206, 206, 206,
}

// kCoeffFreqContext buckets the scan position: exact below 16, pairs to 32,
// saturated beyond. Entry 0 is never used; scanning starts past the LLF.
var kCoeffFreqContext = [64]uint8{
	0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14,
	15, 15, 16, 16, 17, 17, 18, 18, 19, 19, 20, 20, 21, 21, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
}

// ZeroDensityContext conditions a coefficient token on the remaining
// non-zero count, the scan position (both scaled down by the covered-block
// count so large transforms share statistics with 8x8), and whether the
// previous coefficient was non-zero.
func ZeroDensityContext(nonzerosLeft, k, coveredBlocks, log2Covered, prev int) int {
	nz := (nonzerosLeft + coveredBlocks - 1) >> uint(log2Covered)
	kk := k >> uint(log2Covered)
	return (int(kCoeffNumNonzeroContext[nz])+int(kCoeffFreqContext[kk]))*2 + prev
}

// predictFromTopAndLeft predicts a block's non-zero count from the causal
// top and left neighbors in the auxiliary grid, falling back to defaultVal
// at the top-left corner.
func predictFromTopAndLeft(top, cur []int32, x int, defaultVal int32) int32 {
	if x == 0 {
		if top == nil {
			return defaultVal
		}
		return top[x]
	}
	if top == nil {
		return cur[x-1]
	}
	return (top[x] + cur[x-1] + 1) / 2
}

// numNonZero8x8ExceptDC counts non-zero coefficients of a single 8x8 block,
// skipping the DC cell. Coefficients are integer-valued floats; truncate to
// integer first since -0 would otherwise compare unequal to zero bits.
func numNonZero8x8ExceptDC(block []float32) int32 {
	_ = block[63]
	var nz int32
	for i := 1; i < frame.DCTBlockSize; i++ {
		if int32(block[i]) != 0 {
			nz++
		}
	}
	return nz
}

// numNonZeroExceptLLF counts non-zero coefficients of a canonical cx x cy
// covered-block layout, skipping the low-frequency corner.
func numNonZeroExceptLLF(cx, cy int, block []float32) int32 {
	w := cx * frame.BlockDim
	h := cy * frame.BlockDim
	var nz int32
	// Rows holding the LLF corner.
	for y := 0; y < cy; y++ {
		row := block[y*w : y*w+w]
		for x := cx; x < w; x++ {
			if int32(row[x]) != 0 {
				nz++
			}
		}
	}
	// Remaining rows, no mask.
	for y := cy; y < h; y++ {
		row := block[y*w : y*w+w]
		for x := 0; x < w; x++ {
			if int32(row[x]) != 0 {
				nz++
			}
		}
	}
	return nz
}

// TokenizeCoefficients walks every first-cell block in raster order and
// appends its tokens to out: one non-zero-count token per coded
// block-channel, then one token per coefficient in scan order up to the
// last non-zero. acRows holds each channel's quantized coefficients
// contiguously in block visit order. nzGrid is the per-block auxiliary
// non-zero grid (chroma planes at subsampled resolution); it is both
// written and read here to drive neighbor prediction. qdc holds the
// combined per-block DC bucket index and qf the raw AC quant indices.
func TokenizeCoefficients(
	orders *frame.CoeffOrders,
	acRows [3][]float32,
	strategies *frame.AcStrategyGrid,
	cs frame.ChromaSubsampling,
	nzGrid [3]*imagef.PlaneI,
	qdc *imagef.PlaneB,
	qf *imagef.PlaneI,
	bcm *BlockCtxMap,
	out []Token,
) []Token {
	if nzGrid[1].W != strategies.W || nzGrid[1].H != strategies.H {
		panic(fmt.Sprintf("entropy: nz grid %dx%d does not match %dx%d strategy grid",
			nzGrid[1].W, nzGrid[1].H, strategies.W, strategies.H))
	}
	if qdc.W != strategies.W || qdc.H != strategies.H || qf.W != strategies.W || qf.H != strategies.H {
		panic("entropy: quant grids do not match strategy grid")
	}

	hshift := cs.HShift()
	vshift := cs.VShift()
	var offset [3]int
	for by := 0; by < strategies.H; by++ {
		sbyc := by >> uint(vshift)
		rowNz := [3][]int32{nzGrid[0].Row(sbyc), nzGrid[1].Row(by), nzGrid[2].Row(sbyc)}
		var rowNzTop [3][]int32
		if sbyc > 0 {
			rowNzTop[0] = nzGrid[0].Row(sbyc - 1)
			rowNzTop[2] = nzGrid[2].Row(sbyc - 1)
		}
		if by > 0 {
			rowNzTop[1] = nzGrid[1].Row(by - 1)
		}
		rowQdc := qdc.Row(by)
		rowQf := qf.Row(by)
		for bx := 0; bx < strategies.W; bx++ {
			if !strategies.IsFirst(bx, by) {
				continue
			}
			acs := strategies.Strategy(bx, by)
			sbxc := bx >> uint(hshift)
			coveredBlocks := acs.CoveredBlocks()
			log2Covered := acs.Log2CoveredBlocks()
			size := coveredBlocks * frame.DCTBlockSize
			cx, cy := acs.CanonicalLayout()

			for _, c := range [3]int{1, 0, 2} {
				if c != 1 && (sbxc<<uint(hshift) != bx || sbyc<<uint(vshift) != by) {
					continue
				}
				sbx := bx
				nby := by
				if c != 1 {
					sbx = sbxc
					nby = sbyc
				}
				block := acRows[c][offset[c] : offset[c]+size]

				var nzeros int32
				if coveredBlocks == 1 {
					nzeros = numNonZero8x8ExceptDC(block)
					rowNz[c][sbx] = nzeros
				} else {
					nzeros = numNonZeroExceptLLF(cx, cy, block)
					shifted := (nzeros + int32(coveredBlocks) - 1) >> uint(log2Covered)
					// The footprint uses non-canonical extents.
					for y := 0; y < acs.CoveredBlocksY(); y++ {
						nrow := nzGrid[c].Row(nby + y)
						for x := 0; x < acs.CoveredBlocksX(); x++ {
							nrow[sbx+x] = shifted
						}
					}
				}

				predicted := predictFromTopAndLeft(rowNzTop[c], rowNz[c], sbx, 32)
				blockCtx := bcm.Context(rowQdc[bx], rowQf[sbx], acs.OrderClass(), c)
				nzeroCtx := bcm.NonZeroContext(predicted, blockCtx)
				out = append(out, Token{Ctx: uint32(nzeroCtx), Value: uint32(nzeros)})

				histoOffset := bcm.ZeroDensityContextsOffset(blockCtx)
				order := orders.Order(acs.OrderClass(), c)
				prev := 1
				if nzeros > int32(size/16) {
					prev = 0
				}
				for k := coveredBlocks; k < size && nzeros != 0; k++ {
					coeff := int32(block[order[k]])
					ctx := histoOffset + ZeroDensityContext(int(nzeros), k, coveredBlocks, log2Covered, prev)
					out = append(out, Token{Ctx: uint32(ctx), Value: PackSigned(coeff)})
					if coeff != 0 {
						prev = 1
						nzeros--
					} else {
						prev = 0
					}
				}
				offset[c] += size
			}
		}
	}
	return out
}
