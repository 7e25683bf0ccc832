package sorf

import "github.com/samcharles93/sorf/internal/tensor"

// Rounds is the number of {sign flip, Hadamard} rounds in the structured
// projection.
const Rounds = 3

// ProjectRows writes the structured projection of rows [start, end) of x
// into buf for sign block repeat:
//
//	buf = H·D3·H·D2·H·D1·x
//
// where each Dk is the diagonal of signs.Row(k)[repeat·W : (repeat+1)·W]
// scaled by NormConstant(W), and W is the innermost width. x is not
// modified. buf must have the same shape as x. signs must have three rows of
// at least (repeat+1)·W entries each.
//
// Multi-block rows (graph or convolution input) apply the same sign tile to
// every block.
func ProjectRows[T tensor.Float](buf, x *tensor.Dense[T], signs *tensor.Dense[int8], repeat, start, end int) {
	w := x.Width()
	off := repeat * w

	MulRademTiledCopy(buf, x, signs.Row(0), off, start, end)
	Transform(buf, start, end)
	for k := 1; k < Rounds; k++ {
		if buf.Blocks() == 1 {
			MulRadem(buf, signs.Row(k)[off:off+w], start, end)
		} else {
			MulRademTiled(buf, signs.Row(k), off, start, end)
		}
		Transform(buf, start, end)
	}
}

// ScaleFrequencies multiplies the first count columns of every block of rows
// [start, end) by chi[offset+j]. This is the final diagonal of the SORF
// construction, which restores the norm distribution of a dense Gaussian
// projection.
func ScaleFrequencies[T tensor.Float](buf *tensor.Dense[T], chi []T, offset, count, start, end int) {
	scale := chi[offset : offset+count]
	blocks := buf.Blocks()
	for i := start; i < end; i++ {
		for b := range blocks {
			v := buf.Block(i, b)
			for j, c := range scale {
				v[j] *= c
			}
		}
	}
}

// Repeats returns how many sign blocks of width w are needed to produce
// numFreqs frequencies.
func Repeats(numFreqs, w int) int {
	if w <= 0 {
		return 0
	}
	return (numFreqs + w - 1) / w
}
