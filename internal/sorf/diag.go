package sorf

import (
	"math"

	"github.com/samcharles93/sorf/internal/tensor"
)

// NormConstant returns the Hadamard normalisation for a transform of the
// given width, 2^(-log2(width)/2). It is folded into each diagonal scaling
// so the transform itself stays unnormalised.
func NormConstant(width int) float64 {
	return math.Pow(2, -math.Log2(float64(width))/2)
}

// MulRadem multiplies rows [start, end) of x in place by signs and the
// normalisation constant for x's innermost width. signs holds one entry per
// element of a row and is broadcast across rows, so a (C) sign vector serves
// an (N, C) array and a (D, C) sign matrix serves an (N, D, C) array.
func MulRadem[T tensor.Float](x *tensor.Dense[T], signs []int8, start, end int) {
	norm := T(NormConstant(x.Width()))
	signs = signs[:x.RowLen()]
	for i := start; i < end; i++ {
		row := x.Row(i)
		for j, s := range signs {
			row[j] *= T(s) * norm
		}
	}
}

// MulRademCopy is MulRadem writing into dst; src is left untouched. dst and
// src must have the same shape.
func MulRademCopy[T tensor.Float](dst, src *tensor.Dense[T], signs []int8, start, end int) {
	norm := T(NormConstant(src.Width()))
	signs = signs[:src.RowLen()]
	for i := start; i < end; i++ {
		in := src.Row(i)
		out := dst.Row(i)
		for j, s := range signs {
			out[j] = in[j] * T(s) * norm
		}
	}
}

// MulRademTiled multiplies every Width-sized block of rows [start, end) in
// place by signs[offset : offset+Width] and the normalisation constant. The
// offset selects one of several independent sign blocks packed into a wider
// sign vector, which is how repeated feature blocks get their own signs.
func MulRademTiled[T tensor.Float](x *tensor.Dense[T], signs []int8, offset, start, end int) {
	w := x.Width()
	norm := T(NormConstant(w))
	tile := signs[offset : offset+w]
	blocks := x.Blocks()
	for i := start; i < end; i++ {
		for b := range blocks {
			v := x.Block(i, b)
			for k, s := range tile {
				v[k] *= T(s) * norm
			}
		}
	}
}

// MulRademTiledCopy is MulRademTiled writing into dst; src is left
// untouched.
func MulRademTiledCopy[T tensor.Float](dst, src *tensor.Dense[T], signs []int8, offset, start, end int) {
	w := src.Width()
	norm := T(NormConstant(w))
	tile := signs[offset : offset+w]
	blocks := src.Blocks()
	for i := start; i < end; i++ {
		for b := range blocks {
			in := src.Block(i, b)
			out := dst.Block(i, b)
			for k, s := range tile {
				out[k] = T(s) * norm * in[k]
			}
		}
	}
}
