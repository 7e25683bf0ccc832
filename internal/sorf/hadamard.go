package sorf

import "github.com/samcharles93/sorf/internal/tensor"

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Transform applies an unnormalised fast Hadamard transform to every block
// of rows [start, end) of x, in place. The innermost width must be a power of
// two. Blocks are independent, so (N, D) input is simply the one-block case.
func Transform[T tensor.Float](x *tensor.Dense[T], start, end int) {
	blocks := x.Blocks()
	for i := start; i < end; i++ {
		for b := range blocks {
			TransformBlock(x.Block(i, b))
		}
	}
}

// TransformBlock applies the butterfly network to v, whose length must be a
// power of two. The first three stages are unrolled; the output is identical
// to the plain loop.
func TransformBlock[T tensor.Float](v []T) {
	n := len(v)
	if n < 2 {
		return
	}

	for i := 0; i < n; i += 2 {
		v[i], v[i+1] = v[i]+v[i+1], v[i]-v[i+1]
	}
	if n <= 2 {
		return
	}

	for i := 0; i < n; i += 4 {
		v[i], v[i+2] = v[i]+v[i+2], v[i]-v[i+2]
		v[i+1], v[i+3] = v[i+1]+v[i+3], v[i+1]-v[i+3]
	}
	if n <= 4 {
		return
	}

	for i := 0; i < n; i += 8 {
		v[i], v[i+4] = v[i]+v[i+4], v[i]-v[i+4]
		v[i+1], v[i+5] = v[i+1]+v[i+5], v[i+1]-v[i+5]
		v[i+2], v[i+6] = v[i+2]+v[i+6], v[i+2]-v[i+6]
		v[i+3], v[i+7] = v[i+3]+v[i+7], v[i+3]-v[i+7]
	}

	for h := 8; h < n; h <<= 1 {
		for i := 0; i < n; i += h << 1 {
			lo := v[i : i+h : i+h]
			hi := v[i+h : i+2*h : i+2*h]
			for j := range lo {
				lo[j], hi[j] = lo[j]+hi[j], lo[j]-hi[j]
			}
		}
	}
}
