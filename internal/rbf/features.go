// Package rbf synthesises random Fourier features for RBF and ARD kernels,
// with optional analytic gradients with respect to the kernel lengthscales.
//
// Plain and graph RBF features go through the structured projection in
// package sorf: each input block is multiplied by H·D3·H·D2·H·D1, scaled by
// the chi frequency diagonal, and turned into cosine/sine pairs. ARD
// features use a dense precomputed frequency matrix instead, since each
// input dimension carries its own lengthscale.
//
// Output rows hold the cosine block followed by the sine block. All
// trigonometry and accumulation happens in float64 whatever the input
// precision.
package rbf

import (
	"fmt"
	"math"
	"strings"

	"github.com/samcharles93/sorf/internal/parallel"
	"github.com/samcharles93/sorf/internal/sorf"
	"github.com/samcharles93/sorf/internal/tensor"
)

// Averaging controls how the summed features of a multi-record (graph)
// sample are normalised.
type Averaging int

const (
	// AverageNone leaves the per-record sum as it is.
	AverageNone Averaging = iota
	// AverageSqrt divides by the square root of the record count.
	AverageSqrt
	// AverageFull divides by the record count.
	AverageFull
)

func (a Averaging) String() string {
	switch a {
	case AverageNone:
		return "none"
	case AverageSqrt:
		return "sqrt"
	case AverageFull:
		return "full"
	default:
		return fmt.Sprintf("Averaging(%d)", int(a))
	}
}

// ParseAveraging accepts "none", "sqrt" or "full"; the empty string means
// none.
func ParseAveraging(s string) (Averaging, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AverageNone, nil
	case "sqrt":
		return AverageSqrt, nil
	case "full":
		return AverageFull, nil
	default:
		return 0, fmt.Errorf("unknown averaging %q (expected none, sqrt, or full)", s)
	}
}

func (a Averaging) factor(records int) float64 {
	if records <= 0 {
		return 1
	}
	switch a {
	case AverageSqrt:
		return 1 / math.Sqrt(float64(records))
	case AverageFull:
		return 1 / float64(records)
	default:
		return 1
	}
}

// Params configures an RBF feature or gradient call.
type Params struct {
	// NumFreqs is the number of sampled frequencies; output rows hold
	// 2·NumFreqs values.
	NumFreqs int
	// NormConstant multiplies every feature and gradient value. It is
	// computed by the caller, typically beta·sqrt(1/NumFreqs).
	NormConstant float64
	// Sigma is the lengthscale used in gradient mode.
	Sigma float64
	// Threads is the worker count hint.
	Threads int
	// SeqLengths optionally limits sample i to its first SeqLengths[i]
	// records (graph nodes). Only meaningful for (N, A, D) input.
	SeqLengths []int32
	// Averaging normalises the per-sample record sum.
	Averaging Averaging
}

func (p Params) records(row, blocks int) int {
	if p.SeqLengths == nil {
		return blocks
	}
	return max(0, min(int(p.SeqLengths[row]), blocks))
}

// Features generates RBF random features for x, which is (N, D) or
// (N, A, D) with D a power of two. The lengthscale is expected to be folded
// into x already. buf is scratch with x's shape; x is not modified. signs
// holds three rows of ceil(NumFreqs/D)·D Rademacher entries and chi holds
// NumFreqs frequency scalings. out must be (N, 2·NumFreqs); for graph input
// the records of a sample are summed into its row.
func Features[T tensor.Float](x, buf *tensor.Dense[T], signs *tensor.Dense[int8], chi []T, out *tensor.Dense[float64], p Params) error {
	return generate(x, buf, signs, chi, out, nil, p)
}

// Gradient is Features for the unscaled input x that additionally writes
// d feature / d sigma into grad, which has the same (N, 2·NumFreqs) layout as
// out.
func Gradient[T tensor.Float](x, buf *tensor.Dense[T], signs *tensor.Dense[int8], chi []T, out, grad *tensor.Dense[float64], p Params) error {
	return generate(x, buf, signs, chi, out, grad, p)
}

func generate[T tensor.Float](x, buf *tensor.Dense[T], signs *tensor.Dense[int8], chi []T, out, grad *tensor.Dense[float64], p Params) error {
	w := x.Width()
	blocks := x.Blocks()
	repeats := sorf.Repeats(p.NumFreqs, w)

	return parallel.For(x.Rows(), p.Threads, func(r parallel.Range) error {
		out.ZeroRows(r.Start, r.End)
		if grad != nil {
			grad.ZeroRows(r.Start, r.End)
		}

		for rep := range repeats {
			off := rep * w
			count := min(w, p.NumFreqs-off)
			sorf.ProjectRows(buf, x, signs, rep, r.Start, r.End)
			sorf.ScaleFrequencies(buf, chi, off, count, r.Start, r.End)

			for i := r.Start; i < r.End; i++ {
				row := out.Row(i)
				for b := range p.records(i, blocks) {
					vals := buf.Block(i, b)[:count]
					if grad == nil {
						accumulateFeatures(row, p.NumFreqs, vals, off)
					} else {
						accumulateGradient(row, grad.Row(i), p.NumFreqs, vals, off, p.Sigma)
					}
				}
			}
		}

		for i := r.Start; i < r.End; i++ {
			scale := p.NormConstant * p.Averaging.factor(p.records(i, blocks))
			scaleRow(out.Row(i), scale)
			if grad != nil {
				scaleRow(grad.Row(i), scale)
			}
		}
		return nil
	})
}
