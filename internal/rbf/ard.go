package rbf

import (
	"math"

	"github.com/samcharles93/sorf/internal/parallel"
	"github.com/samcharles93/sorf/internal/tensor"
)

// ARDParams configures an ARD feature or gradient call.
type ARDParams struct {
	// NumLengthscales is the number of distinct lengthscale groups that
	// sigmaMap indexes into.
	NumLengthscales int
	// NormConstant multiplies every feature and gradient value.
	NormConstant float64
	// Threads is the worker count hint.
	Threads int
}

// ARDGradient computes ARD random features and their gradient with respect
// to each lengthscale group.
//
// x is (N, D) or (N, A, D); weights is (C, D) with one precomputed frequency
// per row. Input dimension m is scaled by sigmaVals[m] and belongs to group
// sigmaMap[m]. out is (N, 2C) holding cos then sin. grad is (N, 2·C·L): the
// cosine half stores the derivative of feature j with respect to group k at
// j·L + k, and the sine half follows at offset C·L.
//
// For (N, A, D) input the records of a sample are summed, feature and
// gradient alike. Each record's partials are multiplied by that record's own
// -sin/cos factor before the sum. Summing the partials over records first and
// scaling once by the summed features would not give the derivative of the
// summed features.
func ARDGradient[T tensor.Float](x, weights *tensor.Dense[T], sigmaMap []int32, sigmaVals []float64, out, grad *tensor.Dense[float64], p ARDParams) error {
	return ard(x, weights, sigmaMap, sigmaVals, out, grad, p)
}

// ARDFeatures is ARDGradient without the gradient.
func ARDFeatures[T tensor.Float](x, weights *tensor.Dense[T], sigmaMap []int32, sigmaVals []float64, out *tensor.Dense[float64], p ARDParams) error {
	return ard(x, weights, sigmaMap, sigmaVals, out, nil, p)
}

func ard[T tensor.Float](x, weights *tensor.Dense[T], sigmaMap []int32, sigmaVals []float64, out, grad *tensor.Dense[float64], p ARDParams) error {
	numFreqs := weights.Rows()
	numScales := p.NumLengthscales
	half := numFreqs * numScales
	blocks := x.Blocks()

	return parallel.For(x.Rows(), p.Threads, func(r parallel.Range) error {
		out.ZeroRows(r.Start, r.End)
		var partials []float64
		if grad != nil {
			grad.ZeroRows(r.Start, r.End)
			partials = make([]float64, numScales)
		}

		for i := r.Start; i < r.End; i++ {
			feat := out.Row(i)
			var g []float64
			if grad != nil {
				g = grad.Row(i)
			}
			for b := range blocks {
				xv := x.Block(i, b)
				for j := range numFreqs {
					w := weights.Row(j)
					clear(partials)
					var rowSum float64
					for m, xm := range xv {
						dot := float64(xm) * float64(w[m])
						rowSum += sigmaVals[m] * dot
						if g != nil {
							partials[sigmaMap[m]] += dot
						}
					}
					s, c := math.Sincos(rowSum)
					feat[j] += c
					feat[numFreqs+j] += s
					if g == nil {
						continue
					}
					gCos := g[j*numScales : (j+1)*numScales]
					gSin := g[half+j*numScales : half+(j+1)*numScales]
					for k, pk := range partials {
						gCos[k] -= s * pk
						gSin[k] += c * pk
					}
				}
			}
			scaleRow(feat, p.NormConstant)
			if g != nil {
				scaleRow(g, p.NormConstant)
			}
		}
		return nil
	})
}
