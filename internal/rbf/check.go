package rbf

import (
	"fmt"

	"github.com/samcharles93/sorf/internal/sorf"
	"github.com/samcharles93/sorf/internal/tensor"
)

// ErrShape is wrapped by every argument validation failure.
var ErrShape = sorf.ErrShape

// CheckFeatures validates the arguments of Features (grad == nil) or
// Gradient.
func CheckFeatures[T tensor.Float](x, buf *tensor.Dense[T], signs *tensor.Dense[int8], chi []T, out, grad *tensor.Dense[float64], p Params) error {
	if err := sorf.CheckWidth(x); err != nil {
		return err
	}
	if x.Rank() > 3 {
		return fmt.Errorf("%w: input must be 2D or 3D, got shape %v", ErrShape, x.Shape())
	}
	if p.NumFreqs <= 0 {
		return fmt.Errorf("%w: number of frequencies must be positive, got %d", ErrShape, p.NumFreqs)
	}
	if !tensor.SameShape(x, buf) {
		return fmt.Errorf("%w: scratch buffer shape %v does not match input %v", ErrShape, buf.Shape(), x.Shape())
	}
	if err := sorf.CheckTiledSigns(signs, x.Width(), sorf.Repeats(p.NumFreqs, x.Width())); err != nil {
		return err
	}
	if len(chi) < p.NumFreqs {
		return fmt.Errorf("%w: chi holds %d values, need %d", ErrShape, len(chi), p.NumFreqs)
	}
	if err := checkOutput("output", out, x.Rows(), 2*p.NumFreqs); err != nil {
		return err
	}
	if grad != nil {
		if err := checkOutput("gradient", grad, x.Rows(), 2*p.NumFreqs); err != nil {
			return err
		}
	}
	if p.SeqLengths != nil {
		if x.Rank() != 3 {
			return fmt.Errorf("%w: sequence lengths require 3D input, got shape %v", ErrShape, x.Shape())
		}
		if len(p.SeqLengths) != x.Rows() {
			return fmt.Errorf("%w: %d sequence lengths for %d samples", ErrShape, len(p.SeqLengths), x.Rows())
		}
		for i, n := range p.SeqLengths {
			if n < 0 || int(n) > x.Blocks() {
				return fmt.Errorf("%w: sequence length %d of sample %d outside [0, %d]", ErrShape, n, i, x.Blocks())
			}
		}
	}
	if p.Averaging < AverageNone || p.Averaging > AverageFull {
		return fmt.Errorf("%w: unknown averaging %v", ErrShape, p.Averaging)
	}
	return nil
}

// CheckARD validates the arguments of ARDFeatures (grad == nil) or
// ARDGradient.
func CheckARD[T tensor.Float](x, weights *tensor.Dense[T], sigmaMap []int32, sigmaVals []float64, out, grad *tensor.Dense[float64], p ARDParams) error {
	if x.Rank() < 2 || x.Rank() > 3 {
		return fmt.Errorf("%w: input must be 2D or 3D, got shape %v", ErrShape, x.Shape())
	}
	if weights.Rank() != 2 || weights.Dim(1) != x.Width() {
		return fmt.Errorf("%w: weights shape %v does not match input width %d", ErrShape, weights.Shape(), x.Width())
	}
	if p.NumLengthscales <= 0 {
		return fmt.Errorf("%w: number of lengthscales must be positive, got %d", ErrShape, p.NumLengthscales)
	}
	if len(sigmaMap) != x.Width() || len(sigmaVals) != x.Width() {
		return fmt.Errorf("%w: sigma map (%d) and values (%d) must both have %d entries", ErrShape, len(sigmaMap), len(sigmaVals), x.Width())
	}
	for m, k := range sigmaMap {
		if k < 0 || int(k) >= p.NumLengthscales {
			return fmt.Errorf("%w: sigma map entry %d is %d, want [0, %d)", ErrShape, m, k, p.NumLengthscales)
		}
	}
	numFreqs := weights.Rows()
	if err := checkOutput("output", out, x.Rows(), 2*numFreqs); err != nil {
		return err
	}
	if grad != nil {
		if err := checkOutput("gradient", grad, x.Rows(), 2*numFreqs*p.NumLengthscales); err != nil {
			return err
		}
	}
	return nil
}

func checkOutput(name string, t *tensor.Dense[float64], rows, cols int) error {
	if t.Rank() != 2 || t.Dim(0) != rows || t.Dim(1) != cols {
		return fmt.Errorf("%w: %s shape %v, want [%d %d]", ErrShape, name, t.Shape(), rows, cols)
	}
	return nil
}
