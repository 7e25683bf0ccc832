package rbf

import "github.com/samcharles93/sorf/internal/tensor"

// FeatureJob bundles the arguments of Features, or of Gradient when Grad is
// set, so a backend can validate and run it.
type FeatureJob[T tensor.Float] struct {
	X, Buf *tensor.Dense[T]
	Signs  *tensor.Dense[int8]
	Chi    []T
	Out    *tensor.Dense[float64]
	Grad   *tensor.Dense[float64]
	Params Params
}

func (j *FeatureJob[T]) Name() string {
	if j.Grad != nil {
		return "rbf_gradient"
	}
	return "rbf_features"
}

func (j *FeatureJob[T]) Rows() int { return j.X.Rows() }

func (j *FeatureJob[T]) Validate() error {
	return CheckFeatures(j.X, j.Buf, j.Signs, j.Chi, j.Out, j.Grad, j.Params)
}

// Run executes the job. threads is used when Params.Threads is unset.
func (j *FeatureJob[T]) Run(threads int) error {
	p := j.Params
	if p.Threads <= 0 {
		p.Threads = threads
	}
	if j.Grad == nil {
		return Features(j.X, j.Buf, j.Signs, j.Chi, j.Out, p)
	}
	return Gradient(j.X, j.Buf, j.Signs, j.Chi, j.Out, j.Grad, p)
}

// ARDJob is FeatureJob for ARDFeatures and ARDGradient.
type ARDJob[T tensor.Float] struct {
	X, Weights *tensor.Dense[T]
	SigmaMap   []int32
	SigmaVals  []float64
	Out        *tensor.Dense[float64]
	Grad       *tensor.Dense[float64]
	Params     ARDParams
}

func (j *ARDJob[T]) Name() string {
	if j.Grad != nil {
		return "ard_gradient"
	}
	return "ard_features"
}

func (j *ARDJob[T]) Rows() int { return j.X.Rows() }

func (j *ARDJob[T]) Validate() error {
	return CheckARD(j.X, j.Weights, j.SigmaMap, j.SigmaVals, j.Out, j.Grad, j.Params)
}

func (j *ARDJob[T]) Run(threads int) error {
	p := j.Params
	if p.Threads <= 0 {
		p.Threads = threads
	}
	if j.Grad == nil {
		return ARDFeatures(j.X, j.Weights, j.SigmaMap, j.SigmaVals, j.Out, p)
	}
	return ARDGradient(j.X, j.Weights, j.SigmaMap, j.SigmaVals, j.Out, j.Grad, p)
}
