package sorf

import (
	"fmt"

	"github.com/samcharles93/sorf/internal/tensor"
)

// ProjectJob runs Project on X, or ProjectCopy into Dst when Dst is set.
// With Signs nil it runs the bare Hadamard transform.
type ProjectJob[T tensor.Float] struct {
	X, Dst  *tensor.Dense[T]
	Signs   *tensor.Dense[int8]
	Threads int
}

func (j *ProjectJob[T]) Name() string {
	if j.Signs == nil {
		return "hadamard"
	}
	return "sorf_projection"
}

func (j *ProjectJob[T]) Rows() int { return j.X.Rows() }

func (j *ProjectJob[T]) Validate() error {
	if j.Signs == nil {
		if j.Dst != nil {
			return fmt.Errorf("%w: hadamard transform runs in place", ErrShape)
		}
		return CheckWidth(j.X)
	}
	if j.Dst != nil && !tensor.SameShape(j.X, j.Dst) {
		return fmt.Errorf("%w: destination shape %v does not match input %v", ErrShape, j.Dst.Shape(), j.X.Shape())
	}
	return CheckFullSigns(j.X, j.Signs)
}

func (j *ProjectJob[T]) Run(threads int) error {
	if j.Threads > 0 {
		threads = j.Threads
	}
	switch {
	case j.Signs == nil:
		return Hadamard(j.X, threads)
	case j.Dst != nil:
		return ProjectCopy(j.Dst, j.X, j.Signs, threads)
	default:
		return Project(j.X, j.Signs, threads)
	}
}
