package sorf

import (
	"fmt"

	"github.com/samcharles93/sorf/internal/parallel"
	"github.com/samcharles93/sorf/internal/tensor"
)

// Project applies three rounds of {sign flip, Hadamard transform} to x in
// place. signs must have shape (3, ...) with one entry per element of an x
// row, e.g. (3, C) for (N, C) input or (3, D, C) for (N, D, C) input.
func Project[T tensor.Float](x *tensor.Dense[T], signs *tensor.Dense[int8], threads int) error {
	return parallel.For(x.Rows(), threads, func(r parallel.Range) error {
		for k := range Rounds {
			MulRadem(x, signs.Row(k), r.Start, r.End)
			Transform(x, r.Start, r.End)
		}
		return nil
	})
}

// ProjectCopy is Project writing into dst; x is left untouched.
func ProjectCopy[T tensor.Float](dst, x *tensor.Dense[T], signs *tensor.Dense[int8], threads int) error {
	return parallel.For(x.Rows(), threads, func(r parallel.Range) error {
		MulRademCopy(dst, x, signs.Row(0), r.Start, r.End)
		Transform(dst, r.Start, r.End)
		for k := 1; k < Rounds; k++ {
			MulRadem(dst, signs.Row(k), r.Start, r.End)
			Transform(dst, r.Start, r.End)
		}
		return nil
	})
}

// Hadamard applies the unnormalised transform to every block of x in place.
func Hadamard[T tensor.Float](x *tensor.Dense[T], threads int) error {
	return parallel.For(x.Rows(), threads, func(r parallel.Range) error {
		Transform(x, r.Start, r.End)
		return nil
	})
}

// CheckWidth validates that x has a transformable innermost dimension.
func CheckWidth[T tensor.Numeric](x *tensor.Dense[T]) error {
	if x.Rank() < 2 {
		return fmt.Errorf("%w: input must be 2D or 3D, got shape %v", ErrShape, x.Shape())
	}
	if !IsPowerOfTwo(x.Width()) || x.Width() < 2 {
		return fmt.Errorf("%w: innermost dimension %d is not a power of two >= 2", ErrShape, x.Width())
	}
	return nil
}

// CheckFullSigns validates signs for Project / ProjectCopy against x.
func CheckFullSigns[T tensor.Numeric](x *tensor.Dense[T], signs *tensor.Dense[int8]) error {
	if err := CheckWidth(x); err != nil {
		return err
	}
	if signs.Rank() < 2 || signs.Rows() != Rounds {
		return fmt.Errorf("%w: signs must have leading dimension %d, got shape %v", ErrShape, Rounds, signs.Shape())
	}
	if signs.RowLen() != x.RowLen() {
		return fmt.Errorf("%w: signs rows hold %d entries, input rows hold %d", ErrShape, signs.RowLen(), x.RowLen())
	}
	return checkSignValues(signs)
}

// CheckTiledSigns validates signs for ProjectRows: three rows of at least
// repeats·W entries.
func CheckTiledSigns(signs *tensor.Dense[int8], width, repeats int) error {
	if signs.Rank() < 2 || signs.Rows() != Rounds {
		return fmt.Errorf("%w: signs must have leading dimension %d, got shape %v", ErrShape, Rounds, signs.Shape())
	}
	if signs.RowLen() < repeats*width {
		return fmt.Errorf("%w: signs rows hold %d entries, need %d (%d blocks of %d)", ErrShape, signs.RowLen(), repeats*width, repeats, width)
	}
	return checkSignValues(signs)
}

func checkSignValues(signs *tensor.Dense[int8]) error {
	for i, s := range signs.Data() {
		if s != 1 && s != -1 {
			return fmt.Errorf("%w: sign entry %d is %d, want -1 or 1", ErrShape, i, s)
		}
	}
	return nil
}

// ErrShape is wrapped by every argument validation failure.
var ErrShape = fmtError("invalid shape")

type fmtError string

func (e fmtError) Error() string { return string(e) }
