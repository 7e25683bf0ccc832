package tensor

import "fmt"

// Float is the set of element types the transform and synthesis kernels are
// instantiated for.
type Float interface {
	~float32 | ~float64
}

// Numeric is the set of element types a Dense tensor may hold. int8 carries
// Rademacher signs and int32 carries lengthscale maps.
type Numeric interface {
	~int8 | ~int32 | ~float32 | ~float64
}

// Dense is a row-major tensor with a fixed shape.
//
// The leading dimension is the batch ("row") dimension. Everything after it
// is flattened into a row of RowLen elements, which is in turn split into
// Blocks() contiguous blocks of Width() elements (the innermost dimension).
// A 2D (N, D) tensor therefore has one block per row and a 3D (N, A, D)
// tensor has A blocks per row.
//
// Dense does not perform any memory safety beyond explicit index checks in
// its accessors; the slices it hands out alias the underlying data.
type Dense[T Numeric] struct {
	shape   []int
	strides []int
	data    []T
}

// New allocates a zero-initialised tensor with the given shape.
func New[T Numeric](shape ...int) *Dense[T] {
	n, err := checkShape(shape)
	if err != nil {
		panic(err.Error())
	}
	return &Dense[T]{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    make([]T, n),
	}
}

// FromData wraps existing data in a tensor of the given shape. The data is
// not copied; len(data) must equal the product of the shape.
func FromData[T Numeric](data []T, shape ...int) (*Dense[T], error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: have %d elements, shape %v needs %d", errDataSizeMismatch, len(data), shape, n)
	}
	return &Dense[T]{
		shape:   append([]int(nil), shape...),
		strides: rowMajorStrides(shape),
		data:    data,
	}, nil
}

// MustFromData is FromData that panics on error. Intended for tests and
// fixed-shape literals.
func MustFromData[T Numeric](data []T, shape ...int) *Dense[T] {
	d, err := FromData(data, shape...)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Shape returns a copy of the tensor shape.
func (d *Dense[T]) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Rank returns the number of dimensions.
func (d *Dense[T]) Rank() int {
	return len(d.shape)
}

// Dim returns the size of dimension i.
func (d *Dense[T]) Dim(i int) int {
	if i < 0 || i >= len(d.shape) {
		panic("dimension index out of range")
	}
	return d.shape[i]
}

// Len returns the total number of elements.
func (d *Dense[T]) Len() int {
	return len(d.data)
}

// Data returns the flat backing slice.
func (d *Dense[T]) Data() []T {
	return d.data
}

// Rows returns the size of the leading dimension.
func (d *Dense[T]) Rows() int {
	return d.shape[0]
}

// RowLen returns the number of elements between the starts of two
// consecutive rows.
func (d *Dense[T]) RowLen() int {
	if len(d.shape) == 1 {
		return 1
	}
	return d.strides[0]
}

// Width returns the size of the innermost dimension.
func (d *Dense[T]) Width() int {
	if len(d.shape) == 1 {
		return 1
	}
	return d.shape[len(d.shape)-1]
}

// Blocks returns the number of Width-sized blocks in one row.
func (d *Dense[T]) Blocks() int {
	w := d.Width()
	if w == 0 {
		return 0
	}
	return d.RowLen() / w
}

// Row returns a view of the i-th row. Modifications to the returned slice
// update the tensor.
func (d *Dense[T]) Row(i int) []T {
	if i < 0 || i >= d.shape[0] {
		panic("row index out of range")
	}
	n := d.RowLen()
	start := i * n
	return d.data[start : start+n : start+n]
}

// Block returns a view of block j of row i.
func (d *Dense[T]) Block(i, j int) []T {
	if j < 0 || j >= d.Blocks() {
		panic("block index out of range")
	}
	w := d.Width()
	row := d.Row(i)
	return row[j*w : (j+1)*w : (j+1)*w]
}

// At returns the element at the given index.
func (d *Dense[T]) At(idx ...int) T {
	return d.data[d.offset(idx)]
}

// Set stores v at the given index.
func (d *Dense[T]) Set(v T, idx ...int) {
	d.data[d.offset(idx)] = v
}

// ZeroRows clears rows [start, end).
func (d *Dense[T]) ZeroRows(start, end int) {
	if start < 0 || end > d.shape[0] || start > end {
		panic("row range out of range")
	}
	n := d.RowLen()
	clear(d.data[start*n : end*n])
}

// SameShape reports whether d and other have identical shapes.
func SameShape[A, B Numeric](d *Dense[A], other *Dense[B]) bool {
	if len(d.shape) != len(other.shape) {
		return false
	}
	for i := range d.shape {
		if d.shape[i] != other.shape[i] {
			return false
		}
	}
	return true
}

// Convert returns a copy of src with every element converted to U.
func Convert[U, T Numeric](src *Dense[T]) *Dense[U] {
	out := New[U](src.shape...)
	for i, v := range src.data {
		out.data[i] = U(v)
	}
	return out
}

func (d *Dense[T]) offset(idx []int) int {
	if len(idx) != len(d.shape) {
		panic("index rank mismatch")
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= d.shape[i] {
			panic("index out of range")
		}
		off += v * d.strides[i]
	}
	return off
}

func checkShape(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, errEmptyShape
	}
	n := 1
	for _, s := range shape {
		if s < 0 {
			return 0, errNegativeDim
		}
		if s != 0 && n > maxElements/s {
			return 0, errTooLarge
		}
		n *= s
	}
	return n, nil
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

const maxElements = int(^uint(0) >> 1)

var (
	errEmptyShape       = fmtError("tensor shape must have at least one dimension")
	errNegativeDim      = fmtError("negative dimension for tensor")
	errTooLarge         = fmtError("tensor too large")
	errDataSizeMismatch = fmtError("data length mismatch")
)

type fmtError string

func (e fmtError) Error() string { return string(e) }
