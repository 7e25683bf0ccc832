package sorf

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/sorf/internal/tensor"
)

func randomDense[T tensor.Float](rng *rand.Rand, shape ...int) *tensor.Dense[T] {
	d := tensor.New[T](shape...)
	for i := range d.Data() {
		d.Data()[i] = T(rng.Float64()*2 - 1)
	}
	return d
}

func randomSigns(rng *rand.Rand, shape ...int) *tensor.Dense[int8] {
	d := tensor.New[int8](shape...)
	for i := range d.Data() {
		if rng.IntN(2) == 0 {
			d.Data()[i] = -1
		} else {
			d.Data()[i] = 1
		}
	}
	return d
}

// sylvester builds the dense unnormalised Hadamard matrix of order n.
func sylvester(n int) *mat.Dense {
	h := mat.NewDense(1, 1, []float64{1})
	for size := 1; size < n; size *= 2 {
		next := mat.NewDense(2*size, 2*size, nil)
		for i := range size {
			for j := range size {
				v := h.At(i, j)
				next.Set(i, j, v)
				next.Set(i, j+size, v)
				next.Set(i+size, j, v)
				next.Set(i+size, j+size, -v)
			}
		}
		h = next
	}
	return h
}

func naiveTransform(v []float64) {
	for h := 1; h < len(v); h <<= 1 {
		for i := 0; i < len(v); i += 2 * h {
			for j := i; j < i+h; j++ {
				v[j], v[j+h] = v[j]+v[j+h], v[j]-v[j+h]
			}
		}
	}
}

func TestNormConstant(t *testing.T) {
	t.Parallel()

	for _, w := range []int{2, 4, 8, 64, 1024} {
		assert.InDelta(t, 1/math.Sqrt(float64(w)), NormConstant(w), 1e-15, "width %d", w)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 4, 1024} {
		assert.True(t, IsPowerOfTwo(n), "%d", n)
	}
	for _, n := range []int{0, -2, 3, 6, 1000} {
		assert.False(t, IsPowerOfTwo(n), "%d", n)
	}
}

func TestTransformTwiceScalesByWidth(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for _, w := range []int{2, 4, 8, 16, 128} {
		x := randomDense[float64](rng, 5, w)
		orig := append([]float64(nil), x.Data()...)

		Transform(x, 0, x.Rows())
		Transform(x, 0, x.Rows())

		for i, v := range x.Data() {
			require.InDelta(t, orig[i]*float64(w), v, 1e-9, "width %d index %d", w, i)
		}
	}
}

func TestTransformTwiceFloat32(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))
	for _, w := range []int{2, 4, 8, 16, 128} {
		x := randomDense[float32](rng, 3, 2, w)
		orig := append([]float32(nil), x.Data()...)

		Transform(x, 0, x.Rows())
		Transform(x, 0, x.Rows())

		for i, v := range x.Data() {
			require.InDelta(t, float64(orig[i])*float64(w), float64(v), 1e-3, "width %d index %d", w, i)
		}
	}
}

func TestTransformBlockMatchesPlainLoopAndDenseMatrix(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 6))
	for _, w := range []int{2, 4, 8, 16, 32, 256} {
		v := make([]float64, w)
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		plain := append([]float64(nil), v...)
		naiveTransform(plain)

		var dense mat.VecDense
		dense.MulVec(sylvester(w), mat.NewVecDense(w, append([]float64(nil), v...)))

		TransformBlock(v)
		for i := range v {
			require.Equal(t, plain[i], v[i], "width %d: unrolled stages changed output at %d", w, i)
			require.InDelta(t, dense.AtVec(i), v[i], 1e-9, "width %d index %d", w, i)
		}
	}
}

func TestTransformRowRangeOnly(t *testing.T) {
	t.Parallel()

	x := tensor.New[float64](4, 4)
	for i := range x.Data() {
		x.Data()[i] = 1
	}
	Transform(x, 1, 3)
	assert.Equal(t, []float64{1, 1, 1, 1}, x.Row(0))
	assert.Equal(t, []float64{4, 0, 0, 0}, x.Row(1))
	assert.Equal(t, []float64{4, 0, 0, 0}, x.Row(2))
	assert.Equal(t, []float64{1, 1, 1, 1}, x.Row(3))
}

func TestNormalizedRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 8))
	for _, w := range []int{2, 8, 64} {
		for _, sign := range []int8{1, -1} {
			x := randomDense[float64](rng, 6, w)
			orig := append([]float64(nil), x.Data()...)
			signs := make([]int8, w)
			for i := range signs {
				signs[i] = sign
			}

			for range 2 {
				MulRadem(x, signs, 0, x.Rows())
				Transform(x, 0, x.Rows())
			}
			for i, v := range x.Data() {
				require.InDelta(t, orig[i], v, 1e-12, "width %d sign %d index %d", w, sign, i)
			}
		}
	}
}

func TestMulRademBroadcastsAcrossRows(t *testing.T) {
	t.Parallel()

	x := tensor.MustFromData([]float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}, 2, 4)
	MulRadem(x, []int8{1, -1, 1, -1}, 0, 2)
	assert.Equal(t, []float64{0.5, -1, 1.5, -2, 2.5, -3, 3.5, -4}, x.Data())
}

func TestMulRademCopyLeavesSource(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(9, 10))
	src := randomDense[float32](rng, 3, 2, 8)
	orig := append([]float32(nil), src.Data()...)
	dst := tensor.New[float32](3, 2, 8)
	signs := randomSigns(rng, 2, 8)

	MulRademCopy(dst, src, signs.Data(), 0, 3)
	assert.Equal(t, orig, src.Data())

	inPlace := tensor.MustFromData(append([]float32(nil), orig...), 3, 2, 8)
	MulRadem(inPlace, signs.Data(), 0, 3)
	assert.Equal(t, inPlace.Data(), dst.Data())
}

func TestMulRademTiledUsesOffset(t *testing.T) {
	t.Parallel()

	x := tensor.New[float64](1, 3, 4)
	for i := range x.Data() {
		x.Data()[i] = 2
	}
	signs := []int8{1, 1, 1, 1, -1, 1, -1, 1}
	MulRademTiled(x, signs, 4, 0, 1)
	for b := range 3 {
		assert.Equal(t, []float64{-1, 1, -1, 1}, x.Block(0, b), "block %d", b)
	}

	src := tensor.New[float64](1, 3, 4)
	for i := range src.Data() {
		src.Data()[i] = 2
	}
	dst := tensor.New[float64](1, 3, 4)
	MulRademTiledCopy(dst, src, signs, 4, 0, 1)
	assert.Equal(t, x.Data(), dst.Data())
	assert.Equal(t, 2.0, src.At(0, 2, 3))
}

func denseProjection(x []float64, signs *tensor.Dense[int8], off int, chi []float64) []float64 {
	w := len(x)
	h := sylvester(w)
	c := NormConstant(w)
	cur := mat.NewVecDense(w, append([]float64(nil), x...))
	for k := range Rounds {
		d := make([]float64, w)
		for j := range d {
			d[j] = float64(signs.Row(k)[off+j]) * c
		}
		var scaled, next mat.VecDense
		scaled.MulVec(mat.NewDiagDense(w, d), cur)
		next.MulVec(h, &scaled)
		cur = &next
	}
	out := make([]float64, w)
	for j := range out {
		out[j] = cur.AtVec(j)
		if j < len(chi) {
			out[j] *= chi[j]
		}
	}
	return out
}

func TestProjectRowsMatchesDenseProduct(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(11, 12))
	const w, repeats = 16, 3
	signs := randomSigns(rng, 3, repeats*w)
	chiAll := make([]float64, repeats*w)
	for i := range chiAll {
		chiAll[i] = 0.5 + rng.Float64()
	}

	t.Run("2d", func(t *testing.T) {
		x := randomDense[float64](rng, 4, w)
		buf := tensor.New[float64](4, w)
		for r := range repeats {
			ProjectRows(buf, x, signs, r, 0, 4)
			ScaleFrequencies(buf, chiAll, r*w, w, 0, 4)
			for i := range 4 {
				want := denseProjection(x.Row(i), signs, r*w, chiAll[r*w:(r+1)*w])
				for j := range w {
					require.InDelta(t, want[j], buf.Row(i)[j], 1e-9, "repeat %d row %d col %d", r, i, j)
				}
			}
		}
	})

	t.Run("3d", func(t *testing.T) {
		x := randomDense[float64](rng, 2, 5, w)
		buf := tensor.New[float64](2, 5, w)
		orig := append([]float64(nil), x.Data()...)
		ProjectRows(buf, x, signs, 1, 0, 2)
		ScaleFrequencies(buf, chiAll, w, 10, 0, 2)
		require.Equal(t, orig, x.Data(), "input must not be modified")
		for i := range 2 {
			for b := range 5 {
				want := denseProjection(x.Block(i, b), signs, w, chiAll[w:w+10])
				for j := range w {
					require.InDelta(t, want[j], buf.Block(i, b)[j], 1e-9, "row %d block %d col %d", i, b, j)
				}
			}
		}
	})
}

func TestProjectAndProjectCopyAgree(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(13, 14))
	x := randomDense[float64](rng, 11, 3, 8)
	orig := append([]float64(nil), x.Data()...)
	signs := randomSigns(rng, 3, 3, 8)
	require.NoError(t, CheckFullSigns(x, signs))

	dst := tensor.New[float64](11, 3, 8)
	require.NoError(t, ProjectCopy(dst, x, signs, 4))
	require.Equal(t, orig, x.Data())

	require.NoError(t, Project(x, signs, 3))
	for i := range dst.Data() {
		require.InDelta(t, x.Data()[i], dst.Data()[i], 1e-12)
	}

	// Three orthonormal rounds preserve each block's norm.
	for i := range 11 {
		for b := range 3 {
			var before, after float64
			for j := range 8 {
				before += orig[(i*3+b)*8+j] * orig[(i*3+b)*8+j]
				after += x.Block(i, b)[j] * x.Block(i, b)[j]
			}
			require.InDelta(t, before, after, 1e-9)
		}
	}
}

func TestHadamardThreaded(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(15, 16))
	x := randomDense[float32](rng, 9, 32)
	want := tensor.Convert[float32](x)
	Transform(want, 0, want.Rows())

	require.NoError(t, Hadamard(x, 4))
	assert.Equal(t, want.Data(), x.Data())
}

func TestChecks(t *testing.T) {
	t.Parallel()

	x := tensor.New[float32](4, 6)
	assert.ErrorIs(t, CheckWidth(x), ErrShape)
	assert.ErrorIs(t, CheckWidth(tensor.New[float32](8)), ErrShape)

	x = tensor.New[float32](4, 8)
	signs := tensor.New[int8](3, 8)
	assert.ErrorIs(t, CheckFullSigns(x, signs), ErrShape, "zero entries are not signs")
	for i := range signs.Data() {
		signs.Data()[i] = 1
	}
	assert.NoError(t, CheckFullSigns(x, signs))
	assert.ErrorIs(t, CheckFullSigns(x, tensor.New[int8](2, 8)), ErrShape)

	assert.NoError(t, CheckTiledSigns(signs, 4, 2))
	assert.ErrorIs(t, CheckTiledSigns(signs, 8, 2), ErrShape)
	assert.Equal(t, 3, Repeats(17, 8))
	assert.Equal(t, 1, Repeats(8, 8))
}
