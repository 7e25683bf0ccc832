package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/samcharles93/sorf/internal/sorf"
)

func TestSignsShapeAndValues(t *testing.T) {
	t.Parallel()
	s := New(1)
	signs := s.Signs(20, 8)
	assert.Equal(t, []int{3, 24}, signs.Shape())
	require.NoError(t, sorf.CheckTiledSigns(signs, 8, sorf.Repeats(20, 8)))

	var plus int
	for _, v := range signs.Data() {
		if v == 1 {
			plus++
		}
	}
	assert.Greater(t, plus, 0)
	assert.Less(t, plus, len(signs.Data()))

	full := s.FullSigns(4, 16)
	assert.Equal(t, []int{3, 4, 16}, full.Shape())
}

func TestSeedIsReproducible(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	assert.Equal(t, a.Signs(16, 8).Data(), b.Signs(16, 8).Data())
	assert.Equal(t, a.Chi(16, 8), b.Chi(16, 8))
	assert.Equal(t, a.Weights(3, 4).Data(), b.Weights(3, 4).Data())

	c := New(43)
	assert.NotEqual(t, New(42).Chi(16, 8), c.Chi(16, 8))
}

func TestChiMoments(t *testing.T) {
	t.Parallel()
	// E[chi_k^2] = k
	chi := New(7).Chi(20000, 16)
	sq := make([]float64, len(chi))
	for i, c := range chi {
		require.Greater(t, c, 0.0)
		sq[i] = c * c
	}
	assert.InDelta(t, 16, floats.Sum(sq)/float64(len(sq)), 0.3)
}

func TestWeightsAreStandardNormal(t *testing.T) {
	t.Parallel()
	w := New(9).Weights(200, 100).Data()
	mean := floats.Sum(w) / float64(len(w))
	var v float64
	for _, x := range w {
		v += (x - mean) * (x - mean)
	}
	v /= float64(len(w))
	assert.InDelta(t, 0, mean, 0.03)
	assert.InDelta(t, 1, v, 0.05)
}

func TestInputRange(t *testing.T) {
	t.Parallel()
	x := New(3).Input(0.5, 4, 2, 8)
	assert.Equal(t, []int{4, 2, 8}, x.Shape())
	for _, v := range x.Data() {
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 0.5)
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 2*math.Sqrt(0.25), NormConstant(2, 4), 1e-15)
	assert.Equal(t, []float32{1, -0.5}, As[float32]([]float64{1, -0.5}))

	st := Summarize([]float64{3, 1, 2})
	assert.Equal(t, Stats{Min: 1, Max: 3, Mean: 2}, st)
	assert.Equal(t, Stats{}, Summarize(nil))
}
