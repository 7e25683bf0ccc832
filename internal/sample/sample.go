// Package sample draws the random parameters of a structured feature map:
// Rademacher signs, chi frequency scalings and Gaussian ARD weights.
//
// A Sampler is seeded so that benchmarks and tests are reproducible. It is
// not safe for concurrent use.
package sample

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samcharles93/sorf/internal/sorf"
	"github.com/samcharles93/sorf/internal/tensor"
)

type Sampler struct {
	src rand.Source
	rng *rand.Rand
}

func New(seed uint64) *Sampler {
	src := rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)
	return &Sampler{src: src, rng: rand.New(src)}
}

// Signs returns (3, ceil(numFreqs/width)·width) Rademacher entries for the
// tiled projection used by the RBF feature functions.
func (s *Sampler) Signs(numFreqs, width int) *tensor.Dense[int8] {
	return s.FullSigns(sorf.Repeats(numFreqs, width) * width)
}

// FullSigns returns three rows of ±1 matching a row shape, e.g. (3, D, C)
// for in-place projection of (N, D, C) input.
func (s *Sampler) FullSigns(rowShape ...int) *tensor.Dense[int8] {
	signs := tensor.New[int8](append([]int{sorf.Rounds}, rowShape...)...)
	data := signs.Data()
	for i := range data {
		data[i] = 1
		if s.rng.Uint64()&1 == 0 {
			data[i] = -1
		}
	}
	return signs
}

// Chi returns numFreqs draws from a chi distribution with width degrees of
// freedom, the norm distribution of a width-dimensional standard Gaussian.
func (s *Sampler) Chi(numFreqs, width int) []float64 {
	dist := distuv.ChiSquared{K: float64(width), Src: s.src}
	chi := make([]float64, numFreqs)
	for i := range chi {
		chi[i] = math.Sqrt(dist.Rand())
	}
	return chi
}

// Weights returns a (numFreqs, dims) matrix of standard normal draws.
func (s *Sampler) Weights(numFreqs, dims int) *tensor.Dense[float64] {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: s.src}
	w := tensor.New[float64](numFreqs, dims)
	for i := range w.Data() {
		w.Data()[i] = dist.Rand()
	}
	return w
}

// Input returns a tensor of the given shape with entries uniform in
// [-scale, scale).
func (s *Sampler) Input(scale float64, shape ...int) *tensor.Dense[float64] {
	dist := distuv.Uniform{Min: -scale, Max: scale, Src: s.src}
	x := tensor.New[float64](shape...)
	for i := range x.Data() {
		x.Data()[i] = dist.Rand()
	}
	return x
}

// NormConstant is the conventional RBF feature scaling beta·sqrt(1/numFreqs).
func NormConstant(beta float64, numFreqs int) float64 {
	return beta * math.Sqrt(1/float64(numFreqs))
}

// As converts a float64 slice to the requested precision.
func As[T tensor.Float](v []float64) []T {
	out := make([]T, len(v))
	for i, f := range v {
		out[i] = T(f)
	}
	return out
}

// Stats summarises a series of measurements.
type Stats struct {
	Min, Max, Mean float64
}

func Summarize(v []float64) Stats {
	if len(v) == 0 {
		return Stats{}
	}
	return Stats{
		Min:  floats.Min(v),
		Max:  floats.Max(v),
		Mean: floats.Sum(v) / float64(len(v)),
	}
}
