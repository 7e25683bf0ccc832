package rbf

import (
	"math"

	"github.com/samcharles93/sorf/internal/tensor"
)

// accumulateFeatures adds cos(v) and sin(v) for each projected value into
// the cosine and sine halves of a feature row, starting at frequency offset.
func accumulateFeatures[T tensor.Float](row []float64, numFreqs int, vals []T, offset int) {
	cosHalf := row[offset : offset+len(vals)]
	sinHalf := row[numFreqs+offset : numFreqs+offset+len(vals)]
	for j, v := range vals {
		s, c := math.Sincos(float64(v))
		cosHalf[j] += c
		sinHalf[j] += s
	}
}

// accumulateGradient is accumulateFeatures for cos(σv), sin(σv) that also
// adds the lengthscale derivatives -v·sin(σv) and v·cos(σv) to grad.
func accumulateGradient[T tensor.Float](row, grad []float64, numFreqs int, vals []T, offset int, sigma float64) {
	n := len(vals)
	cosHalf := row[offset : offset+n]
	sinHalf := row[numFreqs+offset : numFreqs+offset+n]
	gCos := grad[offset : offset+n]
	gSin := grad[numFreqs+offset : numFreqs+offset+n]
	for j, raw := range vals {
		v := float64(raw)
		s, c := math.Sincos(sigma * v)
		cosHalf[j] += c
		sinHalf[j] += s
		gCos[j] -= s * v
		gSin[j] += c * v
	}
}

func scaleRow(row []float64, c float64) {
	if c == 1 {
		return
	}
	for j := range row {
		row[j] *= c
	}
}

// SynthesizeRow turns one row of projected values into random features.
//
// feat receives cos(σv) in its first len(vals) entries and sin(σv) in the
// next len(vals), all scaled by norm. When grad is non-nil it receives the
// matching derivatives with respect to σ in the same layout. When grad is
// nil, sigma is ignored and vals are used as they are, i.e. the lengthscale
// is assumed to be folded into the input already.
func SynthesizeRow[T tensor.Float](feat, grad []float64, vals []T, sigma, norm float64) {
	n := len(vals)
	feat = feat[:2*n]
	clear(feat)
	if grad == nil {
		accumulateFeatures(feat, n, vals, 0)
		scaleRow(feat, norm)
		return
	}
	grad = grad[:2*n]
	clear(grad)
	accumulateGradient(feat, grad, n, vals, 0, sigma)
	scaleRow(feat, norm)
	scaleRow(grad, norm)
}
