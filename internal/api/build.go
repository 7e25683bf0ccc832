package api

import (
	"math"
	"strings"

	"github.com/samcharles93/sorf/internal/backend"
	"github.com/samcharles93/sorf/internal/rbf"
	"github.com/samcharles93/sorf/internal/sorf"
	"github.com/samcharles93/sorf/internal/tensor"
)

// DefaultMaxElements bounds the size of each output buffer a single job may
// allocate.
const DefaultMaxElements = 1 << 26

// BuildJob turns a request into a validated backend job and the Result the
// job fills when it runs. Validation failures wrap ErrInvalidRequest.
func BuildJob(req *JobRequest) (backend.Job, *Result, error) {
	return BuildJobLimit(req, DefaultMaxElements)
}

// BuildJobLimit is BuildJob with an explicit bound on the elements of each
// output buffer; maxElements <= 0 selects DefaultMaxElements. Sizes are
// checked before anything is allocated.
func BuildJobLimit(req *JobRequest, maxElements int) (backend.Job, *Result, error) {
	if maxElements <= 0 {
		maxElements = DefaultMaxElements
	}
	switch normalizePrecision(req.Precision) {
	case PrecisionFloat32:
		return build[float32](req, maxElements)
	case PrecisionFloat64:
		return build[float64](req, maxElements)
	default:
		return nil, nil, newInvalidRequest("precision", "unknown precision %q (expected float32 or float64)", req.Precision)
	}
}

func normalizePrecision(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", "float64", "f64", "double":
		return PrecisionFloat64
	case "float32", "f32", "float", "single":
		return PrecisionFloat32
	default:
		return p
	}
}

func build[T tensor.Float](req *JobRequest, maxElements int) (backend.Job, *Result, error) {
	x, err := tensor.FromData(convert[T](req.X), req.Shape...)
	if err != nil {
		return nil, nil, newInvalidRequest("x", "%v", err)
	}

	var (
		job backend.Job
		res *Result
	)
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case KindRBFFeatures, KindRBFGradient:
		job, res, err = buildRBF(req, x, maxElements)
	case KindARDFeatures, KindARDGradient:
		job, res, err = buildARD(req, x, maxElements)
	case KindSORF, KindHadamard:
		job, res, err = buildProjection(req, x)
	default:
		return nil, nil, newInvalidRequest("kind", "unknown job kind %q", req.Kind)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, nil, newInvalidRequest("", "%v", err)
	}
	return job, res, nil
}

func buildRBF[T tensor.Float](req *JobRequest, x *tensor.Dense[T], maxElements int) (backend.Job, *Result, error) {
	if req.NumFreqs <= 0 {
		return nil, nil, newInvalidRequest("num_freqs", "must be positive")
	}
	if len(req.Chi) < req.NumFreqs {
		return nil, nil, newInvalidRequest("chi", "holds %d values, need %d", len(req.Chi), req.NumFreqs)
	}
	if x.Rank() < 2 || x.Rank() > 3 {
		return nil, nil, newInvalidRequest("shape", "input must be 2D or 3D, got %v", x.Shape())
	}
	if err := sorf.CheckWidth(x); err != nil {
		return nil, nil, newInvalidRequest("shape", "%v", err)
	}
	signs, err := signsTensor(req)
	if err != nil {
		return nil, nil, err
	}
	if err := sorf.CheckTiledSigns(signs, x.Width(), sorf.Repeats(req.NumFreqs, x.Width())); err != nil {
		return nil, nil, newInvalidRequest("signs", "%v", err)
	}
	averaging, err := rbf.ParseAveraging(req.Averaging)
	if err != nil {
		return nil, nil, newInvalidRequest("averaging", "%v", err)
	}

	rows, cols := x.Rows(), 2*req.NumFreqs
	if err := checkElements("num_freqs", rows, cols, maxElements); err != nil {
		return nil, nil, err
	}
	job := &rbf.FeatureJob[T]{
		X:     x,
		Buf:   tensor.New[T](x.Shape()...),
		Signs: signs,
		Chi:   convert[T](req.Chi),
		Out:   tensor.New[float64](rows, cols),
		Params: rbf.Params{
			NumFreqs:     req.NumFreqs,
			NormConstant: normConstant(req, req.NumFreqs),
			Sigma:        valueOr(req.Sigma, 1),
			Threads:      req.Threads,
			SeqLengths:   req.SeqLengths,
			Averaging:    averaging,
		},
	}
	res := &Result{Features: job.Out.Data(), FeaturesShape: []int{rows, cols}}
	if strings.EqualFold(req.Kind, KindRBFGradient) {
		job.Grad = tensor.New[float64](rows, cols)
		res.Gradient = job.Grad.Data()
		res.GradientShape = []int{rows, cols}
	}
	return job, res, nil
}

func buildARD[T tensor.Float](req *JobRequest, x *tensor.Dense[T], maxElements int) (backend.Job, *Result, error) {
	if req.NumLengthscales <= 0 {
		return nil, nil, newInvalidRequest("num_lengthscales", "must be positive")
	}
	if x.Rank() < 2 || x.Rank() > 3 {
		return nil, nil, newInvalidRequest("shape", "input must be 2D or 3D, got %v", x.Shape())
	}
	weights, err := tensor.FromData(convert[T](req.Weights), req.WeightsShape...)
	if err != nil {
		return nil, nil, newInvalidRequest("weights", "%v", err)
	}
	if weights.Rank() != 2 || weights.Dim(1) != x.Width() {
		return nil, nil, newInvalidRequest("weights_shape", "weights shape %v does not match input width %d", weights.Shape(), x.Width())
	}
	if len(req.SigmaMap) != x.Width() {
		return nil, nil, newInvalidRequest("sigma_map", "holds %d entries, need %d", len(req.SigmaMap), x.Width())
	}
	if len(req.SigmaVals) != x.Width() {
		return nil, nil, newInvalidRequest("sigma_vals", "holds %d entries, need %d", len(req.SigmaVals), x.Width())
	}

	numFreqs := weights.Rows()
	rows, cols := x.Rows(), 2*numFreqs
	if err := checkElements("weights_shape", rows, cols, maxElements); err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(req.Kind, KindARDGradient) {
		if req.NumLengthscales > maxElements/max(cols, 1) {
			return nil, nil, newInvalidRequest("num_lengthscales", "gradient of %d x %d x %d values exceeds the limit of %d", rows, cols, req.NumLengthscales, maxElements)
		}
		if err := checkElements("num_lengthscales", rows, cols*req.NumLengthscales, maxElements); err != nil {
			return nil, nil, err
		}
	}
	job := &rbf.ARDJob[T]{
		X:         x,
		Weights:   weights,
		SigmaMap:  req.SigmaMap,
		SigmaVals: req.SigmaVals,
		Out:       tensor.New[float64](rows, cols),
		Params: rbf.ARDParams{
			NumLengthscales: req.NumLengthscales,
			NormConstant:    normConstant(req, numFreqs),
			Threads:         req.Threads,
		},
	}
	res := &Result{Features: job.Out.Data(), FeaturesShape: []int{rows, cols}}
	if strings.EqualFold(req.Kind, KindARDGradient) {
		gcols := cols * req.NumLengthscales
		job.Grad = tensor.New[float64](rows, gcols)
		res.Gradient = job.Grad.Data()
		res.GradientShape = []int{rows, gcols}
	}
	return job, res, nil
}

func buildProjection[T tensor.Float](req *JobRequest, x *tensor.Dense[T]) (backend.Job, *Result, error) {
	job := &sorf.ProjectJob[T]{X: x, Threads: req.Threads}
	if strings.EqualFold(req.Kind, KindSORF) {
		signs, err := signsTensor(req)
		if err != nil {
			return nil, nil, err
		}
		job.Signs = signs
	}
	res := &Result{
		OutputShape: x.Shape(),
		collect: func(r *Result) {
			r.Output = convert[float64](x.Data())
		},
	}
	return job, res, nil
}

// checkElements rejects a rows x cols buffer larger than limit without
// overflowing.
func checkElements(param string, rows, cols, limit int) error {
	if cols > 0 && rows > limit/cols {
		return newInvalidRequest(param, "output of %d x %d values exceeds the limit of %d", rows, cols, limit)
	}
	return nil
}

func signsTensor(req *JobRequest) (*tensor.Dense[int8], error) {
	shape := req.SignsShape
	if len(shape) == 0 {
		if len(req.Signs)%sorf.Rounds != 0 {
			return nil, newInvalidRequest("signs", "%d entries is not a multiple of %d", len(req.Signs), sorf.Rounds)
		}
		shape = []int{sorf.Rounds, len(req.Signs) / sorf.Rounds}
	}
	signs, err := tensor.FromData(req.Signs, shape...)
	if err != nil {
		return nil, newInvalidRequest("signs", "%v", err)
	}
	return signs, nil
}

func normConstant(req *JobRequest, numFreqs int) float64 {
	if req.NormConstant != nil {
		return *req.NormConstant
	}
	return math.Sqrt(1 / float64(numFreqs))
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func convert[U, T tensor.Float](v []T) []U {
	out := make([]U, len(v))
	for i, f := range v {
		out[i] = U(f)
	}
	return out
}
