package api

// Job kinds accepted by BuildJob.
const (
	KindRBFFeatures = "rbf_features"
	KindRBFGradient = "rbf_gradient"
	KindARDFeatures = "ard_features"
	KindARDGradient = "ard_gradient"
	KindSORF        = "sorf"
	KindHadamard    = "hadamard"
)

const (
	PrecisionFloat32 = "float32"
	PrecisionFloat64 = "float64"
)

// StatusOK is the status of a job that completed without error.
const StatusOK = "no_error"

// JobRequest describes one feature, gradient or projection call. Tensors
// are passed flat in row-major order together with their shape.
type JobRequest struct {
	Kind      string    `json:"kind"`
	Precision string    `json:"precision,omitempty"`
	X         []float64 `json:"x"`
	Shape     []int     `json:"shape"`

	// Rademacher signs: (3, R·W) for RBF jobs, (3, row shape...) for sorf.
	Signs      []int8    `json:"signs,omitempty"`
	SignsShape []int     `json:"signs_shape,omitempty"`
	Chi        []float64 `json:"chi,omitempty"`

	Weights         []float64 `json:"weights,omitempty"`
	WeightsShape    []int     `json:"weights_shape,omitempty"`
	SigmaMap        []int32   `json:"sigma_map,omitempty"`
	SigmaVals       []float64 `json:"sigma_vals,omitempty"`
	NumLengthscales int       `json:"num_lengthscales,omitempty"`

	NumFreqs     int      `json:"num_freqs,omitempty"`
	NormConstant *float64 `json:"norm_constant,omitempty"`
	Sigma        *float64 `json:"sigma,omitempty"`
	SeqLengths   []int32  `json:"seq_lengths,omitempty"`
	Averaging    string   `json:"averaging,omitempty"`
	Threads      int      `json:"threads,omitempty"`
}

// Result holds the outputs of a job. Feature and gradient buffers are
// always float64.
type Result struct {
	Features      []float64 `json:"features,omitempty"`
	FeaturesShape []int     `json:"features_shape,omitempty"`
	Gradient      []float64 `json:"gradient,omitempty"`
	GradientShape []int     `json:"gradient_shape,omitempty"`
	Output        []float64 `json:"output,omitempty"`
	OutputShape   []int     `json:"output_shape,omitempty"`

	collect func(*Result)
}

// Collect copies outputs that are not shared with the job's buffers. Call
// it once the job has run.
func (r *Result) Collect() {
	if r.collect != nil {
		r.collect(r)
		r.collect = nil
	}
}

type JobResponse struct {
	ID         string  `json:"id"`
	Object     string  `json:"object"`
	CreatedAt  int64   `json:"created_at"`
	Kind       string  `json:"kind"`
	Precision  string  `json:"precision"`
	Status     string  `json:"status"`
	Backend    string  `json:"backend"`
	DurationMS float64 `json:"duration_ms"`
	Result     *Result `json:"result,omitempty"`
}

type DeleteJobResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type BackendInfo struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`
}

type BackendList struct {
	Object  string        `json:"object"`
	Default string        `json:"default"`
	Data    []BackendInfo `json:"data"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}
