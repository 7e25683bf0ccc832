// Package backend selects the executor that runs feature jobs.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/samcharles93/sorf/internal/logger"
)

const (
	CPU  = "cpu"
	CUDA = "cuda"
	Auto = "auto"
)

// Job is one validated unit of work: a feature, gradient or projection call
// over a batch of rows.
type Job interface {
	Name() string
	Rows() int
	Validate() error
	Run(threads int) error
}

type Backend interface {
	Name() string
	Execute(ctx context.Context, job Job) error
}

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case CPU, CUDA, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, or cuda)", backend)
	}
}

// New returns the backend for name. Auto resolves to the best available
// backend; asking for an unavailable one is an error.
func New(name string, threads int, log logger.Logger) (Backend, error) {
	name, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	switch name {
	case CUDA:
		return newCUDA()
	case Auto:
		if Has(CUDA) {
			return newCUDA()
		}
	}
	return newCPU(threads, log), nil
}
