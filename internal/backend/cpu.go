package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samcharles93/sorf/internal/logger"
)

const cudaEnabled = false

// ErrCUDAUnavailable is returned when the cuda backend is requested.
var ErrCUDAUnavailable = errors.New("cuda backend not implemented in this build")

func newCUDA() (Backend, error) {
	return nil, ErrCUDAUnavailable
}

type cpuBackend struct {
	threads int
	log     logger.Logger
}

func newCPU(threads int, log logger.Logger) *cpuBackend {
	return &cpuBackend{threads: threads, log: log}
}

func (b *cpuBackend) Name() string {
	return CPU
}

// Execute validates and runs job with the backend's thread count. The
// context is only checked before the job starts; kernels are not
// interruptible.
func (b *cpuBackend) Execute(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%s: %w", job.Name(), err)
	}

	start := time.Now()
	if err := job.Run(b.threads); err != nil {
		b.log.Error("job failed", "job", job.Name(), "rows", job.Rows(), "error", err)
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	b.log.Debug("job done",
		"job", job.Name(),
		"rows", job.Rows(),
		"threads", b.threads,
		"duration", time.Since(start),
	)
	return nil
}
