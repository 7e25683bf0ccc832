// Package api exposes feature jobs over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/sorf/internal/backend"
	"github.com/samcharles93/sorf/internal/logger"
	"github.com/samcharles93/sorf/internal/parallel"
	"github.com/samcharles93/sorf/internal/version"
)

type ServerOptions struct {
	// RPS limits job submissions per second; zero or less disables the
	// limit.
	RPS   float64
	Burst int
	// MaxElements bounds each output buffer of a job; zero or less selects
	// DefaultMaxElements.
	MaxElements int
	Log         logger.Logger
}

type Server struct {
	backend     backend.Backend
	store       *JobStore
	limiter     *rate.Limiter
	maxElements int
	log         logger.Logger
}

func NewServer(b backend.Backend, store *JobStore, opts ServerOptions) *Server {
	if store == nil {
		store = NewJobStore(DefaultStoreSize)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), max(opts.Burst, 1))
	}
	if opts.Log == nil {
		opts.Log = logger.Default()
	}
	return &Server{
		backend:     b,
		store:       store,
		limiter:     limiter,
		maxElements: opts.MaxElements,
		log:         opts.Log,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/jobs", s.handleCreateJob)
	e.GET("/v1/jobs/:id", s.handleGetJob)
	e.DELETE("/v1/jobs/:id", s.handleDeleteJob)
	e.GET("/v1/backends", s.handleBackends)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleCreateJob(c *echo.Context) error {
	if s.backend == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "backend not configured", "", "")
	}
	if !s.limiter.Allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "job submission rate exceeded", "", "")
	}
	req, err := DecodeRequest(c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "", err.Error())
	}

	ctx := logger.WithContext(c.Request().Context(), s.log)
	resp, err := RunJob(ctx, s.backend, req, s.maxElements)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return writeBadRequest(c, invalidParam(err), err.Error())
		}
		code := "error"
		if kind := parallel.KindOf(err); kind != 0 {
			code = kind.String()
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", code)
	}
	s.store.Save(resp)
	return c.JSON(http.StatusOK, resp)
}

// RunJob builds req, executes it on b and wraps the outputs in a response.
// maxElements bounds each output buffer as in BuildJobLimit. Failures of
// the kernel are logged and returned unchanged.
func RunJob(ctx context.Context, b backend.Backend, req *JobRequest, maxElements int) (JobResponse, error) {
	job, result, err := BuildJobLimit(req, maxElements)
	if err != nil {
		return JobResponse{}, err
	}

	start := time.Now()
	if err := b.Execute(ctx, job); err != nil {
		logger.FromContext(ctx).Warn("job failed", "kind", job.Name(), "error", err)
		return JobResponse{}, err
	}
	result.Collect()

	return JobResponse{
		ID:         newJobID(),
		Object:     "job",
		CreatedAt:  start.Unix(),
		Kind:       job.Name(),
		Precision:  normalizePrecision(req.Precision),
		Status:     StatusOK,
		Backend:    b.Name(),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		Result:     result,
	}, nil
}

func (s *Server) handleGetJob(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return writeNotFound(c, "job not found")
	}
	resp, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "job not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteJob(c *echo.Context) error {
	id := c.Param("id")
	if id == "" || !s.store.Delete(id) {
		return writeNotFound(c, "job not found")
	}
	return c.JSON(http.StatusOK, DeleteJobResp{
		ID:      id,
		Object:  "job",
		Deleted: true,
	})
}

func (s *Server) handleBackends(c *echo.Context) error {
	list := BackendList{Object: "list"}
	if s.backend != nil {
		list.Default = s.backend.Name()
	}
	for _, name := range []string{backend.CPU, backend.CUDA} {
		list.Data = append(list.Data, BackendInfo{ID: name, Available: backend.Has(name)})
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}
