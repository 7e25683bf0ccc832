package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sorf/internal/api"
	"github.com/samcharles93/sorf/internal/backend"
	"github.com/samcharles93/sorf/internal/logger"
	"github.com/samcharles93/sorf/internal/parallel"
	"github.com/samcharles93/sorf/internal/rbf"
	"github.com/samcharles93/sorf/internal/sample"
	"github.com/samcharles93/sorf/internal/sorf"
	"github.com/samcharles93/sorf/internal/tensor"
)

type benchConfig struct {
	kind      string
	rows      int
	records   int
	width     int
	freqs     int
	scales    int
	precision string
	seed      uint64
}

func (c benchConfig) shape() []int {
	if c.records > 0 {
		return []int{c.rows, c.records, c.width}
	}
	return []int{c.rows, c.width}
}

func benchCmd() *cli.Command {
	var (
		cfg        benchConfig
		warmupRuns int64
		benchRuns  int64
	)

	return &cli.Command{
		Name:   "bench",
		Usage:  "Benchmark a kernel on random inputs",
		Before: setup,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Usage:       "job kind (rbf_features, rbf_gradient, ard_features, ard_gradient, sorf, hadamard)",
				Value:       api.KindRBFFeatures,
				Destination: &cfg.kind,
			},
			&cli.IntFlag{
				Name:        "rows",
				Aliases:     []string{"n"},
				Usage:       "number of samples",
				Value:       4096,
				Destination: &cfg.rows,
			},
			&cli.IntFlag{
				Name:        "records",
				Usage:       "records per sample for graph input (0 for 2D input)",
				Destination: &cfg.records,
			},
			&cli.IntFlag{
				Name:        "width",
				Aliases:     []string{"d"},
				Usage:       "input width (power of two for sorf kinds)",
				Value:       128,
				Destination: &cfg.width,
			},
			&cli.IntFlag{
				Name:        "freqs",
				Aliases:     []string{"f"},
				Usage:       "number of random frequencies",
				Value:       1024,
				Destination: &cfg.freqs,
			},
			&cli.IntFlag{
				Name:        "lengthscales",
				Usage:       "ARD lengthscale groups",
				Value:       4,
				Destination: &cfg.scales,
			},
			&cli.StringFlag{
				Name:        "precision",
				Usage:       "input precision (float32, float64)",
				Value:       api.PrecisionFloat64,
				Destination: &cfg.precision,
			},
			&cli.Uint64Flag{
				Name:        "seed",
				Usage:       "random seed",
				Value:       42,
				Destination: &cfg.seed,
			},
			&cli.Int64Flag{
				Name:        "warmup",
				Usage:       "number of warmup runs",
				Value:       1,
				Destination: &warmupRuns,
			},
			&cli.Int64Flag{
				Name:        "runs",
				Usage:       "number of benchmark runs",
				Value:       5,
				Destination: &benchRuns,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			fileCfg, err := LoadConfig(configFile)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			applyBenchConfig(cmd, fileCfg, &cfg.precision, &cfg.seed)

			b, err := backend.New(backendName, threads, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: backend: %v", err), 1)
			}

			var job backend.Job
			switch cfg.precision {
			case api.PrecisionFloat32:
				job, err = newBenchJob[float32](cfg)
			case api.PrecisionFloat64:
				job, err = newBenchJob[float64](cfg)
			default:
				err = fmt.Errorf("unknown precision %q", cfg.precision)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			fmt.Println("=== sorf benchmark ===")
			fmt.Printf("Kind:       %s (%s)\n", job.Name(), cfg.precision)
			fmt.Printf("Shape:      %v\n", cfg.shape())
			fmt.Printf("Freqs:      %d\n", cfg.freqs)
			fmt.Printf("Backend:    %s\n", b.Name())
			fmt.Printf("Threads:    %d\n", parallel.Workers(threads, cfg.rows))
			fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
			fmt.Printf("Warmup:     %d runs\n", warmupRuns)
			fmt.Printf("Runs:       %d\n", benchRuns)
			fmt.Println()

			for i := range int(warmupRuns) {
				log.Debug("warmup run", "run", i+1)
				if err := b.Execute(ctx, job); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup run %d: %v", i+1, err), 1)
				}
			}

			rates := make([]float64, 0, benchRuns)
			fmt.Printf("%-6s %12s %12s\n", "Run", "Duration", "Rows/s")
			for i := range int(benchRuns) {
				start := time.Now()
				if err := b.Execute(ctx, job); err != nil {
					return cli.Exit(fmt.Sprintf("error: benchmark run %d: %v", i+1, err), 1)
				}
				d := time.Since(start)
				rate := float64(job.Rows()) / d.Seconds()
				rates = append(rates, rate)
				fmt.Printf("%-6d %12s %12.0f\n", i+1, d.Round(time.Microsecond), rate)
			}

			st := sample.Summarize(rates)
			fmt.Printf("\nRows/s: min %.0f  mean %.0f  max %.0f\n", st.Min, st.Mean, st.Max)

			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			fmt.Printf("Memory: %.1f MB alloc, %.1f MB sys", float64(ms.Alloc)/(1024*1024), float64(ms.Sys)/(1024*1024))
			if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
				fmt.Printf(", host %.1f%% used of %.1f GB", vm.UsedPercent, float64(vm.Total)/(1024*1024*1024))
			}
			fmt.Println()
			return nil
		},
	}
}

func newBenchJob[T tensor.Float](c benchConfig) (backend.Job, error) {
	if c.rows <= 0 || c.width <= 0 || c.records < 0 {
		return nil, fmt.Errorf("rows and width must be positive")
	}
	s := sample.New(c.seed)
	x := tensor.Convert[T](s.Input(1, c.shape()...))

	switch c.kind {
	case api.KindRBFFeatures, api.KindRBFGradient:
		job := &rbf.FeatureJob[T]{
			X:     x,
			Buf:   tensor.New[T](x.Shape()...),
			Signs: s.Signs(c.freqs, c.width),
			Chi:   sample.As[T](s.Chi(c.freqs, c.width)),
			Out:   tensor.New[float64](c.rows, 2*c.freqs),
			Params: rbf.Params{
				NumFreqs:     c.freqs,
				NormConstant: sample.NormConstant(1, c.freqs),
				Sigma:        1,
			},
		}
		if c.kind == api.KindRBFGradient {
			job.Grad = tensor.New[float64](c.rows, 2*c.freqs)
		}
		return job, job.Validate()

	case api.KindARDFeatures, api.KindARDGradient:
		if c.scales <= 0 {
			return nil, fmt.Errorf("lengthscales must be positive")
		}
		sigmaMap := make([]int32, c.width)
		sigmaVals := make([]float64, c.width)
		for m := range sigmaMap {
			sigmaMap[m] = int32(m % c.scales)
			sigmaVals[m] = 1
		}
		job := &rbf.ARDJob[T]{
			X:         x,
			Weights:   tensor.Convert[T](s.Weights(c.freqs, c.width)),
			SigmaMap:  sigmaMap,
			SigmaVals: sigmaVals,
			Out:       tensor.New[float64](c.rows, 2*c.freqs),
			Params: rbf.ARDParams{
				NumLengthscales: c.scales,
				NormConstant:    sample.NormConstant(1, c.freqs),
			},
		}
		if c.kind == api.KindARDGradient {
			job.Grad = tensor.New[float64](c.rows, 2*c.freqs*c.scales)
		}
		return job, job.Validate()

	case api.KindSORF:
		job := &sorf.ProjectJob[T]{X: x, Dst: tensor.New[T](x.Shape()...), Signs: s.FullSigns(x.Shape()[1:]...)}
		return job, job.Validate()

	case api.KindHadamard:
		job := &sorf.ProjectJob[T]{X: x}
		return job, job.Validate()

	default:
		return nil, fmt.Errorf("unknown job kind %q", c.kind)
	}
}
