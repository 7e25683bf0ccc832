package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sorf/internal/api"
	"github.com/samcharles93/sorf/internal/backend"
	"github.com/samcharles93/sorf/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		rps         float64
		burst       int
		storeSize   int
		maxElements int
	)

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the feature job REST API",
		Before: setup,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Float64Flag{
				Name:        "rps",
				Usage:       "job submissions per second (0 = unlimited)",
				Destination: &rps,
			},
			&cli.IntFlag{
				Name:        "burst",
				Usage:       "job submission burst size",
				Value:       4,
				Destination: &burst,
			},
			&cli.IntFlag{
				Name:        "store-size",
				Usage:       "completed jobs kept for GET /v1/jobs/:id",
				Value:       api.DefaultStoreSize,
				Destination: &storeSize,
			},
			&cli.IntFlag{
				Name:        "max-elements",
				Usage:       "largest output buffer a single job may allocate, in values",
				Value:       api.DefaultMaxElements,
				Destination: &maxElements,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			applyServeConfig(cmd, cfg, &addr, &rps)

			b, err := backend.New(backendName, threads, log.With("component", "backend"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: backend: %v", err), 1)
			}
			server := api.NewServer(b, api.NewJobStore(storeSize), api.ServerOptions{
				RPS:         rps,
				Burst:       burst,
				MaxElements: maxElements,
				Log:         log.With("component", "api"),
			})

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "backend", b.Name(), "rps", rps)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
