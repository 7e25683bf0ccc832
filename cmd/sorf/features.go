package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sorf/internal/api"
	"github.com/samcharles93/sorf/internal/backend"
	"github.com/samcharles93/sorf/internal/logger"
)

func featuresCmd() *cli.Command {
	var (
		input  string
		output string
	)

	return &cli.Command{
		Name:      "features",
		Aliases:   []string{"run"},
		Usage:     "Run one feature, gradient or projection job from a JSON request",
		ArgsUsage: "[--input req.json]",
		Before:    setup,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "request file (- for stdin)",
				Value:       "-",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "response file (- for stdout)",
				Value:       "-",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			req, err := readRequest(input)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			b, err := backend.New(backendName, threads, log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: backend: %v", err), 1)
			}

			resp, err := api.RunJob(ctx, b, req, 0)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("job complete", "kind", resp.Kind, "duration", time.Duration(resp.DurationMS*float64(time.Millisecond)))
			return writeResponse(output, resp)
		},
	}
}

func readRequest(path string) (*api.JobRequest, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open request: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	req, err := api.DecodeRequest(r)
	if err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func writeResponse(path string, resp api.JobResponse) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
