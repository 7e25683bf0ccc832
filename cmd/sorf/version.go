package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sorf/internal/backend"
	"github.com/samcharles93/sorf/internal/version"
)

type versionReport struct {
	version.Info
	Backends []string `json:"backends"`
}

func newVersionReport() versionReport {
	return versionReport{
		Info:     version.Resolve(),
		Backends: strings.Split(backend.Available(), ","),
	}
}

func (r versionReport) writeText(w io.Writer) {
	_, _ = fmt.Fprintf(w, "sorf %s\n", r.Info)
	if r.BuildTime != "" {
		_, _ = fmt.Fprintf(w, "built:    %s\n", r.BuildTime)
	}
	_, _ = fmt.Fprintf(w, "go:       %s %s\n", r.GoVersion, r.Platform)
	cgo := "off"
	if r.CGO {
		cgo = "on"
	}
	_, _ = fmt.Fprintf(w, "cgo:      %s\n", cgo)
	if r.Tags != "" {
		_, _ = fmt.Fprintf(w, "tags:     %s\n", r.Tags)
	}
	_, _ = fmt.Fprintf(w, "backends: %s\n", strings.Join(r.Backends, ", "))
}

func versionCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "version",
		Usage: "Print version, build and backend information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report := newVersionReport()
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(report)
			}
			report.writeText(os.Stdout)
			return nil
		},
	}
}
