package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sorf/internal/logger"
)

var (
	backendName string
	threads     int
	configFile  string
	logLevel    string
	logFormat   string
	debug       bool
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "execution backend (auto, cpu, cuda)",
			Value:       "auto",
			Sources:     cli.EnvVars("SORF_BACKEND"),
			Destination: &backendName,
		},
		&cli.IntFlag{
			Name:        "threads",
			Aliases:     []string{"t"},
			Usage:       "worker threads per job (0 = one per CPU)",
			Sources:     cli.EnvVars("SORF_THREADS"),
			Destination: &threads,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setup is the Before hook of every job-running command: it overlays the
// config file onto unset flags and puts the configured logger into ctx.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 2)
	}
	applyGlobalConfig(cmd, cfg)
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	log, err := logger.Setup(os.Stderr, logFormat, logLevel, debug)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 2)
	}
	if cfg.path != "" {
		log.Debug("loaded config", "path", cfg.path)
	}
	return logger.WithContext(ctx, log), nil
}
