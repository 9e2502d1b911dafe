package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/esstool/internal/logger"
	"github.com/samcharles93/esstool/pkg/ess"
)

var (
	logLevel  string
	logFormat string
	debug     bool
	strict    bool
	jsonOut   bool
	savesDir  string

	// cfg is loaded once by setupLogging.
	cfg Config

	// stdout is a seam for tests.
	stdout io.Writer = os.Stdout
)

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

func decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "fail on consistency check violations instead of warning",
			Destination: &strict,
		},
		&cli.StringFlag{
			Name:        "saves-dir",
			Usage:       "directory searched for bare save names (default $" + envSavesDir + ")",
			Destination: &savesDir,
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print JSON instead of text",
			Destination: &jsonOut,
		},
	}
}

// setupLogging is the root Before hook: it loads the config file and
// installs the logger into the context.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	loaded, err := LoadConfig(configPath())
	if err != nil {
		return ctx, err
	}
	cfg = loaded
	applyLoggingConfig(cmd, cfg)

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return ctx, err
	}
	if debug {
		level, _ = logger.ParseLevel("debug")
	}
	log, err := logger.New(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}

// newDecoder builds a decoder from the decode flags of cmd.
func newDecoder(ctx context.Context, cmd *cli.Command) *ess.Decoder {
	applyDecodeConfig(cmd, cfg)
	return ess.NewDecoder(
		ess.WithLogger(logger.FromContext(ctx)),
		ess.WithStrict(strict),
	)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", cli.Exit(fmt.Sprintf("error: %s takes exactly one <%s> argument", cmd.Name, name), 2)
	}
	return cmd.Args().First(), nil
}
