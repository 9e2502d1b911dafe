package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/esstool/internal/api"
	"github.com/samcharles93/esstool/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		rateLimit   float64
		rateBurst   int64
		maxUpload   int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the save inspection REST API",
		Flags: append(decodeFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Float64Flag{
				Name:        "rate-limit",
				Usage:       "uploads per second per client (0 = unlimited)",
				Value:       2,
				Destination: &rateLimit,
			},
			&cli.Int64Flag{
				Name:        "rate-burst",
				Usage:       "upload burst per client",
				Value:       10,
				Destination: &rateBurst,
			},
			&cli.Int64Flag{
				Name:        "max-upload-bytes",
				Usage:       "largest accepted save upload",
				Value:       api.DefaultMaxUploadBytes,
				Destination: &maxUpload,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, cfg, &addr, &rateLimit, &rateBurst, &maxUpload)
			log := logger.FromContext(ctx)

			server := api.NewServer(api.NewSaveStore(), api.Config{
				Decoder:        newDecoder(ctx, cmd),
				Logger:         log.With("component", "api"),
				MaxUploadBytes: maxUpload,
				UploadLimiter:  api.NewRateLimiter(rateLimit, int(rateBurst)),
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "strict", strict, "rate_limit", rateLimit)
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
