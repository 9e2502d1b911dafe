package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/esstool/internal/logger"
	"github.com/samcharles93/esstool/pkg/ess"
)

func screenshotCmd() *cli.Command {
	var out string

	return &cli.Command{
		Name:      "screenshot",
		Usage:     "Export the embedded screenshot as PNG",
		ArgsUsage: "<save>",
		Flags: append(decodeFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path (default: <save>.png next to the save)",
				Destination: &out,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			savePath, p, err := previewSave(ctx, cmd)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = screenshotPath(savePath)
			}
			if err := writeScreenshot(path, p.SaveGameHeader.Screenshot); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			logger.FromContext(ctx).Info("wrote screenshot", "path", path)
			return nil
		},
	}
}

func screenshotPath(savePath string) string {
	base := filepath.Base(savePath)
	lower := strings.ToLower(base)
	for _, ext := range saveExts {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return filepath.Join(filepath.Dir(savePath), base+".png")
}

func writeScreenshot(path string, shot ess.Screenshot) (err error) {
	if shot.Width == 0 || shot.Height == 0 {
		return errors.New("save has no screenshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, shot.Image())
}
