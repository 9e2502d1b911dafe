package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/esstool/internal/logger"
	"github.com/samcharles93/esstool/pkg/ess"
)

// openSave resolves the single save argument of cmd and decodes it.
func openSave(ctx context.Context, cmd *cli.Command) (*ess.File, error) {
	arg, err := requireArg(cmd, "save")
	if err != nil {
		return nil, err
	}
	dec := newDecoder(ctx, cmd)
	path, err := resolveSavePath(arg, savesDir)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	logger.FromContext(ctx).Debug("decoding save", "path", path, "strict", strict)
	f, err := dec.Open(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("error: decode %s: %v", path, err), 1)
	}
	return f, nil
}

// previewSave is openSave for commands that only need the headers and the
// plugin list. It succeeds on saves whose later sections cannot be decoded.
func previewSave(ctx context.Context, cmd *cli.Command) (string, *ess.Preview, error) {
	arg, err := requireArg(cmd, "save")
	if err != nil {
		return "", nil, err
	}
	dec := newDecoder(ctx, cmd)
	path, err := resolveSavePath(arg, savesDir)
	if err != nil {
		return "", nil, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	logger.FromContext(ctx).Debug("decoding save preview", "path", path, "strict", strict)
	p, err := dec.PreviewFile(path)
	if err != nil {
		return "", nil, cli.Exit(fmt.Sprintf("error: decode %s: %v", path, err), 1)
	}
	return path, p, nil
}

func saveCommandFlags() []cli.Flag {
	return slices.Concat(decodeFlags(), outputFlags())
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarise a save game",
		ArgsUsage: "<save>",
		Flags:     saveCommandFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := openSave(ctx, cmd)
			if err != nil {
				return err
			}
			w := stdout
			if jsonOut {
				return writeJSON(w, f)
			}
			printInspect(w, f)
			return nil
		},
	}
}

func printInspect(w io.Writer, f *ess.File) {
	s := f.Save
	_, _ = fmt.Fprintf(w, "Save Inspect: %s\n", f.Path)
	_, _ = fmt.Fprintf(w, "File:       %s (%s, fingerprint %016x)\n", filepath.Base(f.Path), formatBytes(f.Size), f.Fingerprint)
	printFileHeader(w, s.FileHeader)
	printSaveHeader(w, s.SaveGameHeader)
	_, _ = fmt.Fprintf(w, "Plugins:    %d\n", len(s.Plugins))
	_, _ = fmt.Fprintf(w, "Globals:    %d variables, %d death counts, %d regions\n",
		len(s.Globals.Globals), len(s.Globals.DeathCounts), len(s.Globals.Regions))
	printDiagnostics(w, s.Diagnostics)
}

func pluginsCmd() *cli.Command {
	return &cli.Command{
		Name:      "plugins",
		Usage:     "List the plugins a save was made with, in load order",
		ArgsUsage: "<save>",
		Flags:     saveCommandFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, p, err := previewSave(ctx, cmd)
			if err != nil {
				return err
			}
			w := stdout
			if jsonOut {
				return writeJSON(w, p.Plugins)
			}
			printPlugins(w, p.Plugins)
			return nil
		},
	}
}

func globalsCmd() *cli.Command {
	return &cli.Command{
		Name:      "globals",
		Usage:     "Print the globals section of a save",
		ArgsUsage: "<save>",
		Flags:     saveCommandFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := openSave(ctx, cmd)
			if err != nil {
				return err
			}
			w := stdout
			if jsonOut {
				return writeJSON(w, f.Save.Globals)
			}
			printGlobals(w, f.Save.Globals)
			return nil
		},
	}
}
