package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/esstool/internal/logger"
	"github.com/samcharles93/esstool/pkg/ess"
)

type listEntry struct {
	Path    string       `json:"path"`
	Preview *ess.Preview `json:"preview,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func listCmd() *cli.Command {
	var jobs int64

	return &cli.Command{
		Name:      "list",
		Usage:     "List the saves in a directory",
		ArgsUsage: "[dir]",
		Flags: append(saveCommandFlags(),
			&cli.Int64Flag{
				Name:        "jobs",
				Aliases:     []string{"j"},
				Usage:       "saves decoded in parallel",
				Value:       int64(runtime.NumCPU()),
				Destination: &jobs,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			dec := newDecoder(ctx, cmd)

			dir := cmd.Args().First()
			if dir == "" {
				var err error
				if dir, err = resolveSavesDir(savesDir); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}
			paths, err := discoverSaves(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Debug("scanning saves", "dir", dir, "count", len(paths), "jobs", jobs)

			entries := scanSaves(ctx, dec, paths, int(jobs))
			for _, e := range entries {
				if e.Error != "" {
					log.Warn("skipping unreadable save", "path", e.Path, "error", e.Error)
				}
			}
			w := stdout
			if jsonOut {
				return writeJSON(w, entries)
			}
			printList(w, entries)
			return nil
		},
	}
}

// scanSaves previews every path with at most jobs decodes in flight. The
// result is ordered by save number, with unreadable saves last.
func scanSaves(ctx context.Context, dec *ess.Decoder, paths []string, jobs int) []listEntry {
	jobs = max(1, min(jobs, len(paths)))
	entries := make([]listEntry, len(paths))

	work := make(chan int)
	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				entries[i].Path = paths[i]
				if err := ctx.Err(); err != nil {
					entries[i].Error = err.Error()
					continue
				}
				p, err := dec.PreviewFile(paths[i])
				if err != nil {
					entries[i].Error = err.Error()
					continue
				}
				entries[i].Preview = p
			}
		}()
	}
	for i := range paths {
		work <- i
	}
	close(work)
	wg.Wait()

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Preview, entries[j].Preview
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case a.SaveGameHeader.SaveNumber != b.SaveGameHeader.SaveNumber:
			return a.SaveGameHeader.SaveNumber < b.SaveGameHeader.SaveNumber
		default:
			return entries[i].Path < entries[j].Path
		}
	})
	return entries
}

func printList(w io.Writer, entries []listEntry) {
	_, _ = fmt.Fprintf(w, "%-6s %-20s %5s %-32s %-19s %7s  %s\n", "Save", "Player", "Level", "Cell", "Saved", "Plugins", "File")
	for _, e := range entries {
		name := filepath.Base(e.Path)
		if e.Preview == nil {
			_, _ = fmt.Fprintf(w, "%-6s %-20s %5s %-32s %-19s %7s  %s (%s)\n", "?", "", "", "", "", "", name, e.Error)
			continue
		}
		h := e.Preview.SaveGameHeader
		_, _ = fmt.Fprintf(w, "%-6d %-20s %5d %-32s %-19s %7d  %s\n",
			h.SaveNumber, truncate(h.PlayerName, 20), h.PlayerLevel, truncate(h.Cell, 32),
			formatSystemTime(h.GameTime), len(e.Preview.Plugins), name)
	}
}
