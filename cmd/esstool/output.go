package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/samcharles93/esstool/pkg/ess"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatSystemTime(st ess.SystemTime) string {
	if t, ok := st.Time(time.UTC); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return st.String() + " (invalid)"
}

func printFileHeader(w io.Writer, fh ess.FileHeader) {
	_, _ = fmt.Fprintf(w, "Format:     %s v%d.%d\n", fh.FileID, fh.MajorVersion, fh.MinorVersion)
	if fh.ExeTime != nil {
		_, _ = fmt.Fprintf(w, "Exe time:   %s\n", formatSystemTime(*fh.ExeTime))
	}
}

func printSaveHeader(w io.Writer, h ess.SaveGameHeader) {
	_, _ = fmt.Fprintf(w, "Save:       #%d\n", h.SaveNumber)
	_, _ = fmt.Fprintf(w, "Player:     %s (level %d)\n", h.PlayerName, h.PlayerLevel)
	_, _ = fmt.Fprintf(w, "Cell:       %s\n", h.Cell)
	_, _ = fmt.Fprintf(w, "Game time:  %s, day %.2f, %d ticks\n", formatSystemTime(h.GameTime), h.GameDays, h.GameTicks)
	_, _ = fmt.Fprintf(w, "Screenshot: %dx%d\n", h.Screenshot.Width, h.Screenshot.Height)
}

func printDiagnostics(w io.Writer, diags []ess.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\nDiagnostics (%d)\n", len(diags))
	for _, d := range diags {
		_, _ = fmt.Fprintf(w, "  %s\n", d)
	}
}

func printPlugins(w io.Writer, plugins []string) {
	for i, p := range plugins {
		_, _ = fmt.Fprintf(w, "%02X  %s\n", i, p)
	}
}

func printGlobals(w io.Writer, g ess.GlobalSection) {
	loc := g.PlayerLocation
	_, _ = fmt.Fprintf(w, "Records:        %s\n", g.RecordsNum)
	_, _ = fmt.Fprintf(w, "Next object:    %s\n", g.NextObjectID)
	_, _ = fmt.Fprintf(w, "World:          %s (%d, %d)\n", g.WorldID, int32(g.WorldX), int32(g.WorldY))
	_, _ = fmt.Fprintf(w, "Player cell:    %s at (%.2f, %.2f, %.2f)\n", loc.Cell, loc.X, loc.Y, loc.Z)
	_, _ = fmt.Fprintf(w, "Game mode:      %s\n", time.Duration(float64(g.GameModeSecs)*float64(time.Second)).Round(time.Second))
	_, _ = fmt.Fprintf(w, "Combat actors:  %d\n", g.PlayerCombatCount)
	_, _ = fmt.Fprintf(w, "Created items:  %d\n", len(g.CreatedItems))
	_, _ = fmt.Fprintf(w, "Opaque blobs:   processes=%s spectator=%s weather=%s reticule=%s interface=%s\n",
		formatBytes(int64(len(g.Processes))), formatBytes(int64(len(g.SpectatorEvents))),
		formatBytes(int64(len(g.Weather))), formatBytes(int64(len(g.Reticule))), formatBytes(int64(len(g.Interface))))

	_, _ = fmt.Fprintf(w, "\nGlobals (%d)\n", len(g.Globals))
	for _, v := range g.Globals {
		_, _ = fmt.Fprintf(w, "  %s = %g\n", v.IRef, v.Value)
	}
	_, _ = fmt.Fprintf(w, "\nDeath counts (%d)\n", len(g.DeathCounts))
	for _, d := range g.DeathCounts {
		_, _ = fmt.Fprintf(w, "  %s x%d\n", d.Actor, d.Count)
	}
	_, _ = fmt.Fprintf(w, "\nQuick keys\n")
	for i, k := range g.QuickKeys {
		slot := "-"
		if k != nil {
			slot = k.String()
		}
		_, _ = fmt.Fprintf(w, "  %d: %s\n", i+1, slot)
	}
	_, _ = fmt.Fprintf(w, "\nRegions (%d)\n", len(g.Regions))
	for _, r := range g.Regions {
		_, _ = fmt.Fprintf(w, "  %s = %d\n", r.IRef, r.Value)
	}
}

// truncate shortens s to n runes for table columns.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
