package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFormats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"save":325`},
		{"text", "save=325"},
		{"pretty", "save=325"},
		{"", "save=325"},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log, err := New(&buf, tc.format, slog.LevelInfo)
			if err != nil {
				t.Fatalf("New(%q): %v", tc.format, err)
			}
			log.Info("decoded save", "save", 325)
			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("expected %s in output, got: %s", tc.want, buf.String())
			}
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := New(&bytes.Buffer{}, "xml", slog.LevelInfo); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}

	log.Warn("save consistency check failed", "field", "save_header.screenshot.size")
	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"field":"save_header.screenshot.size"`) {
		t.Fatalf("unexpected warn output: %s", out)
	}
}

func TestWithAndGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("component", "api").WithGroup("save")
	log.Info("stored", "id", "save_1")

	out := buf.String()
	if !strings.Contains(out, `"component":"api"`) {
		t.Fatalf("expected component attr, got: %s", out)
	}
	if !strings.Contains(out, `"save":{"id":"save_1"}`) {
		t.Fatalf("expected grouped id, got: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("nothing to see")
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), Text(&buf, slog.LevelDebug))
	FromContext(ctx).Debug("roundtrip")
	if !strings.Contains(buf.String(), "roundtrip") {
		t.Fatalf("logger from context did not write, got: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestPrettyHandlerLayout(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &PrettyOptions{Level: slog.LevelDebug})
	slog.New(h).With("file", "Save 325.ess").WithGroup("check").
		Warn("inconsistent", "field", "globals.quick_keys[0]", "offset", 1234)

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Fatalf("color disabled but escape codes written: %q", out)
	}
	for _, want := range []string{
		"WARN  inconsistent",
		`file="Save 325.ess"`,
		"check.field=globals.quick_keys[0]",
		"check.offset=1234",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("record not newline terminated: %q", out)
	}
}

func TestPrettyHandlerColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &PrettyOptions{Color: true})).Error("boom")
	if !strings.Contains(buf.String(), ansiRed) {
		t.Fatalf("expected red level, got %q", buf.String())
	}
}

func TestPrettyHandlerLevel(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug enabled at default level")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info disabled at default level")
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"a=b", true},
		{"", false},
		{"Café", false},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
