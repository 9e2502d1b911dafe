package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("missing file gave %+v", cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	data := []byte(`saves_dir: /games/saves
strict: true
log_level: debug
log_format: json
server_address: 0.0.0.0:9000
rate_limit: 0.5
rate_burst: 3
max_upload_bytes: 1048576
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SavesDir != "/games/saves" || cfg.Strict == nil || !*cfg.Strict {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.ServerAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if *cfg.RateLimit != 0.5 || *cfg.RateBurst != 3 || *cfg.MaxUploadBytes != 1<<20 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("strict: [not a bool"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestConfigPathEnvOverride(t *testing.T) {
	t.Setenv(envConfigPath, "/etc/esstool.yaml")
	if got := configPath(); got != "/etc/esstool.yaml" {
		t.Fatalf("configPath() = %q", got)
	}
}

// runDecodeFlags parses args against the decode flags and applies c.
func runDecodeFlags(t *testing.T, c Config, args ...string) {
	t.Helper()
	strict, savesDir = false, ""
	cmd := &cli.Command{
		Name:  "test",
		Flags: decodeFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyDecodeConfig(cmd, c)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestApplyDecodeConfig(t *testing.T) {
	on := true
	c := Config{Strict: &on, SavesDir: "/from/config"}

	runDecodeFlags(t, c)
	if !strict || savesDir != "/from/config" {
		t.Fatalf("config not applied: strict=%v savesDir=%q", strict, savesDir)
	}

	runDecodeFlags(t, c, "--strict=false", "--saves-dir", "/from/flag")
	if strict || savesDir != "/from/flag" {
		t.Fatalf("flags overridden by config: strict=%v savesDir=%q", strict, savesDir)
	}
}

func TestApplyServeConfig(t *testing.T) {
	var (
		addr      = "127.0.0.1:8080"
		rateLimit = 2.0
		rateBurst = int64(10)
		maxUpload = int64(1)
	)
	limit, burst, upload := 0.25, int64(4), int64(2048)
	c := Config{ServerAddress: ":9999", RateLimit: &limit, RateBurst: &burst, MaxUploadBytes: &upload}

	cmd := &cli.Command{
		Name:  "serve",
		Flags: serveCmd().Flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, c, &addr, &rateLimit, &rateBurst, &maxUpload)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"serve", "--rate-burst", "7"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if addr != ":9999" || rateLimit != 0.25 || maxUpload != 2048 {
		t.Fatalf("config not applied: addr=%q rate=%v upload=%d", addr, rateLimit, maxUpload)
	}
	// --rate-burst was set on the command line, so the config value is ignored.
	if rateBurst != 10 {
		t.Fatalf("explicit flag overridden: burst=%d", rateBurst)
	}
}
