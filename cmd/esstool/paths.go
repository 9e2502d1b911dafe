package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const envSavesDir = "ESSTOOL_SAVES_DIR"

var saveExts = []string{".ess", ".ess.gz", ".ess.zst"}

// resolveSavesDir picks the saves directory: flag or config value first,
// then $ESSTOOL_SAVES_DIR, then the game's default location.
func resolveSavesDir(dir string) (string, error) {
	if dir = strings.TrimSpace(dir); dir != "" {
		return filepath.Clean(dir), nil
	}
	if dir = strings.TrimSpace(os.Getenv(envSavesDir)); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no saves directory: set --saves-dir or %s", envSavesDir)
	}
	return filepath.Join(home, "Documents", "My Games", "Oblivion", "Saves"), nil
}

// resolveSavePath returns arg unchanged when it names an existing file.
// A bare name is looked up in the saves directory, with or without its
// extension.
func resolveSavePath(arg, dir string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("save path is empty")
	}
	if _, err := os.Stat(arg); err == nil || strings.ContainsRune(arg, filepath.Separator) {
		return arg, nil
	}
	savesDir, err := resolveSavesDir(dir)
	if err != nil {
		return "", err
	}
	candidates := []string{arg}
	if !isSaveFile(arg) {
		for _, ext := range saveExts {
			candidates = append(candidates, arg+ext)
		}
	}
	for _, name := range candidates {
		p := filepath.Join(savesDir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("save %q not found in %s", arg, savesDir)
}

func isSaveFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range saveExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func discoverSaves(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("saves path is not a directory: %s", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	saves := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !isSaveFile(e.Name()) {
			continue
		}
		saves = append(saves, filepath.Join(dir, e.Name()))
	}
	sort.Strings(saves)
	return saves, nil
}
