package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trailhound/internal/testsupport"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	configPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
library_dir = %q
staging_dir = %q
log_dir = %q

[tmdb]
api_key = "test"
`,
		filepath.Join(base, "library"),
		filepath.Join(base, "staging"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "trailhound") {
		t.Fatalf("version output %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output %q missing target path", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[tmdb]") {
		t.Fatalf("sample config missing tmdb section: %q", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "tmdb.api_key") {
		t.Fatalf("output missing settings table: %q", out)
	}
	if !strings.Contains(out, "****") {
		t.Fatalf("api key not masked: %q", out)
	}
}

func TestScanReportsEmptyLibrary(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	if err := os.MkdirAll(filepath.Join(base, "library"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", configPath, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "No movies found") {
		t.Fatalf("scan output %q", out)
	}
}

func TestScanListsMoviesAndTrailerState(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	withTrailer := filepath.Join(base, "library", "Heat (1995)", "trailers")
	if err := os.MkdirAll(withTrailer, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(withTrailer, "Heat (1995) - Trailer.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(base, "library", "Moon (2009)"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", configPath, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "Heat") || !strings.Contains(out, "Moon") {
		t.Fatalf("scan output missing movies: %q", out)
	}
	if !strings.Contains(out, "present") || !strings.Contains(out, "missing") {
		t.Fatalf("scan output missing trailer state: %q", out)
	}
	if !strings.Contains(out, "2 movies, 1 missing trailers") {
		t.Fatalf("scan output missing totals: %q", out)
	}
}

func TestHistoryEmpty(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, "--config", configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet") {
		t.Fatalf("history output %q", out)
	}
}

func TestLoadMoviesPrefersListOverScan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryDir, "Alien (1979)"), 0o755); err != nil {
		t.Fatal(err)
	}

	listPath := filepath.Join(t.TempDir(), "movies.txt")
	if err := os.WriteFile(listPath, []byte("Heat (1995)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	movies, source, err := loadMovies(cfg, listPath)
	if err != nil {
		t.Fatalf("loadMovies with flag: %v", err)
	}
	if source != listPath {
		t.Fatalf("source %q, want %q", source, listPath)
	}
	if len(movies) != 1 || movies[0].Title != "Heat" || movies[0].Year != 1995 {
		t.Fatalf("list movies %+v", movies)
	}

	cfg.Workflow.MovieList = listPath
	movies, source, err = loadMovies(cfg, "")
	if err != nil {
		t.Fatalf("loadMovies with config list: %v", err)
	}
	if source != listPath || len(movies) != 1 || movies[0].Title != "Heat" {
		t.Fatalf("config list result %q %+v", source, movies)
	}

	cfg.Workflow.MovieList = ""
	movies, source, err = loadMovies(cfg, "")
	if err != nil {
		t.Fatalf("loadMovies scan: %v", err)
	}
	if source != cfg.Paths.LibraryDir {
		t.Fatalf("scan source %q, want %q", source, cfg.Paths.LibraryDir)
	}
	if len(movies) != 1 || movies[0].Title != "Alien" {
		t.Fatalf("scan movies %+v", movies)
	}
}

func TestMovieRequiresTitle(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	if _, err := runCLI(t, "--config", configPath, "movie"); err == nil {
		t.Fatal("expected error when --title is missing")
	}
}
