package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"trailhound/internal/logging"
	"trailhound/internal/services"
)

// smokeExecutor accepts only binaries in the allow set.
type smokeExecutor struct {
	allowed map[string]bool
	calls   []string
}

func (s *smokeExecutor) Run(_ context.Context, binary string, _ []string, _ func(string)) error {
	s.calls = append(s.calls, binary)
	if s.allowed[binary] {
		return nil
	}
	return errors.New("exec format error")
}

func TestLocatorPrefersOverride(t *testing.T) {
	fake := &smokeExecutor{allowed: map[string]bool{"/custom/yt-dlp": true}}
	locator := NewLocator("/custom/yt-dlp", logging.NewNop(),
		WithLocatorExecutor(fake),
		WithExecutablePath(func() (string, error) { return filepath.Join(t.TempDir(), "trailhound"), nil }),
	)

	binary, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if binary != "/custom/yt-dlp" {
		t.Fatalf("resolved %q", binary)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected one smoke test, got %v", fake.calls)
	}
}

func TestLocatorCachesResolution(t *testing.T) {
	fake := &smokeExecutor{allowed: map[string]bool{fallbackBinary: true}}
	locator := NewLocator("", logging.NewNop(),
		WithLocatorExecutor(fake),
		WithExecutablePath(func() (string, error) { return filepath.Join(t.TempDir(), "trailhound"), nil }),
	)

	for i := 0; i < 3; i++ {
		if _, err := locator.Resolve(context.Background()); err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected cached result after first resolve, got %v", fake.calls)
	}
}

func TestLocatorFindsBundledBinary(t *testing.T) {
	installDir := t.TempDir()
	bundled := filepath.Join(installDir, toolsSubdir, bundledName(runtime.GOOS))
	if err := os.MkdirAll(filepath.Dir(bundled), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &smokeExecutor{allowed: map[string]bool{bundled: true}}
	locator := NewLocator("", logging.NewNop(),
		WithLocatorExecutor(fake),
		WithExecutablePath(func() (string, error) { return filepath.Join(installDir, "trailhound"), nil }),
	)

	binary, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if binary != bundled {
		t.Fatalf("resolved %q, want bundled %q", binary, bundled)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(bundled)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm()&0o111 == 0 {
			t.Fatalf("bundled binary not marked executable, mode %v", info.Mode())
		}
	}
}

func TestLocatorFallsBackToPathName(t *testing.T) {
	fake := &smokeExecutor{allowed: map[string]bool{fallbackBinary: true}}
	locator := NewLocator("/broken/yt-dlp", logging.NewNop(),
		WithLocatorExecutor(fake),
		WithExecutablePath(func() (string, error) { return filepath.Join(t.TempDir(), "trailhound"), nil }),
	)

	binary, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if binary != fallbackBinary {
		t.Fatalf("resolved %q, want %q", binary, fallbackBinary)
	}
}

func TestLocatorResolvesStubbedBinaryOnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a Unix shell")
	}
	binDir := t.TempDir()
	stub := filepath.Join(binDir, fallbackBinary)
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	locator := NewLocator("", logging.NewNop(),
		WithExecutablePath(func() (string, error) { return filepath.Join(t.TempDir(), "trailhound"), nil }),
	)
	binary, err := locator.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if binary != fallbackBinary {
		t.Fatalf("resolved %q, want %q", binary, fallbackBinary)
	}
}

func TestLocatorExhaustedChainIsRunFatal(t *testing.T) {
	fake := &smokeExecutor{allowed: map[string]bool{}}
	locator := NewLocator("/broken/yt-dlp", logging.NewNop(),
		WithLocatorExecutor(fake),
		WithExecutablePath(func() (string, error) { return filepath.Join(t.TempDir(), "trailhound"), nil }),
	)

	_, err := locator.Resolve(context.Background())
	if !errors.Is(err, services.ErrDownloaderUnavailable) {
		t.Fatalf("expected ErrDownloaderUnavailable, got %v", err)
	}
	if !services.RunFatal(err) {
		t.Fatal("exhausted chain should be run fatal")
	}
	if !strings.Contains(err.Error(), "/broken/yt-dlp") {
		t.Fatalf("error should list tried candidates, got %v", err)
	}
}
