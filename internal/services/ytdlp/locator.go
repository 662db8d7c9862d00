package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"trailhound/internal/logging"
	"trailhound/internal/services"
)

// fallbackBinary is the unqualified name resolved through PATH when no
// bundled binary is usable.
const fallbackBinary = "yt-dlp"

// toolsSubdir is the bundled-resources directory, relative to the directory
// of the running executable.
const toolsSubdir = "tools"

// bundledNames maps a normalized platform tag to the bundled binary filename.
var bundledNames = map[string]string{
	"windows": "yt-dlp.exe",
	"darwin":  "yt-dlp_macos",
	"freebsd": "yt-dlp_freebsd",
	"linux":   "yt-dlp_linux",
}

func bundledName(goos string) string {
	if name, ok := bundledNames[goos]; ok {
		return name
	}
	// Unknown Unix-likes get the Linux build; it is the closest fit and the
	// PATH fallback still runs if it cannot execute.
	return bundledNames["linux"]
}

// Locator resolves which downloader executable to invoke, smoke-testing each
// candidate in the fallback chain. The result is cached for the lifetime of
// the Locator, which callers scope to a single run: the host environment can
// change between runs.
type Locator struct {
	override       string
	exec           Executor
	logger         *slog.Logger
	executablePath func() (string, error)

	mu       sync.Mutex
	resolved string
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithLocatorExecutor injects the executor used for smoke tests.
func WithLocatorExecutor(exec Executor) LocatorOption {
	return func(l *Locator) {
		if exec != nil {
			l.exec = exec
		}
	}
}

// WithExecutablePath overrides how the locator finds the running executable
// (used in tests to point at a fake install directory).
func WithExecutablePath(fn func() (string, error)) LocatorOption {
	return func(l *Locator) {
		if fn != nil {
			l.executablePath = fn
		}
	}
}

// NewLocator constructs a Locator. override, when non-empty, is tried ahead
// of the bundled binary.
func NewLocator(override string, logger *slog.Logger, opts ...LocatorOption) *Locator {
	locator := &Locator{
		override:       strings.TrimSpace(override),
		exec:           commandExecutor{},
		logger:         logging.NewComponentLogger(logger, "locator"),
		executablePath: os.Executable,
	}
	for _, opt := range opts {
		opt(locator)
	}
	return locator
}

// Resolve returns a usable downloader executable path, caching the answer.
// It tries, in order: the configured override, the bundled platform binary,
// and the bare name on PATH. Every candidate must pass a --version smoke
// test. When the chain is exhausted the run cannot proceed, so the error
// carries the run-fatal ErrDownloaderUnavailable marker.
func (l *Locator) Resolve(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved != "" {
		return l.resolved, nil
	}

	var tried []string
	for _, candidate := range l.candidates() {
		if candidate == "" {
			continue
		}
		if err := l.smokeTest(ctx, candidate); err != nil {
			tried = append(tried, fmt.Sprintf("%s (%v)", candidate, err))
			l.logger.Debug("downloader candidate rejected",
				logging.String("candidate", candidate),
				logging.Error(err),
			)
			continue
		}
		l.logger.Info("downloader resolved", logging.String("binary", candidate))
		l.resolved = candidate
		return candidate, nil
	}

	return "", services.Wrap(services.ErrDownloaderUnavailable, "locator", "resolve",
		"no usable yt-dlp executable; tried "+strings.Join(tried, "; "), nil)
}

// candidates returns the ordered fallback chain.
func (l *Locator) candidates() []string {
	chain := make([]string, 0, 3)
	if l.override != "" {
		chain = append(chain, l.override)
	}
	if bundled := l.bundledPath(); bundled != "" {
		chain = append(chain, bundled)
	}
	chain = append(chain, fallbackBinary)
	return chain
}

// bundledPath locates the platform binary shipped alongside the executable,
// marking it executable on Unix. Returns "" when absent.
func (l *Locator) bundledPath() string {
	exePath, err := l.executablePath()
	if err != nil {
		return ""
	}
	path := filepath.Join(filepath.Dir(exePath), toolsSubdir, bundledName(runtime.GOOS))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(path, 0o755); err != nil {
			l.logger.Debug("chmod bundled binary failed", logging.String("path", path), logging.Error(err))
			return ""
		}
	}
	return path
}

func (l *Locator) smokeTest(ctx context.Context, binary string) error {
	return l.exec.Run(ctx, binary, []string{"--version"}, func(string) {})
}
