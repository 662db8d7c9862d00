package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trailhound/internal/ranking"
	"trailhound/internal/services"
)

// videoExtensions are the output extensions probed after a download. The
// external tool decides the final container, not the caller.
var videoExtensions = []string{".mp4", ".webm", ".mkv", ".mov"}

// outputBaseName is the fixed stem handed to the tool's output template.
const outputBaseName = "trailer"

// stderrTailLines bounds how much captured output a failure carries.
const stderrTailLines = 20

// Exit codes that indicate a broken binary rather than a content problem.
const (
	exitNotExecutable = 126
	exitNotFound      = 127
)

// Downloader defines the behaviour required by the batch runner.
type Downloader interface {
	Download(ctx context.Context, key, scratchDir string, tier ranking.Quality, maxDurationSeconds int) (string, error)
}

// Executor abstracts command execution for testability. Implementations run
// the binary, stream combined stdout/stderr lines to onOutput, and return the
// process error (an *exec.ExitError for non-zero exits).
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

var _ Downloader = (*Client)(nil)

// New constructs a download client around a resolved binary path.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("downloader binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Download fetches the video identified by key into scratchDir and returns
// the path of the produced file. The tool chooses the container; the caller
// learns it from the returned path. A zero exit that produces no recognizable
// video file is reported as ErrOutputMissing.
func (c *Client) Download(ctx context.Context, key, scratchDir string, tier ranking.Quality, maxDurationSeconds int) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("video key required")
	}
	scratchDir = strings.TrimSpace(scratchDir)
	if scratchDir == "" {
		return "", errors.New("scratch directory required")
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrFileSystem, "ytdlp", "download", "create scratch directory", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := buildArgs(key, scratchDir, tier, maxDurationSeconds)

	var tail outputTail
	err := c.exec.Run(runCtx, c.binary, args, tail.append)
	if err != nil {
		return "", classifyRunError(err, tail.String())
	}

	output, ok := probeOutput(scratchDir)
	if !ok {
		return "", services.Wrap(services.ErrOutputMissing, "ytdlp", "download",
			fmt.Sprintf("tool exited cleanly but no video file found in %s", scratchDir), nil)
	}
	return output, nil
}

func buildArgs(key, scratchDir string, tier ranking.Quality, maxDurationSeconds int) []string {
	args := []string{
		"-f", formatExpression(tier),
		"--no-playlist",
		"-o", filepath.Join(scratchDir, outputBaseName+".%(ext)s"),
	}
	if maxDurationSeconds > 0 {
		args = append(args, "--match-filter", fmt.Sprintf("duration <= %d", maxDurationSeconds))
	}
	args = append(args, watchURL(key))
	return args
}

func watchURL(key string) string {
	return "https://www.youtube.com/watch?v=" + key
}

// formatExpression maps a quality tier to a yt-dlp format selector that caps
// the video height at the tier target.
func formatExpression(tier ranking.Quality) string {
	height := tier.TargetSize()
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best", height, height)
}

func classifyRunError(err error, captured string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		switch code {
		case exitNotExecutable:
			return services.Wrap(services.ErrDownloadFailed, "ytdlp", "download",
				fmt.Sprintf("exit code %d: binary is not executable (check file permissions and platform)", code), errWithTail(err, captured))
		case exitNotFound:
			return services.Wrap(services.ErrDownloadFailed, "ytdlp", "download",
				fmt.Sprintf("exit code %d: binary not found (check install and PATH)", code), errWithTail(err, captured))
		default:
			return services.Wrap(services.ErrDownloadFailed, "ytdlp", "download",
				fmt.Sprintf("exit code %d", code), errWithTail(err, captured))
		}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrDownloadFailed, "ytdlp", "download",
			"binary not found (check install and PATH)", err)
	}
	return services.Wrap(services.ErrDownloadFailed, "ytdlp", "download", "run downloader", errWithTail(err, captured))
}

func errWithTail(err error, captured string) error {
	captured = strings.TrimSpace(captured)
	if captured == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, captured)
}

// probeOutput looks for the downloaded video inside dir. When the tool leaves
// several recognizable files (separate audio/video remuxed late), the largest
// one wins.
func probeOutput(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	type candidate struct {
		path string
		size int64
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !isVideoExtension(ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, entry.Name()), size: info.Size()})
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Slice(found, func(i, j int) bool { return found[i].size > found[j].size })
	return found[0].path, true
}

func isVideoExtension(ext string) bool {
	for _, known := range videoExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// VideoExtensions returns the output extensions the executor recognizes.
func VideoExtensions() []string {
	out := make([]string, len(videoExtensions))
	copy(out, videoExtensions)
	return out
}

type outputTail struct {
	lines []string
}

func (t *outputTail) append(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > stderrTailLines {
		t.lines = t.lines[len(t.lines)-stderrTailLines:]
	}
}

func (t *outputTail) String() string {
	return strings.Join(t.lines, "\n")
}
