package ytdlp

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"trailhound/internal/ranking"
	"trailhound/internal/services"
)

type fakeExecutor struct {
	calls [][]string
	run   func(binary string, args []string, onOutput func(string)) error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	f.calls = append(f.calls, append([]string{binary}, args...))
	if f.run != nil {
		return f.run(binary, args, onOutput)
	}
	return nil
}

// realExitError obtains a genuine *exec.ExitError carrying the given code.
func realExitError(t *testing.T, code int) error {
	t.Helper()
	cmd := exec.Command("/bin/sh", "-c", "exit "+strconv.Itoa(code))
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected exit error for code %d", code)
	}
	return err
}

func TestDownloadBuildsExpectedInvocation(t *testing.T) {
	scratch := t.TempDir()
	fake := &fakeExecutor{run: func(_ string, _ []string, _ func(string)) error {
		return os.WriteFile(filepath.Join(scratch, "trailer.mp4"), []byte("video"), 0o644)
	}}
	client, err := New("/opt/yt-dlp", 60, WithExecutor(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := client.Download(context.Background(), "abc123", scratch, ranking.QualityMedium, 300)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != filepath.Join(scratch, "trailer.mp4") {
		t.Fatalf("unexpected output path %q", path)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(fake.calls))
	}
	invocation := strings.Join(fake.calls[0], " ")
	for _, fragment := range []string{
		"/opt/yt-dlp",
		"-f bestvideo[height<=720]+bestaudio/best[height<=720]/best",
		"--no-playlist",
		"-o " + filepath.Join(scratch, "trailer.%(ext)s"),
		"--match-filter duration <= 300",
		"https://www.youtube.com/watch?v=abc123",
	} {
		if !strings.Contains(invocation, fragment) {
			t.Fatalf("invocation %q missing %q", invocation, fragment)
		}
	}
}

func TestDownloadOmitsDurationFilterWhenDisabled(t *testing.T) {
	scratch := t.TempDir()
	fake := &fakeExecutor{run: func(_ string, _ []string, _ func(string)) error {
		return os.WriteFile(filepath.Join(scratch, "trailer.webm"), []byte("video"), 0o644)
	}}
	client, err := New("yt-dlp", 60, WithExecutor(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Download(context.Background(), "abc", scratch, ranking.QualityHigh, 0); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if strings.Contains(strings.Join(fake.calls[0], " "), "--match-filter") {
		t.Fatal("duration filter should be absent when max duration is zero")
	}
}

func TestDownloadNonZeroExitIsDownloadFailed(t *testing.T) {
	exitErr := realExitError(t, 1)
	fake := &fakeExecutor{run: func(_ string, _ []string, onOutput func(string)) error {
		onOutput("ERROR: Video unavailable")
		return exitErr
	}}
	client, err := New("yt-dlp", 60, WithExecutor(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Download(context.Background(), "abc", t.TempDir(), ranking.QualityHigh, 0)
	if !errors.Is(err, services.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Fatalf("expected captured output in error, got %v", err)
	}
}

func TestDownloadExit127CarriesNotFoundHint(t *testing.T) {
	exitErr := realExitError(t, 127)
	fake := &fakeExecutor{run: func(_ string, _ []string, _ func(string)) error {
		return exitErr
	}}
	client, err := New("yt-dlp", 60, WithExecutor(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Download(context.Background(), "abc", t.TempDir(), ranking.QualityHigh, 0)
	if !errors.Is(err, services.ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "binary not found") {
		t.Fatalf("expected not-found hint, got %v", err)
	}
}

func TestDownloadExit126CarriesNotExecutableHint(t *testing.T) {
	exitErr := realExitError(t, 126)
	fake := &fakeExecutor{run: func(_ string, _ []string, _ func(string)) error {
		return exitErr
	}}
	client, err := New("yt-dlp", 60, WithExecutor(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Download(context.Background(), "abc", t.TempDir(), ranking.QualityHigh, 0)
	if !strings.Contains(err.Error(), "not executable") {
		t.Fatalf("expected not-executable hint, got %v", err)
	}
}

func TestDownloadCleanExitWithoutFileIsOutputMissing(t *testing.T) {
	fake := &fakeExecutor{}
	client, err := New("yt-dlp", 60, WithExecutor(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Download(context.Background(), "abc", t.TempDir(), ranking.QualityHigh, 0)
	if !errors.Is(err, services.ErrOutputMissing) {
		t.Fatalf("expected ErrOutputMissing, got %v", err)
	}
}

func TestProbeOutputPrefersLargestFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "trailer.webm"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "trailer.mp4"), []byte("larger-file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "trailer.info.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, ok := probeOutput(dir)
	if !ok {
		t.Fatal("expected a probe hit")
	}
	if filepath.Base(path) != "trailer.mp4" {
		t.Fatalf("probe selected %q", path)
	}
}

func TestOutputTailBounded(t *testing.T) {
	var tail outputTail
	for i := 0; i < stderrTailLines*2; i++ {
		tail.append("line")
	}
	if got := len(strings.Split(tail.String(), "\n")); got != stderrTailLines {
		t.Fatalf("tail kept %d lines", got)
	}
}
