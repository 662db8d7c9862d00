package services

import (
	"errors"
	"fmt"
	"strings"
)

// Run-fatal markers. Either of these aborts the whole run before or at the
// first item; no summary is produced.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrDownloaderUnavailable = errors.New("downloader unavailable")
)

// Per-movie markers. These are recovered at the orchestrator's per-item
// boundary, recorded in the run summary, and never abort the run.
var (
	ErrNotFound          = errors.New("not found")
	ErrNoSuitableTrailer = errors.New("no suitable trailer")
	ErrUpstream          = errors.New("upstream error")
	ErrDownloadFailed    = errors.New("download failed")
	ErrOutputMissing     = errors.New("output file missing")
	ErrFileSystem        = errors.New("filesystem error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RunFatal reports whether err must abort the whole run rather than be
// folded into the per-movie outcome list.
func RunFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrDownloaderUnavailable)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
