package organizer

import (
	"os"
	"path/filepath"
	"testing"

	"trailhound/internal/config"
	"trailhound/internal/library"
	"trailhound/internal/logging"
)

func newOrganizer(t *testing.T, mutate func(*config.Config)) *Organizer {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(&cfg, logging.NewNop())
}

func movieIn(t *testing.T, root, folder string) library.Movie {
	t.Helper()
	dir := filepath.Join(root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return library.FromFolder(dir)
}

func writeArtifact(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDestinationDirFlat(t *testing.T) {
	org := newOrganizer(t, nil)
	movie := movieIn(t, t.TempDir(), "Dune (2021)")
	want := filepath.Join(movie.Dir, "trailers")
	if got := org.DestinationDir(movie); got != want {
		t.Fatalf("destination %q, want %q", got, want)
	}
}

func TestDestinationDirWithSubfolders(t *testing.T) {
	org := newOrganizer(t, func(cfg *config.Config) {
		cfg.Trailers.PerMovieSubfolders = true
	})
	movie := movieIn(t, t.TempDir(), "Dune (2021)")
	want := filepath.Join(movie.Dir, "trailers", "Dune (2021)")
	if got := org.DestinationDir(movie); got != want {
		t.Fatalf("destination %q, want %q", got, want)
	}
}

func TestFileNameSanitizesTrailerName(t *testing.T) {
	org := newOrganizer(t, nil)
	movie := movieIn(t, t.TempDir(), "Alien (1979)")
	got := org.FileName(movie, `Official Trailer: "In Space"`, ".mp4")
	want := "Alien (1979) - Official Trailer- In Space.mp4"
	if got != want {
		t.Fatalf("filename %q, want %q", got, want)
	}
}

func TestPlaceMovesArtifactIntoLibrary(t *testing.T) {
	root := t.TempDir()
	org := newOrganizer(t, nil)
	movie := movieIn(t, root, "Heat (1995)")
	artifact := writeArtifact(t, t.TempDir(), "trailer.mp4", "video bytes")

	final, err := org.Place(artifact, movie, "Official Trailer")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	want := filepath.Join(movie.Dir, "trailers", "Heat (1995) - Official Trailer.mp4")
	if final != want {
		t.Fatalf("placed at %q, want %q", final, want)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("read placed file: %v", err)
	}
	if string(data) != "video bytes" {
		t.Fatalf("placed contents %q", data)
	}
	if _, err := os.Stat(artifact); !os.IsNotExist(err) {
		t.Fatal("scratch artifact should be gone after placement")
	}
}

func TestPlaceKeepsExistingWithoutOverwrite(t *testing.T) {
	root := t.TempDir()
	org := newOrganizer(t, nil)
	movie := movieIn(t, root, "Heat (1995)")

	destDir := org.DestinationDir(movie)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := writeArtifact(t, destDir, "Heat (1995) - Official Trailer.mp4", "old")
	artifact := writeArtifact(t, t.TempDir(), "trailer.mp4", "new")

	final, err := org.Place(artifact, movie, "Official Trailer")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if final != existing {
		t.Fatalf("expected existing path back, got %q", final)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "old" {
		t.Fatalf("existing trailer was modified: %q", data)
	}
}

func TestPlaceReplacesExistingWithOverwrite(t *testing.T) {
	root := t.TempDir()
	org := newOrganizer(t, func(cfg *config.Config) {
		cfg.Trailers.OverwriteExisting = true
	})
	movie := movieIn(t, root, "Heat (1995)")

	destDir := org.DestinationDir(movie)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeArtifact(t, destDir, "Heat (1995) - Official Trailer.mp4", "old")
	artifact := writeArtifact(t, t.TempDir(), "trailer.mp4", "new")

	final, err := org.Place(artifact, movie, "Official Trailer")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	data, _ := os.ReadFile(final)
	if string(data) != "new" {
		t.Fatalf("expected replaced contents, got %q", data)
	}
}

func TestPlacePreservesArtifactExtension(t *testing.T) {
	root := t.TempDir()
	org := newOrganizer(t, nil)
	movie := movieIn(t, root, "Moon (2009)")
	artifact := writeArtifact(t, t.TempDir(), "trailer.webm", "video")

	final, err := org.Place(artifact, movie, "Teaser")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if filepath.Ext(final) != ".webm" {
		t.Fatalf("extension lost: %q", final)
	}
}

func TestExistingDetectsVideoFiles(t *testing.T) {
	org := newOrganizer(t, nil)
	dir := t.TempDir()

	if _, ok := org.Existing(dir); ok {
		t.Fatal("empty dir should have no existing trailer")
	}
	if _, ok := org.Existing(filepath.Join(dir, "absent")); ok {
		t.Fatal("missing dir should have no existing trailer")
	}

	writeArtifact(t, dir, "notes.txt", "not a video")
	if _, ok := org.Existing(dir); ok {
		t.Fatal("non-video files should not count")
	}

	want := writeArtifact(t, dir, "Moon (2009) - Trailer.mkv", "video")
	got, ok := org.Existing(dir)
	if !ok || got != want {
		t.Fatalf("Existing = %q, %v", got, ok)
	}
}
