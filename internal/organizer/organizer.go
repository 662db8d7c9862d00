package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"log/slog"

	"trailhound/internal/config"
	"trailhound/internal/fileutil"
	"trailhound/internal/library"
	"trailhound/internal/logging"
	"trailhound/internal/services"
	"trailhound/internal/services/ytdlp"
	"trailhound/internal/textutil"
)

// Organizer places downloaded trailers into their final library location.
type Organizer struct {
	folderName         string
	perMovieSubfolders bool
	overwrite          bool
	logger             *slog.Logger
}

// New constructs an organizer from the trailer layout settings.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return &Organizer{
		folderName:         cfg.Trailers.FolderName,
		perMovieSubfolders: cfg.Trailers.PerMovieSubfolders,
		overwrite:          cfg.Trailers.OverwriteExisting,
		logger:             logging.NewComponentLogger(logger, "organizer"),
	}
}

// DestinationDir computes where a movie's trailers live. With per-movie
// subfolders enabled the trailer folder gains a "Title (Year)" level, which
// keeps trailers grouped when folderName points at a shared directory.
func (o *Organizer) DestinationDir(movie library.Movie) string {
	dir := filepath.Join(movie.Dir, o.folderName)
	if o.perMovieSubfolders {
		dir = filepath.Join(dir, textutil.SanitizeFileName(movie.Label()))
	}
	return dir
}

// Existing reports the first video file already present in dir. A missing
// directory simply means no trailer exists yet.
func (o *Organizer) Existing(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, known := range ytdlp.VideoExtensions() {
			if ext == known {
				return filepath.Join(dir, entry.Name()), true
			}
		}
	}
	return "", false
}

// Overwrite reports whether existing trailers should be replaced.
func (o *Organizer) Overwrite() bool {
	return o.overwrite
}

// FileName renders the final trailer filename from the movie identity and the
// candidate's display name. The artifact's extension is preserved because the
// download tool decides the container.
func (o *Organizer) FileName(movie library.Movie, trailerName, ext string) string {
	label := textutil.SanitizeFileName(movie.Label())
	name := textutil.SanitizeFileName(trailerName)
	return fmt.Sprintf("%s - %s%s", label, name, ext)
}

// Place moves the downloaded artifact into the movie's trailer directory and
// returns the final path. An existing file at the target is replaced only when
// overwrite is enabled; otherwise it is kept and returned as the result.
func (o *Organizer) Place(artifact string, movie library.Movie, trailerName string) (string, error) {
	destDir := o.DestinationDir(movie)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrFileSystem, "organizer", "place",
			fmt.Sprintf("create trailer directory %s", destDir), err)
	}
	target := filepath.Join(destDir, o.FileName(movie, trailerName, filepath.Ext(artifact)))

	if _, err := os.Stat(target); err == nil {
		if !o.overwrite {
			o.logger.Info("keeping existing trailer", logging.String("path", target))
			return target, nil
		}
		if err := os.Remove(target); err != nil {
			return "", services.Wrap(services.ErrFileSystem, "organizer", "place",
				fmt.Sprintf("remove existing trailer %s", target), err)
		}
	}

	if err := o.moveFile(artifact, target); err != nil {
		return "", err
	}
	o.logger.Info("trailer placed",
		logging.String("movie", movie.Label()),
		logging.String("path", target),
	)
	return target, nil
}

// moveFile renames src to dst, falling back to copy-and-remove when the two
// paths live on different filesystems.
func (o *Organizer) moveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return services.Wrap(services.ErrFileSystem, "organizer", "place", "copy trailer across filesystems", err)
		}
		if err := os.Remove(src); err != nil {
			o.logger.Warn("failed to remove scratch file after copy", logging.Error(err))
		}
		return nil
	}
	return services.Wrap(services.ErrFileSystem, "organizer", "place", "move trailer into library", renameErr)
}
