package library

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"trailhound/internal/services"
	"trailhound/internal/textutil"
)

// folderPattern matches the conventional "Title (Year)" media folder naming.
var folderPattern = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)\s*$`)

// mediaExtensions are the container extensions counted as the movie's main
// media file when sizing up a folder.
var mediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".ts":   true,
}

// Movie is one library entry discovered by Scan.
type Movie struct {
	// Title is the display title parsed from the folder name.
	Title string
	// Year is the release year from the folder name, zero when absent.
	Year int
	// Dir is the absolute path of the movie folder.
	Dir string
	// MediaFile is the largest media file inside Dir, empty when none exists.
	MediaFile string
}

// Label renders the movie as "Title (Year)", omitting the year when unknown.
func (m Movie) Label() string {
	if m.Year == 0 {
		return m.Title
	}
	return fmt.Sprintf("%s (%d)", m.Title, m.Year)
}

// Scan walks the immediate children of root and returns one Movie per
// directory. Folders named "Title (Year)" yield a parsed title and year;
// anything else keeps a cleaned-up folder name and no year. Hidden folders
// are skipped. Results come back sorted by folder name for stable batch
// ordering.
func Scan(root string) ([]Movie, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "library", "scan", "library directory not configured", nil)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrFileSystem, "library", "scan",
			fmt.Sprintf("read library directory %s", root), err)
	}

	var movies []Movie
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		movie := FromFolder(filepath.Join(root, entry.Name()))
		movie.MediaFile = largestMediaFile(movie.Dir)
		movies = append(movies, movie)
	}
	sort.Slice(movies, func(i, j int) bool {
		return filepath.Base(movies[i].Dir) < filepath.Base(movies[j].Dir)
	})
	return movies, nil
}

// LoadList reads a movie list file: one "Title (Year)" or bare title per
// line, with blank lines and #-comments skipped. Entries are anchored to
// folders under root using the same naming convention the scanner parses,
// so list-driven runs place trailers exactly where a scan would.
func LoadList(path, root string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "library", "load list",
			fmt.Sprintf("read movie list %s", path), err)
	}

	var movies []Movie
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		movie := FromFolder(filepath.Join(root, line))
		movie.MediaFile = largestMediaFile(movie.Dir)
		movies = append(movies, movie)
	}
	return movies, nil
}

// FromFolder builds a Movie from a single folder path without touching the
// filesystem.
func FromFolder(dir string) Movie {
	name := filepath.Base(dir)
	if match := folderPattern.FindStringSubmatch(name); match != nil {
		year, _ := strconv.Atoi(match[2])
		return Movie{Title: strings.TrimSpace(match[1]), Year: year, Dir: dir}
	}
	return Movie{Title: textutil.TitleFromFolderName(name), Dir: dir}
}

// largestMediaFile returns the biggest media file directly inside dir.
func largestMediaFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestSize int64 = -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			bestSize = info.Size()
			best = filepath.Join(dir, entry.Name())
		}
	}
	return best
}
