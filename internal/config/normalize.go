package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeTrailers()
	c.normalizeDownloader()
	if err := c.normalizeWorkflow(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
}

func (c *Config) normalizeTrailers() {
	c.Trailers.FolderName = strings.TrimSpace(c.Trailers.FolderName)
	if c.Trailers.FolderName == "" {
		c.Trailers.FolderName = defaultTrailerFolderName
	}
	c.Trailers.PreferredQuality = strings.ToLower(strings.TrimSpace(c.Trailers.PreferredQuality))
	if c.Trailers.PreferredQuality == "" {
		c.Trailers.PreferredQuality = defaultPreferredQuality
	}
	if c.Trailers.MaxDurationSeconds < 0 {
		c.Trailers.MaxDurationSeconds = 0
	}
}

func (c *Config) normalizeDownloader() {
	c.Downloader.Binary = strings.TrimSpace(c.Downloader.Binary)
	if c.Downloader.TimeoutSeconds <= 0 {
		c.Downloader.TimeoutSeconds = defaultDownloadTimeout
	}
}

func (c *Config) normalizeWorkflow() error {
	if c.Workflow.ItemDelaySeconds < 0 {
		c.Workflow.ItemDelaySeconds = defaultItemDelaySeconds
	}
	c.Workflow.MovieList = strings.TrimSpace(c.Workflow.MovieList)
	if c.Workflow.MovieList != "" {
		var err error
		if c.Workflow.MovieList, err = expandPath(c.Workflow.MovieList); err != nil {
			return fmt.Errorf("workflow.movie_list: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
