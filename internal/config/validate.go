package config

import (
	"errors"
	"fmt"
	"strings"

	"trailhound/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTrailers(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/trailhound/config.toml"
		}
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'trailhound config init')", defaultPath), nil)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	return nil
}

func (c *Config) validateTrailers() error {
	if c.Trailers.FolderName == "" {
		return errors.New("trailers.folder_name must be set")
	}
	if strings.ContainsAny(c.Trailers.FolderName, `/\`) {
		return errors.New("trailers.folder_name must be a single path segment")
	}
	for _, tier := range QualityTiers {
		if c.Trailers.PreferredQuality == tier {
			return nil
		}
	}
	return fmt.Errorf("trailers.preferred_quality must be one of %s", strings.Join(QualityTiers, ", "))
}

func (c *Config) validateWorkflow() error {
	if c.Downloader.TimeoutSeconds <= 0 {
		return errors.New("downloader.timeout_seconds must be positive")
	}
	return nil
}
