package main

import (
	"strings"
	"sync"

	"log/slog"

	"trailhound/internal/config"
	"trailhound/internal/logging"
	"trailhound/internal/organizer"
	"trailhound/internal/services/tmdb"
	"trailhound/internal/services/ytdlp"
	"trailhound/internal/workflow"

	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// buildLogger creates the run logger writing to stdout and the log dir.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.NewAt(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
}

// buildRunner wires the full pipeline from configuration.
func buildRunner(cfg *config.Config, logger *slog.Logger, opts ...workflow.RunnerOption) (*workflow.Runner, error) {
	resolver, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, err
	}
	locator := ytdlp.NewLocator(cfg.Downloader.Binary, logger)
	org := organizer.New(cfg, logger)
	return workflow.NewRunner(cfg, resolver, locator, org, logger, opts...), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
