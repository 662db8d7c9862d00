package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trailhound/internal/config"
	"trailhound/internal/logging"
	"trailhound/internal/services/tmdb"
	"trailhound/internal/services/ytdlp"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigTestCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set tmdb api_key (or export TMDB_API_KEY) before running Trailhound.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s (exists: %s)\n\n", path, yesNo(exists))

			rows := [][]string{
				{"paths.library_dir", cfg.Paths.LibraryDir},
				{"paths.staging_dir", cfg.Paths.StagingDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"tmdb.api_key", maskSecret(cfg.TMDB.APIKey)},
				{"tmdb.base_url", cfg.TMDB.BaseURL},
				{"tmdb.language", cfg.TMDB.Language},
				{"trailers.folder_name", cfg.Trailers.FolderName},
				{"trailers.per_movie_subfolders", yesNo(cfg.Trailers.PerMovieSubfolders)},
				{"trailers.overwrite_existing", yesNo(cfg.Trailers.OverwriteExisting)},
				{"trailers.preferred_quality", cfg.Trailers.PreferredQuality},
				{"trailers.max_duration_seconds", fmt.Sprintf("%d", cfg.Trailers.MaxDurationSeconds)},
				{"downloader.binary", cfg.Downloader.Binary},
				{"downloader.timeout_seconds", fmt.Sprintf("%d", cfg.Downloader.TimeoutSeconds)},
				{"workflow.item_delay_seconds", fmt.Sprintf("%d", cfg.Workflow.ItemDelaySeconds)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable(out, []string{"Setting", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newConfigTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Validate configuration and check external dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Configuration", statusError, err.Error(), colorize))
				return err
			}
			detail := path
			if !exists {
				detail = path + " (missing, defaults used)"
			}
			fmt.Fprintln(out, renderStatusLine("Configuration", statusOK, detail, colorize))

			failed := false

			resolver, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
			if err == nil {
				_, err = resolver.SearchMovie(cmd.Context(), "the matrix", 1999)
			}
			if err != nil {
				failed = true
				fmt.Fprintln(out, renderStatusLine("TMDB", statusError, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("TMDB", statusOK, "search succeeded", colorize))
			}

			locator := ytdlp.NewLocator(cfg.Downloader.Binary, logging.NewNop())
			binary, err := locator.Resolve(cmd.Context())
			if err != nil {
				failed = true
				fmt.Fprintln(out, renderStatusLine("Downloader", statusError, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Downloader", statusOK, binary, colorize))
			}

			if failed {
				return fmt.Errorf("configuration test failed")
			}
			return nil
		},
	}
}

func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + strings.Repeat("*", len(value)-4)
}
