package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trailhound/internal/library"
)

func newMovieCommand(ctx *commandContext) *cobra.Command {
	var title string
	var year int
	var dir string

	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Download the trailer for a single movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			title = strings.TrimSpace(title)
			if title == "" {
				return errors.New("--title is required")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}

			movieDir := strings.TrimSpace(dir)
			if movieDir == "" {
				label := title
				if year != 0 {
					label = fmt.Sprintf("%s (%d)", title, year)
				}
				movieDir = filepath.Join(cfg.Paths.LibraryDir, label)
			}
			movie := library.Movie{Title: title, Year: year, Dir: movieDir}

			runner, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			summary, err := runner.ProcessMovie(cmd.Context(), movie)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			if summary.Failed > 0 {
				return fmt.Errorf("no trailer downloaded for %s", movie.Label())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Movie title to search for")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year used to narrow the search")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Movie directory (defaults to \"<library>/<Title (Year)>\")")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
