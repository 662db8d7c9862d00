package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"trailhound/internal/config"
	"trailhound/internal/history"
	"trailhound/internal/library"
	"trailhound/internal/logging"
	"trailhound/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var listFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download trailers for every movie in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}

			lockPath := filepath.Join(cfg.Paths.LogDir, "trailhound.lock")
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another trailhound run is already in progress")
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release run lock", logging.Error(err))
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts []workflow.RunnerOption
			store, err := history.Open(cfg)
			if err != nil {
				logger.Warn("history unavailable, run will not be recorded", logging.Error(err))
			} else {
				defer store.Close()
				opts = append(opts, workflow.WithHistory(store))
			}

			runner, err := buildRunner(cfg, logger, opts...)
			if err != nil {
				return err
			}

			movies, source, err := loadMovies(cfg, listFlag)
			if err != nil {
				return err
			}
			if len(movies) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No movies found in %s\n", source)
				return nil
			}

			summary, err := runner.Run(runCtx, movies)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&listFlag, "list", "l", "", "Movie list file processed instead of a library scan")
	return cmd
}

// loadMovies picks the batch source: an explicit list file (flag, then
// config) when given, otherwise a full library scan.
func loadMovies(cfg *config.Config, listFlag string) ([]library.Movie, string, error) {
	listPath := strings.TrimSpace(listFlag)
	if listPath == "" {
		listPath = cfg.Workflow.MovieList
	}
	if listPath != "" {
		movies, err := library.LoadList(listPath, cfg.Paths.LibraryDir)
		return movies, listPath, err
	}
	movies, err := library.Scan(cfg.Paths.LibraryDir)
	return movies, cfg.Paths.LibraryDir, err
}

func printSummary(out io.Writer, summary *workflow.Summary) {
	rows := [][]string{
		{"Processed", strconv.Itoa(summary.Processed)},
		{"Downloaded", strconv.Itoa(summary.Downloaded)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	fmt.Fprintln(out, renderTable(out, []string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	colorize := shouldColorize(out)
	for _, line := range summary.Errors {
		fmt.Fprintln(out, renderStatusLine("Failure", statusError, line, colorize))
	}
}
