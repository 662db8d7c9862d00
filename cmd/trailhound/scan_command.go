package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trailhound/internal/library"
	"trailhound/internal/logging"
	"trailhound/internal/organizer"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List library movies and report which already have trailers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			movies, err := library.Scan(cfg.Paths.LibraryDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(movies) == 0 {
				fmt.Fprintf(out, "No movies found in %s\n", cfg.Paths.LibraryDir)
				return nil
			}

			org := organizer.New(cfg, logging.NewNop())
			missing := 0
			rows := make([][]string, 0, len(movies))
			for _, movie := range movies {
				yearText := ""
				if movie.Year != 0 {
					yearText = strconv.Itoa(movie.Year)
				}
				trailerText := "missing"
				if _, ok := org.Existing(org.DestinationDir(movie)); ok {
					trailerText = "present"
				} else {
					missing++
				}
				rows = append(rows, []string{movie.Title, yearText, trailerText})
			}

			fmt.Fprintln(out, renderTable(out, []string{"Title", "Year", "Trailer"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d movies, %d missing trailers\n", len(movies), missing)
			return nil
		},
	}
}
