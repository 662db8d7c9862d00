package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"trailhound/internal/config"
	"trailhound/internal/history"
	"trailhound/internal/library"
	"trailhound/internal/logging"
	"trailhound/internal/organizer"
	"trailhound/internal/ranking"
	"trailhound/internal/services"
	"trailhound/internal/services/tmdb"
	"trailhound/internal/services/ytdlp"
)

// Status describes the runner's lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Summary aggregates the results of one batch run.
type Summary struct {
	RunID      string
	Processed  int
	Downloaded int
	Skipped    int
	Failed     int
	Errors     []string
}

// BinaryResolver yields a usable downloader executable.
type BinaryResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// DownloaderFactory builds a download client once the binary is known.
type DownloaderFactory func(binary string) (ytdlp.Downloader, error)

// Runner drives the per-movie pipeline across a batch of library entries.
type Runner struct {
	cfg           *config.Config
	resolver      tmdb.Resolver
	locator       BinaryResolver
	newDownloader DownloaderFactory
	organizer     *organizer.Organizer
	store         *history.Store
	logger        *slog.Logger

	mu     sync.Mutex
	status Status
}

// RunnerOption configures optional collaborators.
type RunnerOption func(*Runner)

// WithHistory records runs and outcomes in the given store.
func WithHistory(store *history.Store) RunnerOption {
	return func(r *Runner) {
		r.store = store
	}
}

// WithDownloaderFactory overrides how download clients are built (used in tests).
func WithDownloaderFactory(factory DownloaderFactory) RunnerOption {
	return func(r *Runner) {
		if factory != nil {
			r.newDownloader = factory
		}
	}
}

// NewRunner wires the batch runner from explicit collaborators.
func NewRunner(cfg *config.Config, resolver tmdb.Resolver, locator BinaryResolver, org *organizer.Organizer, logger *slog.Logger, opts ...RunnerOption) *Runner {
	runner := &Runner{
		cfg:       cfg,
		resolver:  resolver,
		locator:   locator,
		organizer: org,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		status:    StatusIdle,
		newDownloader: func(binary string) (ytdlp.Downloader, error) {
			return ytdlp.New(binary, cfg.Downloader.TimeoutSeconds)
		},
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Status reports the runner's current lifecycle state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) setStatus(status Status) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
}

// Run processes the movies in order and returns a batch summary. The
// downloader binary is resolved once up front; when no usable binary exists
// the run aborts before touching any movie and no summary is produced.
// Per-movie failures are recorded in the summary, never propagated.
func (r *Runner) Run(ctx context.Context, movies []library.Movie) (*Summary, error) {
	binary, err := r.locator.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	downloader, err := r.newDownloader(binary)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "run", "build download client", err)
	}

	runID := uuid.New().String()
	summary := &Summary{RunID: runID}
	r.setStatus(StatusRunning)
	finalStatus := StatusCompleted

	if r.store != nil {
		if err := r.store.StartRun(ctx, runID); err != nil {
			r.logger.Warn("record run start failed", logging.Error(err))
		}
	}

	r.logger.Info("batch run started",
		logging.String("run_id", runID),
		logging.Int("movies", len(movies)),
		logging.String("binary", binary),
	)

	delay := time.Duration(r.cfg.Workflow.ItemDelaySeconds) * time.Second
	for i, movie := range movies {
		if ctx.Err() != nil {
			finalStatus = StatusCancelled
			break
		}
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				finalStatus = StatusCancelled
				break
			}
		}
		r.processMovie(ctx, downloader, movie, summary)
	}

	if ctx.Err() != nil {
		finalStatus = StatusCancelled
	}
	r.setStatus(finalStatus)

	if r.store != nil {
		runStatus := history.RunCompleted
		if finalStatus == StatusCancelled {
			runStatus = history.RunCancelled
		}
		counts := history.Counts{
			Processed:  summary.Processed,
			Downloaded: summary.Downloaded,
			Skipped:    summary.Skipped,
			Failed:     summary.Failed,
		}
		if err := r.store.FinishRun(context.WithoutCancel(ctx), runID, runStatus, counts); err != nil {
			r.logger.Warn("record run finish failed", logging.Error(err))
		}
	}

	r.logger.Info("batch run finished",
		logging.String("run_id", runID),
		logging.String("status", string(finalStatus)),
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

// ProcessMovie runs the pipeline for a single movie.
func (r *Runner) ProcessMovie(ctx context.Context, movie library.Movie) (*Summary, error) {
	return r.Run(ctx, []library.Movie{movie})
}

func (r *Runner) processMovie(ctx context.Context, downloader ytdlp.Downloader, movie library.Movie, summary *Summary) {
	summary.Processed++
	logger := r.logger.With(logging.String("movie", movie.Label()))

	outcome := history.Outcome{RunID: summary.RunID, Movie: movie.Title, Year: movie.Year}
	defer func() {
		if r.store != nil && outcome.Status != "" {
			if err := r.store.RecordOutcome(context.WithoutCancel(ctx), outcome); err != nil {
				logger.Warn("record outcome failed", logging.Error(err))
			}
		}
	}()

	// The existing-trailer check runs before any network call so untouched
	// libraries re-run cheaply.
	destDir := r.organizer.DestinationDir(movie)
	if existing, ok := r.organizer.Existing(destDir); ok && !r.organizer.Overwrite() {
		logger.Info("trailer already present, skipping", logging.String("path", existing))
		summary.Skipped++
		outcome.Status = history.OutcomeSkipped
		outcome.Detail = "trailer already present"
		outcome.TrailerPath = existing
		return
	}

	final, err := r.fetchTrailer(ctx, downloader, movie, logger)
	if err != nil {
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", movie.Label(), err))
		outcome.Status = history.OutcomeFailed
		outcome.Detail = err.Error()
		logger.Error("movie failed", logging.Error(err))
		return
	}

	summary.Downloaded++
	outcome.Status = history.OutcomeDownloaded
	outcome.TrailerPath = final
}

// fetchTrailer resolves, ranks, downloads, and places one trailer. The
// scratch directory is only created once a candidate exists, so metadata
// misses leave no debris in the staging area.
func (r *Runner) fetchTrailer(ctx context.Context, downloader ytdlp.Downloader, movie library.Movie, logger *slog.Logger) (string, error) {
	match, err := r.resolveMovie(ctx, movie)
	if err != nil {
		return "", err
	}
	logger.Info("movie resolved",
		logging.Int64("tmdb_id", match.ID),
		logging.String("title", match.Title),
	)

	videos, err := r.resolver.MovieVideos(ctx, match.ID)
	if err != nil {
		return "", err
	}

	tier := ranking.ParseQuality(r.cfg.Trailers.PreferredQuality)
	best, ok := ranking.PickBest(videos, tier)
	if !ok {
		return "", services.Wrap(services.ErrNoSuitableTrailer, "workflow", "rank",
			fmt.Sprintf("no official YouTube trailer among %d videos", len(videos)), nil)
	}
	logger.Info("trailer selected",
		logging.String("key", best.Key),
		logging.String("name", best.Name),
		logging.Bool("official", best.Official),
	)

	scratch := filepath.Join(r.cfg.Paths.StagingDir, "trailer-"+uuid.New().String())
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn("scratch cleanup failed", logging.String("dir", scratch), logging.Error(err))
		}
	}()

	artifact, err := downloader.Download(ctx, best.Key, scratch, tier, r.cfg.Trailers.MaxDurationSeconds)
	if err != nil {
		return "", err
	}

	return r.organizer.Place(artifact, movie, best.Name)
}

// resolveMovie trusts the first search result, matching the upstream API's
// relevance ordering.
func (r *Runner) resolveMovie(ctx context.Context, movie library.Movie) (tmdb.Match, error) {
	matches, err := r.resolver.SearchMovie(ctx, movie.Title, movie.Year)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) && movie.Year != 0 {
			// Folder years are sometimes wrong; retry without the filter.
			matches, err = r.resolver.SearchMovie(ctx, movie.Title, 0)
		}
		if err != nil {
			return tmdb.Match{}, err
		}
	}
	if len(matches) == 0 {
		return tmdb.Match{}, services.Wrap(services.ErrNotFound, "workflow", "resolve",
			fmt.Sprintf("no search results for %q", movie.Title), nil)
	}
	return matches[0], nil
}
