package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trailhound/internal/services"
)

// Match represents a single TMDB movie search result.
type Match struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Year extracts the release year from the date string, or 0 when unknown.
func (m Match) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Video describes one entry from a movie's video list.
type Video struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Site        string    `json:"site"`
	Type        string    `json:"type"`
	Official    bool      `json:"official"`
	Size        int       `json:"size"`
	PublishedAt time.Time `json:"published_at"`
}

type searchResponse struct {
	Results []Match `json:"results"`
}

type videosResponse struct {
	Results []Video `json:"results"`
}

// Resolver defines the metadata operations the pipeline depends on.
type Resolver interface {
	SearchMovie(ctx context.Context, query string, year int) ([]Match, error)
	MovieVideos(ctx context.Context, movieID int64) ([]Video, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Resolver = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovie searches TMDB for the supplied title. A positive year narrows
// the search. An empty result set returns services.ErrNotFound; the first
// element of a non-empty result is the authoritative match.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/movie")
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	endpoint.RawQuery = params.Encode()

	var payload searchResponse
	if err := c.get(ctx, endpoint.String(), "search", &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "tmdb", "search", fmt.Sprintf("no results for %q", query), nil)
	}
	return payload.Results, nil
}

// MovieVideos fetches the video list for a movie. An empty list returns
// services.ErrNotFound.
func (c *Client) MovieVideos(ctx context.Context, movieID int64) ([]Video, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	endpoint, err := url.Parse(fmt.Sprintf("%s/movie/%d/videos", c.baseURL, movieID))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	var payload videosResponse
	if err := c.get(ctx, endpoint.String(), "videos", &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "tmdb", "videos", fmt.Sprintf("no videos for movie %d", movieID), nil)
	}
	return payload.Results, nil
}

func (c *Client) get(ctx context.Context, endpoint, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "tmdb", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrUpstream, "tmdb", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrUpstream, "tmdb", operation, "decode response", err)
	}
	return nil
}
