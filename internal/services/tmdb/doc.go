// Package tmdb provides the minimal TMDB API client used to resolve a movie
// to its trailer candidates.
//
// It exposes movie search with an optional release-year filter and the video
// list for a match. Empty upstream result sets surface as ErrNotFound and
// transport or HTTP failures as ErrUpstream; the client performs no retries,
// leaving retry policy to the orchestrator. Options allow tests to supply a
// custom HTTP client.
package tmdb
