// Package ranking selects the best trailer candidate from a TMDB video list.
// Official trailers win unconditionally over unofficial ones; among equals,
// closeness to the requested quality dominates and recency breaks ties.
package ranking
