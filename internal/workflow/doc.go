// Package workflow orchestrates the per-movie trailer pipeline across a
// batch: check for an existing trailer, resolve metadata, rank candidates,
// download into a scratch directory, and place the result in the library.
// Failures on one movie never stop the batch.
package workflow
