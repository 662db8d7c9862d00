// Package history records batch runs and their per-movie outcomes in a small
// SQLite database kept next to the logs, so past runs can be inspected from
// the CLI.
package history
