// Package library discovers movies on disk. A library is a flat directory of
// movie folders, conventionally named "Title (Year)"; the scanner parses that
// convention and tolerates folders that do not follow it.
package library
