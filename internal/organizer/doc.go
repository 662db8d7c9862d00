// Package organizer moves downloaded trailers into the library layout:
// a trailer folder under each movie directory, optionally with a per-movie
// subfolder, and filenames of the form "Title (Year) - Trailer Name.ext".
package organizer
