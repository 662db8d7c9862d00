// Command trailhound is the CLI for scanning a movie library and downloading
// trailers for it.
package main
