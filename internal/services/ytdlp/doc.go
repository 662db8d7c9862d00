// Package ytdlp wraps the external yt-dlp tool behind two narrow
// capabilities: resolving a usable executable for the current platform
// (Locator) and downloading one video into a scratch directory (Client).
//
// Both run the binary through an Executor interface so tests can substitute
// a fake process runner without spawning real subprocesses. Exit codes 126
// and 127 are surfaced with a hint distinguishing a broken binary from a
// content failure.
package ytdlp
