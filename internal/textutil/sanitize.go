package textutil

import "strings"

// FallbackName is used when sanitization leaves nothing usable.
const FallbackName = "Trailer"

// maxNameRunes bounds sanitized names so the final path stays well under
// common filesystem limits even with the "Title (Year) - " prefix attached.
const maxNameRunes = 120

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
// Slashes, backslashes, and colons become dashes; the rest are dropped.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes a string safe for use as a file or directory name.
// Unsafe characters are replaced or removed, runs of whitespace collapse to a
// single space, and the result is truncated to a bounded length. An input
// that sanitizes to nothing yields FallbackName, never an empty string.
// The function is idempotent.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	runes := []rune(name)
	if len(runes) > maxNameRunes {
		name = strings.TrimSpace(string(runes[:maxNameRunes]))
	}
	if name == "" {
		return FallbackName
	}
	return name
}
