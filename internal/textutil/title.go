package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// TitleFromFolderName derives a display title from a library folder name.
// Dots and underscores, common in release-style folder names, are treated as
// word separators before title casing.
func TitleFromFolderName(name string) string {
	name = strings.NewReplacer(".", " ", "_", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(name)
}
