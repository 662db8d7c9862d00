package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileNameReplacesUnsafeCharacters(t *testing.T) {
	got := SanitizeFileName(`Mission: Impossible <Dead*Reckoning?> "Part|One"`)
	want := "Mission- Impossible DeadReckoning PartOne"
	if got != want {
		t.Fatalf("SanitizeFileName = %q, want %q", got, want)
	}
}

func TestSanitizeFileNameCollapsesWhitespace(t *testing.T) {
	got := SanitizeFileName("  The   Matrix \t Reloaded  ")
	if got != "The Matrix Reloaded" {
		t.Fatalf("SanitizeFileName = %q", got)
	}
}

func TestSanitizeFileNameEmptyYieldsFallback(t *testing.T) {
	for _, input := range []string{"", "   ", `<>?*|"`} {
		if got := SanitizeFileName(input); got != FallbackName {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, FallbackName)
		}
	}
}

func TestSanitizeFileNameTruncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeFileName(long)
	if len([]rune(got)) != maxNameRunes {
		t.Fatalf("expected %d runes, got %d", maxNameRunes, len([]rune(got)))
	}
}

func TestSanitizeFileNameIdempotent(t *testing.T) {
	inputs := []string{
		"The Matrix (1999)",
		`a/b\c:d`,
		strings.Repeat("word ", 60),
		"",
		"  spaced   out  ",
	}
	for _, input := range inputs {
		once := SanitizeFileName(input)
		twice := SanitizeFileName(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestTitleFromFolderName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"the.matrix", "The Matrix"},
		{"blade_runner", "Blade Runner"},
		{"Heat", "Heat"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := TitleFromFolderName(tc.in); got != tc.want {
			t.Fatalf("TitleFromFolderName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
