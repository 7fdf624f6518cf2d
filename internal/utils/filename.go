package utils

import (
	"regexp"
	"strings"
)

const maxFilenameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Runs of whitespace become a single dash
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns an identifier into a single path element that is safe on
// common filesystems. Separators and reserved characters are removed, whitespace
// collapses to "-", and leading dots are dropped so the result never names a
// parent directory or a hidden file. An empty result yields fallback.
func SanitizeFilename(name, fallback string) string {
	name = whitespaceRuns.ReplaceAllString(strings.TrimSpace(name), "-")
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")

	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}

	if name == "" {
		return fallback
	}
	return name
}
