package util

import (
	"net/url"
	"regexp"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[\x00\\/:*?"<>|]`)

// SanitizeFilename replaces characters that are invalid in file names on
// common filesystems. Used when a report is saved to disk under the
// farmer's display name.
func SanitizeFilename(filename string) string {
	safeName := invalidFilenameChars.ReplaceAllString(filename, "-")
	safeName = strings.ReplaceAll(safeName, "\x00", "-")

	for strings.HasPrefix(safeName, ".") || strings.HasPrefix(safeName, "-") {
		safeName = safeName[1:]
	}
	if safeName == "" {
		safeName = "untitled"
	}
	return safeName
}

// EncodeDisplayName percent-encodes a display name so it can travel in a
// header line. Display names come from user input and may contain
// non-ASCII or CR/LF bytes that would corrupt the framing.
func EncodeDisplayName(name string) string {
	return url.PathEscape(name)
}

// DecodeDisplayName reverses EncodeDisplayName. A name that fails to
// decode is returned as-is, since a readable-but-odd name is better
// than dropping the part.
func DecodeDisplayName(encoded string) string {
	name, err := url.PathUnescape(encoded)
	if err != nil {
		return encoded
	}
	return name
}
