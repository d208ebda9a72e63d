// Package pathscrub makes rendered paths safe to use as file and directory
// names on common filesystems.
package pathscrub

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// componentReplacer replaces characters that are unsafe inside a single path
// component. Backslashes and colons become dashes; other unsafe characters
// are removed.
var componentReplacer = strings.NewReplacer(
	"\\", "-",
	": ", " - ",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// Scrub sanitizes every "/"-separated component of path. Separators, including
// leading and trailing ones, are preserved. Components are NFC normalized,
// stripped of control characters and of trailing dots and spaces.
func Scrub(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.Split(norm.NFC.String(path), "/")
	for i, part := range parts {
		parts[i] = scrubComponent(part)
	}
	return strings.Join(parts, "/")
}

func scrubComponent(part string) string {
	if part == "" || part == "." || part == ".." {
		return part
	}
	part = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, part)
	part = componentReplacer.Replace(part)
	part = strings.Join(strings.Fields(part), " ")
	return strings.TrimRight(part, ". ")
}
