// Package textnorm canonicalizes free text before it is hashed or stored.
//
// Two submissions of the same document pasted from different sources tend to
// differ only in line endings, surrounding whitespace, or Unicode
// representation. Normalizing first means they hash identically and
// deduplicate correctly.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of text:
//   - Unicode NFC composition
//   - all line-break variants collapsed to "\n"
//   - blank lines removed
//   - each remaining line trimmed of surrounding whitespace
//
// It is a pure function; identical-up-to-noise inputs map to identical output.
func Normalize(text string) string {
	s := norm.NFC.String(text)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
