package skills

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Dictionary maps a canonical skill identifier to the surface forms it may
// appear under in a document.
type Dictionary map[string][]string

// LoadDictionary reads a YAML skill dictionary
// (canonical skill -> list of aliases).
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("skills: read dictionary: %w", err)
	}
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("skills: parse dictionary: %w", err)
	}
	return d, nil
}

// DefaultDictionary returns the built-in skill dictionary.
func DefaultDictionary() Dictionary {
	return Dictionary{
		"aws":        {"aws", "amazon web services"},
		"azure":      {"azure", "microsoft azure"},
		"c++":        {"c++"},
		"django":     {"django"},
		"docker":     {"docker"},
		"flask":      {"flask"},
		"gcp":        {"gcp", "google cloud"},
		"git":        {"git"},
		"go":         {"golang", "go"},
		"java":       {"java"},
		"javascript": {"javascript", "js", "ecmascript"},
		"kubernetes": {"kubernetes", "k8s"},
		"linux":      {"linux"},
		"mongodb":    {"mongodb", "mongo"},
		"postgresql": {"postgresql", "postgres"},
		"python":     {"python 3", "python3", "python"},
		"react":      {"react", "reactjs", "react.js"},
		"rest":       {"rest api", "restful", "rest"},
		"sql":        {"sql"},
		"terraform":  {"terraform"},
		"typescript": {"typescript", "ts"},
	}
}

type entry struct {
	canonical string
	aliases   []string // lowercase, longest first
}

// Extractor detects canonical skills in free text using a fixed dictionary.
// Matching is case-insensitive on whole-word occurrences; the recorded alias
// is the surface form at the earliest occurrence in the document.
type Extractor struct {
	entries []entry
}

// NewExtractor compiles a dictionary into an Extractor.
func NewExtractor(d Dictionary) *Extractor {
	e := &Extractor{}
	for canonical, aliases := range d {
		lowered := make([]string, 0, len(aliases))
		for _, a := range aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a != "" {
				lowered = append(lowered, a)
			}
		}
		// Longest alias first so "python 3" wins over "python" at the
		// same position.
		sort.Slice(lowered, func(i, j int) bool { return len(lowered[i]) > len(lowered[j]) })
		e.entries = append(e.entries, entry{canonical: canonical, aliases: lowered})
	}
	sort.Slice(e.entries, func(i, j int) bool { return e.entries[i].canonical < e.entries[j].canonical })
	return e
}

// Extract returns the skill set detected in text.
func (e *Extractor) Extract(text string) SkillSet {
	lower := strings.ToLower(text)
	out := SkillSet{}
	for _, ent := range e.entries {
		best := -1
		bestLen := 0
		for _, alias := range ent.aliases {
			pos := findWord(lower, alias)
			if pos < 0 {
				continue
			}
			if best == -1 || pos < best || (pos == best && len(alias) > bestLen) {
				best = pos
				bestLen = len(alias)
			}
		}
		if best >= 0 {
			out[ent.canonical] = surfaceForm(text, lower, best, bestLen)
		}
	}
	return out
}

// findWord returns the byte offset of the first whole-word occurrence of
// needle in haystack, or -1. Word boundaries are non-letter, non-digit runes,
// which keeps "go" from matching inside "mongodb" while still matching "c++".
func findWord(haystack, needle string) int {
	from := 0
	for {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return start
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r := rune(s[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// surfaceForm recovers the original-case slice matching the alias found in
// the lowered text. Lowercasing is length-preserving for the dictionary's
// ASCII aliases; anything else falls back to the lowered form.
func surfaceForm(text, lower string, pos, length int) string {
	if len(text) == len(lower) && pos+length <= len(text) {
		return text[pos : pos+length]
	}
	return lower[pos : pos+length]
}
