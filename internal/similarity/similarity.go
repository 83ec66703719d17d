// Package similarity computes lexical similarity scores between two texts.
// All scores fall in [0, 1].
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Scores holds the three lexical measures persisted per comparison.
type Scores struct {
	TfIdf       float64
	Jaccard     float64
	LengthRatio float64
}

// Compute returns all three scores for a document pair.
func Compute(resumeText, jdText string) Scores {
	return Scores{
		TfIdf:       TfIdfCosine(resumeText, jdText),
		Jaccard:     Jaccard(resumeText, jdText),
		LengthRatio: LengthRatio(resumeText, jdText),
	}
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func termFreq(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	for tok := range tf {
		tf[tok] /= float64(len(tokens))
	}
	return tf
}

// TfIdfCosine computes the cosine similarity of the two documents' TF-IDF
// vectors over their shared two-document corpus. Identical texts score 1,
// texts with no shared terms score 0.
func TfIdfCosine(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	tfa, tfb := termFreq(ta), termFreq(tb)

	// IDF over a two-document corpus: terms in both docs get ln(1) = 0
	// under the plain formulation, which would zero every shared term.
	// Use the smoothed variant ln(1 + N/df) instead.
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := tfa[term]; ok {
			df++
		}
		if _, ok := tfb[term]; ok {
			df++
		}
		return math.Log(1 + 2/df)
	}

	var dot, normA, normB float64
	for term, w := range tfa {
		v := w * idf(term)
		normA += v * v
		if wb, ok := tfb[term]; ok {
			dot += v * wb * idf(term)
		}
	}
	for term, w := range tfb {
		v := w * idf(term)
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Jaccard computes |A ∩ B| / |A ∪ B| over the unique token sets.
func Jaccard(a, b string) float64 {
	sa := make(map[string]struct{})
	for _, tok := range tokenize(a) {
		sa[tok] = struct{}{}
	}
	sb := make(map[string]struct{})
	for _, tok := range tokenize(b) {
		sb[tok] = struct{}{}
	}
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// LengthRatio is the token-count ratio shorter/longer.
func LengthRatio(a, b string) float64 {
	la, lb := float64(len(tokenize(a))), float64(len(tokenize(b)))
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return la / lb
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
