package absa

import (
	"regexp"
	"strings"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]`)
	contrast    = regexp.MustCompile(`(?i)\b(?:but|however|although|though)\b`)
)

// SplitSentences splits text on '.', '!' and '?'. Decimal numbers and
// abbreviations are split too ("2.5 hours" -> "2", "5 hours").
func SplitSentences(text string) []string {
	return splitTrim(sentenceEnd, text)
}

// SplitClauses splits a sentence on whole-word contrast markers (but,
// however, although, though). Markers never appear in the output.
func SplitClauses(sentence string) []string {
	return splitTrim(contrast, sentence)
}

func splitTrim(re *regexp.Regexp, s string) []string {
	parts := re.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
