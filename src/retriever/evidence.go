package retriever

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/clipiq/clipiq/src/index"
	"github.com/clipiq/clipiq/src/transcript"
)

const (
	// NoEvidence is returned when retrieval produced nothing at all.
	NoEvidence = "No transcript evidence found."
	// NoGoodEvidence is returned when everything retrieved was
	// filtered out as noise. Callers MUST branch on Stats.Kept == 0
	// and fall back to metadata instead of generating from this.
	NoGoodEvidence = "No good transcript evidence found (most retrieved segments were low-quality)."

	maxQuoteLen = 280
)

var (
	repeatedPunct = regexp.MustCompile(`[,.?!]{3,}`)
	numericToken  = regexp.MustCompile(`^[0-9,.\-]+$`)
)

// IsLowQuality heuristically flags garbled transcript text: cheap,
// language-agnostic proxies for auto-caption noise. Conservative by
// construction, it prefers keeping reasonable content.
func IsLowQuality(s string, minLen int) bool {
	txt := strings.TrimSpace(s)
	if len(txt) < minLen {
		return true
	}

	tokens := strings.Fields(txt)
	if len(tokens) == 0 {
		return true
	}
	n := float64(len(tokens))

	oneChar := 0
	nonAlnum := 0
	numeric := 0
	for _, t := range tokens {
		if len(t) == 1 {
			oneChar++
		}
		if !containsAlnum(t) {
			nonAlnum++
		}
		if numericToken.MatchString(t) {
			numeric++
		}
	}

	if float64(oneChar)/n > 0.25 {
		return true
	}
	if float64(nonAlnum)/n > 0.4 {
		return true
	}
	if repeatedPunct.MatchString(txt) {
		return true
	}
	if float64(numeric)/n > 0.6 {
		return true
	}
	return false
}

func containsAlnum(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Stats counts how the evidence filter treated a candidate set.
type Stats struct {
	Kept    int
	Dropped int
}

// FormatEvidence renders candidates as "[mm:ss] quote" lines, dropping
// low-quality segments when filter is set and truncating long quotes.
func FormatEvidence(candidates []index.Candidate, filter bool) (string, Stats) {
	if len(candidates) == 0 {
		return NoEvidence, Stats{}
	}

	var lines []string
	var stats Stats
	for _, c := range candidates {
		content := strings.ReplaceAll(strings.TrimSpace(c.Content), "\n", " ")
		if filter && IsLowQuality(content, 15) {
			stats.Dropped++
			continue
		}
		quote := content
		if runes := []rune(quote); len(runes) > maxQuoteLen {
			quote = string(runes[:maxQuoteLen-3]) + "..."
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", transcript.SecToMMSS(c.Start), quote))
		stats.Kept++
	}

	if stats.Kept == 0 {
		return NoGoodEvidence, stats
	}
	return strings.Join(lines, "\n"), stats
}
