package retriever

import (
	"strings"
	"testing"

	"github.com/clipiq/clipiq/src/index"
)

func TestIsLowQuality(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"short", true},
		{"a reasonable sentence about machine learning topics", false},
		{"a a a a a a a a a a a a", true},
		{"normal words then suddenly ,,,, punctuation runs", true},
		{"100 200 300 400 500 600", true},
		{"!! ?? ** -- ~~ ++ %% @@ ## $$", true},
		{"the model processes 100 tokens per second quickly", false},
	}
	for _, c := range cases {
		if got := IsLowQuality(c.text, 15); got != c.want {
			t.Errorf("IsLowQuality(%q) = %t, want %t", c.text, got, c.want)
		}
	}
}

func TestFormatEvidenceEmpty(t *testing.T) {
	out, stats := FormatEvidence(nil, true)
	if out != NoEvidence {
		t.Fatalf("got %q", out)
	}
	if stats.Kept != 0 || stats.Dropped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestFormatEvidenceAllFiltered(t *testing.T) {
	cands := []index.Candidate{
		{Content: "a a a a a a a a a a", Start: 30},
		{Content: "1 2 3 4 5 6 7 8 9 10", Start: 60},
	}
	out, stats := FormatEvidence(cands, true)
	if out != NoGoodEvidence {
		t.Fatalf("got %q", out)
	}
	if stats.Kept != 0 || stats.Dropped != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestFormatEvidenceLines(t *testing.T) {
	cands := []index.Candidate{
		{Content: "the speaker introduces gradient descent here", Start: 75},
		{Content: "x x x x x x x x", Start: 90},
	}
	out, stats := FormatEvidence(cands, true)
	if stats.Kept != 1 || stats.Dropped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !strings.HasPrefix(out, "[01:15] ") {
		t.Fatalf("missing mm:ss prefix: %q", out)
	}
}

func TestFormatEvidenceTruncatesLongQuotes(t *testing.T) {
	long := strings.Repeat("word ", 100)
	out, _ := FormatEvidence([]index.Candidate{{Content: long, Start: 0}}, false)
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected ellipsis suffix: %q", out)
	}
	line := strings.TrimPrefix(out, "[00:00] ")
	if len([]rune(line)) != 280 {
		t.Fatalf("expected 280-rune quote, got %d", len([]rune(line)))
	}
}
