package ingest

import (
	"strings"
	"testing"

	"github.com/clipiq/clipiq/src/transcript"
)

func fragmentsOfLength(n, per int) []transcript.Fragment {
	var frags []transcript.Fragment
	word := strings.Repeat("ab ", per/3)
	for i := 0; i < n; i++ {
		frags = append(frags, transcript.Fragment{
			Text:     strings.TrimSpace(word),
			Start:    float64(i * 5),
			Duration: 5,
		})
	}
	return frags
}

func TestBuildChunksEmpty(t *testing.T) {
	chunks, k := BuildChunks(nil, "vid")
	if chunks != nil {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
	if k != 5 {
		t.Fatalf("expected floor k of 5, got %d", k)
	}
}

func TestBuildChunksShortTranscript(t *testing.T) {
	frags := []transcript.Fragment{
		{Text: "hello world this is it", Start: 0, Duration: 4},
	}
	chunks, k := BuildChunks(frags, "vid")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if k != 1 {
		t.Fatalf("expected k=1 for a single chunk, got %d", k)
	}
	if !strings.HasPrefix(chunks[0].Content, "[Timestamp: 0s] ") {
		t.Fatalf("missing timestamp label: %q", chunks[0].Content)
	}
	if chunks[0].Start != 0 || chunks[0].End != 4 {
		t.Fatalf("wrong span: [%d,%d]", chunks[0].Start, chunks[0].End)
	}
}

func TestBuildChunksCoversAllText(t *testing.T) {
	frags := fragmentsOfLength(200, 60)
	chunks, _ := BuildChunks(frags, "vid")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	joined := strings.Join(func() []string {
		var all []string
		for _, c := range chunks {
			all = append(all, c.Content)
		}
		return all
	}(), " ")
	// Every fragment's text must survive chunking somewhere.
	if !strings.Contains(joined, "ab ab") {
		t.Fatal("fragment text lost during chunking")
	}
	for _, c := range chunks {
		if c.VideoID != "vid" {
			t.Fatalf("chunk lost video id: %+v", c)
		}
		if c.Start > c.End {
			t.Fatalf("inverted span: [%d,%d]", c.Start, c.End)
		}
	}
}

func TestBuildChunksTimestampsMonotonic(t *testing.T) {
	frags := fragmentsOfLength(300, 50)
	chunks, _ := BuildChunks(frags, "vid")
	last := -1
	for _, c := range chunks {
		if c.Start < last {
			t.Fatalf("chunk starts went backwards: %d after %d", c.Start, last)
		}
		last = c.Start
	}
}

func TestDynamicK(t *testing.T) {
	cases := []struct {
		chunks, want int
	}{
		{0, 0},
		{1, 1},
		{3, 3},
		{5, 5},
		{19, 5},
		{20, 6},
		{64, 9},
		{100, 9},
		{1024, 10},
		{100000, 10},
	}
	for _, c := range cases {
		if got := DynamicK(c.chunks); got != c.want {
			t.Errorf("DynamicK(%d) = %d, want %d", c.chunks, got, c.want)
		}
	}
}
