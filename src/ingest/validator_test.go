package ingest

import (
	"context"
	"math"
	"strings"
	"testing"
)

// scriptedEmbedder returns a healthy vector unless the text contains one of
// its poisoned substrings.
type scriptedEmbedder struct {
	poison map[string]bool
	calls  int
}

func (s *scriptedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	vec := make([]float32, 128)
	for i := range vec {
		vec[i] = 0.01 * float32(i)
	}
	for p := range s.poison {
		if strings.Contains(text, p) {
			vec[0] = float32(math.NaN())
		}
	}
	return vec, nil
}

func TestSanitizeContent(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  hello   world  ", "hello world"},
		{"line\x00with\acontrols", "linewithcontrols"},
		{"tabs\tand\nnewlines", "tabsandnewlines"},
		{"", ""},
	}
	for _, c := range cases {
		if got := SanitizeContent(c.in); got != c.want {
			t.Errorf("SanitizeContent(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateChunksDropsShort(t *testing.T) {
	chunks := []Chunk{
		{Content: "hi", VideoID: "v", Start: 0, End: 2},
		{Content: "this one is plenty long enough to keep around", VideoID: "v", Start: 2, End: 9},
	}
	out := ValidateChunks(context.Background(), chunks, &scriptedEmbedder{}, 2)
	if len(out) != 1 {
		t.Fatalf("expected 1 validated chunk, got %d", len(out))
	}
	if out[0].Start != 2 {
		t.Fatalf("wrong chunk survived: %+v", out[0])
	}
}

func TestValidateChunksMergesFailedIntoPrevious(t *testing.T) {
	emb := &scriptedEmbedder{poison: map[string]bool{"POISON": true}}
	chunks := []Chunk{
		{Content: "a healthy first chunk with enough text in it", VideoID: "v", Start: 0, End: 10},
		{Content: "POISON chunk whose embedding keeps coming back broken", VideoID: "v", Start: 10, End: 20},
	}
	out := ValidateChunks(context.Background(), chunks, emb, 2)
	if len(out) != 1 {
		t.Fatalf("expected merge into previous, got %d chunks", len(out))
	}
	if !strings.Contains(out[0].Content, "POISON") {
		t.Fatal("failed chunk text was dropped instead of merged")
	}
	// Metadata must stay that of the validated chunk.
	if out[0].Start != 0 || out[0].End != 10 {
		t.Fatalf("merge rewrote metadata: [%d,%d]", out[0].Start, out[0].End)
	}
}

func TestValidateChunksDropsFailedWithoutPredecessor(t *testing.T) {
	emb := &scriptedEmbedder{poison: map[string]bool{"POISON": true}}
	chunks := []Chunk{
		{Content: "POISON chunk arriving before anything validated yet", VideoID: "v", Start: 0, End: 5},
	}
	out := ValidateChunks(context.Background(), chunks, emb, 2)
	if len(out) != 0 {
		t.Fatalf("expected chunk to be dropped, got %d", len(out))
	}
}

func TestValidateChunksRetriesEmbedding(t *testing.T) {
	emb := &scriptedEmbedder{poison: map[string]bool{"POISON": true}}
	chunks := []Chunk{
		{Content: "POISON text that will fail on every attempt made", VideoID: "v", Start: 0, End: 5},
	}
	ValidateChunks(context.Background(), chunks, emb, 3)
	if emb.calls != 3 {
		t.Fatalf("expected 3 embed attempts, got %d", emb.calls)
	}
}
