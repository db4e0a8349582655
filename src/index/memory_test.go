package index

import (
	"context"
	"math"
	"testing"

	"github.com/clipiq/clipiq/src/ingest"
)

func unitVec(dim, hot int) []float32 {
	v := make([]float32, dim)
	v[hot] = 1
	return v
}

func TestMemoryIndexRanksBySimilarity(t *testing.T) {
	ix := NewMemoryIndex()
	ix.Add(ingest.Chunk{Content: "about cats", VideoID: "v", Start: 0, End: 10}, unitVec(8, 0))
	ix.Add(ingest.Chunk{Content: "about dogs", VideoID: "v", Start: 10, End: 20}, unitVec(8, 1))
	ix.Add(ingest.Chunk{Content: "about birds", VideoID: "v", Start: 20, End: 30}, unitVec(8, 2))

	got, err := ix.Search(context.Background(), unitVec(8, 1), nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Content != "about dogs" {
		t.Fatalf("best match: %q", got[0].Content)
	}
	if math.Abs(got[0].Score-1) > 1e-9 {
		t.Fatalf("score: %f", got[0].Score)
	}
}

func TestMemoryIndexAppliesFilters(t *testing.T) {
	ix := NewMemoryIndex()
	ix.Add(ingest.Chunk{Content: "early", VideoID: "v", Start: 0, End: 60}, unitVec(4, 0))
	ix.Add(ingest.Chunk{Content: "late", VideoID: "v", Start: 600, End: 660}, unitVec(4, 0))

	got, err := ix.Search(context.Background(), unitVec(4, 0), []Filter{
		{Field: FieldStart, Op: OpGte, Seconds: 300},
	}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "late" {
		t.Fatalf("filter result: %+v", got)
	}
}

func TestFilterUnknownFieldMatchesEverything(t *testing.T) {
	f := Filter{Field: "mood", Op: OpEq, Seconds: 1}
	if !f.Matches(Candidate{Start: 99}) {
		t.Fatal("unknown field must not exclude candidates")
	}
}

func TestMemoryBuilderEmptyChunks(t *testing.T) {
	ix, err := MemoryBuilder{}.Build(context.Background(), "v", nil, flatEmbedder{})
	if err != nil {
		t.Fatal(err)
	}
	if ix != nil {
		t.Fatal("expected nil index for empty chunk set")
	}
}

func TestMemoryBuilderAssignsVideoID(t *testing.T) {
	chunks := []ingest.Chunk{{Content: "chunk content here", Start: 0, End: 5}}
	ixAny, err := MemoryBuilder{}.Build(context.Background(), "vid123", chunks, flatEmbedder{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ixAny.Search(context.Background(), unitVec(128, 0), nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].VideoID != "vid123" {
		t.Fatalf("video id not assigned: %+v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity(nil, unitVec(4, 0)); got != 0 {
		t.Fatalf("empty vector: %f", got)
	}
	if got := CosineSimilarity(unitVec(4, 0), unitVec(4, 1)); got != 0 {
		t.Fatalf("orthogonal: %f", got)
	}
	if got := CosineSimilarity(unitVec(4, 2), unitVec(4, 2)); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical: %f", got)
	}
}

// flatEmbedder returns an all-ones vector so every chunk embeds fine.
type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	v := make([]float32, 128)
	for i := range v {
		v[i] = 1
	}
	return v, nil
}
