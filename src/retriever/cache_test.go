package retriever

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/clipiq/clipiq/src/index"
)

// fixedIndex serves a canned candidate list and counts searches.
type fixedIndex struct {
	mu         sync.Mutex
	candidates []index.Candidate
	searches   int
}

func (f *fixedIndex) Search(_ context.Context, _ []float32, _ []index.Filter, k int) ([]index.Candidate, error) {
	f.mu.Lock()
	f.searches++
	f.mu.Unlock()
	if k > 0 && len(f.candidates) > k {
		return f.candidates[:k], nil
	}
	return f.candidates, nil
}

func (f *fixedIndex) Len() int { return len(f.candidates) }

type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, 128), nil
}

func newFixedRetriever(cands []index.Candidate) (*Retriever, *fixedIndex) {
	ix := &fixedIndex{candidates: cands}
	return New(ix, PassthroughConstructor{}, flatEmbedder{}, 10), ix
}

func TestCacheKeyNormalization(t *testing.T) {
	if Key("youtube-abc", "  What Is This?  ") != "youtube-abc__what is this?" {
		t.Fatalf("unexpected key: %q", Key("youtube-abc", "  What Is This?  "))
	}
}

func TestCacheMemoizesRetrieval(t *testing.T) {
	r, ix := newFixedRetriever([]index.Candidate{
		{Content: "one", VideoID: "v", Start: 0},
		{Content: "two", VideoID: "v", Start: 30},
	})
	c := NewCache()
	key := Key("youtube-v", "query")

	first, err := c.GetOrRetrieve(context.Background(), key, r, "query", 5)
	if err != nil {
		t.Fatalf("first retrieval: %v", err)
	}
	second, err := c.GetOrRetrieve(context.Background(), key, r, "query", 5)
	if err != nil {
		t.Fatalf("second retrieval: %v", err)
	}
	if ix.searches != 1 {
		t.Fatalf("expected one index search, got %d", ix.searches)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("result sizes: %d, %d", len(first), len(second))
	}
}

func TestCacheDeduplicates(t *testing.T) {
	r, _ := newFixedRetriever([]index.Candidate{
		{Content: "first copy", VideoID: "v", Start: 10, Score: 0.9},
		{Content: "second copy", VideoID: "v", Start: 10, Score: 0.8},
		{Content: "other", VideoID: "v", Start: 40, Score: 0.7},
	})
	c := NewCache()

	out, err := c.GetOrRetrieve(context.Background(), Key("ix", "q"), r, "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected dedupe to 2, got %d", len(out))
	}
	if out[0].Content != "first copy" {
		t.Fatalf("dedupe must keep first-seen, got %q", out[0].Content)
	}
}

func TestCacheTruncatesToK(t *testing.T) {
	var cands []index.Candidate
	for i := 0; i < 8; i++ {
		cands = append(cands, index.Candidate{Content: fmt.Sprintf("c%d", i), VideoID: "v", Start: i * 10})
	}
	r, _ := newFixedRetriever(cands)
	c := NewCache()

	out, err := c.GetOrRetrieve(context.Background(), Key("ix", "q"), r, "q", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(out))
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	r, _ := newFixedRetriever([]index.Candidate{
		{Content: "only", VideoID: "v", Start: 0},
	})
	c := NewCache()
	key := Key("ix", "q")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.GetOrRetrieve(context.Background(), key, r, "q", 5)
			if err != nil {
				t.Errorf("concurrent retrieval: %v", err)
				return
			}
			if len(out) != 1 {
				t.Errorf("expected 1 candidate, got %d", len(out))
			}
		}()
	}
	wg.Wait()
}
