package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/ingest"
)

// MemoryIndex implements Index for tests and single-process
// deployments: a flat slice scanned under a read lock.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	chunk     ingest.Chunk
	embedding []float32
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add appends a chunk with its precomputed embedding.
func (ix *MemoryIndex) Add(chunk ingest.Chunk, embedding []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = append(ix.entries, memoryEntry{
		chunk:     chunk,
		embedding: append([]float32(nil), embedding...),
	})
}

func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

func (ix *MemoryIndex) Search(_ context.Context, queryEmbedding []float32, filters []Filter, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	candidates := make([]Candidate, 0, len(ix.entries))
	for _, e := range ix.entries {
		c := Candidate{
			Content: e.chunk.Content,
			VideoID: e.chunk.VideoID,
			Start:   e.chunk.Start,
			End:     e.chunk.End,
			Score:   CosineSimilarity(queryEmbedding, e.embedding),
		}
		if !matchesAll(c, filters) {
			continue
		}
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func matchesAll(c Candidate, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(c) {
			return false
		}
	}
	return true
}

// MemoryBuilder embeds validated chunks and assembles a MemoryIndex.
type MemoryBuilder struct{}

func (MemoryBuilder) Build(ctx context.Context, videoID string, chunks []ingest.Chunk, embedder embed.Embedder) (Index, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	ix := NewMemoryIndex()
	for _, chunk := range chunks {
		if chunk.VideoID == "" {
			chunk.VideoID = videoID
		}
		vec, err := embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("index build for %s: %w", videoID, err)
		}
		ix.Add(chunk, vec)
	}
	return ix, nil
}
