package retriever

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/clipiq/clipiq/src/index"
)

// Cache memoizes retrieval results per (index, query) key for the
// process lifetime. One retrieval is in flight per key; a caller that
// loses the try-lock race serves a just-landed hit or performs its own
// best-effort retrieval and publishes it last-writer-wins. Retrieval is
// idempotent per identical query, so the relaxed consistency is safe.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]index.Candidate
	locks   map[string]*sync.Mutex
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string][]index.Candidate),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Key builds the memoization key from an index identity and the query.
func Key(indexID, query string) string {
	return indexID + "__" + strings.ToLower(strings.TrimSpace(query))
}

func (c *Cache) lookup(key string) ([]index.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cands, ok := c.entries[key]
	return cands, ok
}

func (c *Cache) publish(key string, cands []index.Candidate) {
	c.mu.Lock()
	c.entries[key] = cands
	c.mu.Unlock()
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// GetOrRetrieve returns cached candidates for the key or runs the
// retriever, deduplicating by first-seen (video_id, start) and
// truncating to k.
func (c *Cache) GetOrRetrieve(ctx context.Context, key string, r *Retriever, query string, k int) ([]index.Candidate, error) {
	if cached, ok := c.lookup(key); ok {
		log.Printf("retriever: cache hit for key=%s", key)
		return truncate(cached, k), nil
	}

	lock := c.keyLock(key)
	if !lock.TryLock() {
		// Another retrieval is in progress for this key; serve a hit
		// if one just landed, else do our own best-effort pass.
		log.Printf("retriever: retrieval in progress for key=%s; fast fallback", key)
		if cached, ok := c.lookup(key); ok {
			return truncate(cached, k), nil
		}
		candidates, err := r.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		deduped := truncate(dedupe(candidates), k)
		c.publish(key, deduped)
		return deduped, nil
	}
	defer lock.Unlock()

	candidates, err := r.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	deduped := truncate(dedupe(candidates), k)
	c.publish(key, deduped)
	log.Printf("retriever: cached retrieval for key=%s -> %d candidates", key, len(deduped))
	return deduped, nil
}

// dedupe keeps the first-seen candidate per (video_id, start) pair.
func dedupe(candidates []index.Candidate) []index.Candidate {
	type pair struct {
		videoID string
		start   int
	}
	seen := make(map[pair]struct{}, len(candidates))
	out := make([]index.Candidate, 0, len(candidates))
	for _, c := range candidates {
		p := pair{c.VideoID, c.Start}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, c)
	}
	return out
}

func truncate(candidates []index.Candidate, k int) []index.Candidate {
	if k > 0 && len(candidates) > k {
		return candidates[:k]
	}
	return candidates
}
