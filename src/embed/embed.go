package embed

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrNotSupported is returned by providers that produce no embedding.
var ErrNotSupported = errors.New("embeddings not supported by this provider")

// ---------- Dummy (fallback) ----------

type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding produces a deterministic 768-dim vector for tests and
// keyless local runs.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, 768)
	for i, ch := range []byte(text) {
		vec[i%768] += float32(ch) / 255.0
	}
	return vec
}

// Auto chooses a provider from env:
// CLIPIQ_EMBED_PROVIDER=ollama|openai
// CLIPIQ_EMBED_MODEL=<model string>
// If nothing usable is configured it falls back to the dummy embedder.
func Auto() Embedder {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("CLIPIQ_EMBED_PROVIDER")))
	model := strings.TrimSpace(os.Getenv("CLIPIQ_EMBED_MODEL"))

	switch provider {
	case "openai":
		if e, err := NewOpenAIEmbedder(model); err == nil {
			return e
		}
	case "ollama", "":
		if e, err := NewOllamaEmbedder(model); err == nil {
			return e
		}
	}

	log.Printf("embed: falling back to DummyEmbedder")
	return DummyEmbedder{}
}
