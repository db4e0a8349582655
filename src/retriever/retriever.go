package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/index"
)

// ErrRetrieval wraps any failure inside a retrieval call. Callers catch
// it at the chat-turn boundary and degrade instead of aborting.
var ErrRetrieval = errors.New("retrieval failed")

// Retriever composes an index, a query constructor, and the dynamic
// result count into one callable contract. It owns no state; one
// Retriever exists per processed video.
type Retriever struct {
	Index       index.Index
	Constructor QueryConstructor
	Embedder    embed.Embedder
	K           int
}

func New(ix index.Index, qc QueryConstructor, embedder embed.Embedder, k int) *Retriever {
	if k <= 0 {
		k = 5
	}
	return &Retriever{Index: ix, Constructor: qc, Embedder: embedder, K: k}
}

// Query runs self-query construction, embeds the semantic part, and
// searches the index under the extracted filters.
func (r *Retriever) Query(ctx context.Context, text string) ([]index.Candidate, error) {
	if r.Index == nil {
		return nil, fmt.Errorf("%w: no index", ErrRetrieval)
	}
	cq, err := r.Constructor.Construct(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	vec, err := r.Embedder.Embed(ctx, cq.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrieval, err)
	}
	candidates, err := r.Index.Search(ctx, vec, cq.Filters, r.K)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrRetrieval, err)
	}
	return candidates, nil
}
