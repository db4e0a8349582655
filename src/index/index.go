package index

import (
	"context"
	"math"

	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/ingest"
)

// Candidate is one retrieved transcript segment with its similarity
// score.
type Candidate struct {
	Content string
	VideoID string
	Start   int
	End     int
	Score   float64
}

// Op is a filter comparison operator.
type Op string

const (
	OpLte Op = "lte"
	OpGte Op = "gte"
	OpEq  Op = "eq"
)

// Filter field names understood by every backend.
const (
	FieldStart   = "start"
	FieldEnd     = "end"
	FieldVideoID = "video_id"
)

// Filter is a structured predicate over chunk metadata, produced by the
// query constructor from phrases like "after 12:00".
type Filter struct {
	Field   string
	Op      Op
	Seconds int    // start / end comparisons
	Video   string // video_id equality
}

// Matches reports whether the candidate satisfies the predicate.
// Unknown fields or operators match everything rather than silently
// emptying a result set.
func (f Filter) Matches(c Candidate) bool {
	switch f.Field {
	case FieldStart:
		return compareInt(c.Start, f.Op, f.Seconds)
	case FieldEnd:
		return compareInt(c.End, f.Op, f.Seconds)
	case FieldVideoID:
		if f.Op == OpEq {
			return c.VideoID == f.Video
		}
	}
	return true
}

func compareInt(v int, op Op, bound int) bool {
	switch op {
	case OpLte:
		return v <= bound
	case OpGte:
		return v >= bound
	case OpEq:
		return v == bound
	}
	return true
}

// Index is a per-video nearest-neighbor structure over validated
// chunks. A video without validated chunks has no index at all.
type Index interface {
	Search(ctx context.Context, queryEmbedding []float32, filters []Filter, k int) ([]Candidate, error)
	Len() int
}

// Builder turns a video's validated chunks into a searchable index.
type Builder interface {
	Build(ctx context.Context, videoID string, chunks []ingest.Chunk, embedder embed.Embedder) (Index, error)
}

// CosineSimilarity computes the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	for i := 0; i < length; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
