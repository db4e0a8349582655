package ingest

import (
	"context"
	"log"
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/clipiq/clipiq/src/embed"
)

const (
	minValidLength = 15
	minVectorLen   = 100

	validateBackoff = 150 * time.Millisecond
)

// ValidateChunks filters the chunk list down to chunks that are known
// to embed successfully. Chunks whose embedding fails after retries are
// merged textually into the previous validated chunk so no transcript
// content is lost; a failing chunk with no predecessor is dropped.
// The previous chunk's time range is left unchanged.
func ValidateChunks(ctx context.Context, chunks []Chunk, embedder embed.Embedder, retries int) []Chunk {
	if retries <= 0 {
		retries = 2
	}

	var validated []Chunk
	for _, chunk := range chunks {
		content := SanitizeContent(chunk.Content)
		if len(content) < minValidLength {
			continue
		}

		if embedOK(ctx, embedder, content, retries) {
			chunk.Content = content
			validated = append(validated, chunk)
			continue
		}

		if len(validated) > 0 {
			prev := &validated[len(validated)-1]
			prev.Content = prev.Content + " " + content
		}
	}

	log.Printf("ingest: validated %d/%d chunks for embedding", len(validated), len(chunks))
	return validated
}

// SanitizeContent trims, strips Unicode control/format characters,
// collapses whitespace runs, and applies NFKC normalization.
func SanitizeContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.Map(func(r rune) rune {
		if unicode.In(r, unicode.C) {
			return -1
		}
		return r
	}, content)
	content = strings.Join(strings.Fields(content), " ")
	return norm.NFKC.String(content)
}

// embedOK attempts the embedding up to retries times with a linearly
// increasing backoff. An attempt succeeds only when the vector is
// non-empty, at least minVectorLen long, and entirely finite.
func embedOK(ctx context.Context, embedder embed.Embedder, content string, retries int) bool {
	for attempt := 1; attempt <= retries; attempt++ {
		vec, err := embedder.Embed(ctx, content)
		if err == nil && vectorHealthy(vec) {
			return true
		}
		if attempt < retries {
			timer := time.NewTimer(time.Duration(attempt) * validateBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return false
			case <-timer.C:
			}
		}
	}
	return false
}

func vectorHealthy(vec []float32) bool {
	if len(vec) < minVectorLen {
		return false
	}
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
