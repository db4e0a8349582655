package embed

import (
	"context"
	"math"
	"time"
)

// SafeEmbedder wraps any Embedder with retry-on-transient-failure and
// NaN/Inf sanitization. Composition rather than a provider subclass, so
// any backend gains the same guarantees.
type SafeEmbedder struct {
	Inner   Embedder
	Retries int
	Backoff time.Duration
}

// Safe decorates inner with the default schedule: two attempts with a
// linearly increasing backoff.
func Safe(inner Embedder) *SafeEmbedder {
	return &SafeEmbedder{Inner: inner, Retries: 2, Backoff: 200 * time.Millisecond}
}

func (s *SafeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	retries := s.Retries
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		vec, err := s.Inner.Embed(ctx, text)
		if err == nil {
			return sanitizeVector(vec), nil
		}
		lastErr = err
		if attempt < retries {
			if err := sleep(ctx, time.Duration(attempt)*s.Backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// sanitizeVector zeroes non-finite elements so downstream similarity
// math never sees NaN or Inf.
func sanitizeVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out[i] = 0
			continue
		}
		out[i] = v
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
