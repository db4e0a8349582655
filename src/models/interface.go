package models

import (
	"context"
	"fmt"
)

// Agent is the sole generation surface: one prompt in, one completion
// out.
type Agent interface {
	Generate(context.Context, string) (any, error)
}

// Text coerces a Generate result to a string.
func Text(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
