package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/clipiq/clipiq/src/index"
	"github.com/clipiq/clipiq/src/models"
)

// ConstructedQuery is the result of self-query translation: the
// semantic portion of the user's text plus structured predicates over
// chunk metadata.
type ConstructedQuery struct {
	Query   string
	Filters []index.Filter
}

// QueryConstructor translates free text into a constructed query.
type QueryConstructor interface {
	Construct(ctx context.Context, freeText string) (ConstructedQuery, error)
}

// PassthroughConstructor uses the raw text with no filters.
type PassthroughConstructor struct{}

func (PassthroughConstructor) Construct(_ context.Context, freeText string) (ConstructedQuery, error) {
	return ConstructedQuery{Query: freeText}, nil
}

const constructorPrompt = `You translate a question about a video transcript into a search query plus metadata filters.

Chunk metadata fields:
- start: segment start time in seconds (integer)
- end: segment end time in seconds (integer)
- video_id: the video identifier (string)

Rules:
- If the user asks about "at 12:00", emit start <= 720 AND end >= 720.
- If the user asks "after 12:00", emit start >= 720.
- If the user asks "before 12:00", emit start <= 720.
- ALWAYS convert minutes:seconds to total seconds (min * 60 + sec).
- Remove time-related keywords from the semantic query.
- Allowed ops: lte, gte, eq.

Respond with ONLY a JSON object, no prose:
{"query": "<semantic search text>", "filters": [{"field": "start", "op": "gte", "seconds": 720}]}

QUESTION:
%s`

// LLMQueryConstructor delegates translation to a completion provider
// constrained to a small JSON schema. Unparseable output degrades to a
// semantic-only query; only provider failure is an error.
type LLMQueryConstructor struct {
	Model models.Agent
}

func NewLLMQueryConstructor(model models.Agent) *LLMQueryConstructor {
	return &LLMQueryConstructor{Model: model}
}

type constructedJSON struct {
	Query   string `json:"query"`
	Filters []struct {
		Field   string `json:"field"`
		Op      string `json:"op"`
		Seconds int    `json:"seconds"`
		Video   string `json:"video_id"`
	} `json:"filters"`
}

func (qc *LLMQueryConstructor) Construct(ctx context.Context, freeText string) (ConstructedQuery, error) {
	raw, err := qc.Model.Generate(ctx, fmt.Sprintf(constructorPrompt, freeText))
	if err != nil {
		return ConstructedQuery{}, fmt.Errorf("query constructor: %w", err)
	}

	parsed, ok := parseConstructed(models.Text(raw))
	if !ok {
		log.Printf("retriever: unparseable constructor output; using semantic-only query")
		return ConstructedQuery{Query: freeText}, nil
	}
	if strings.TrimSpace(parsed.Query) == "" {
		parsed.Query = freeText
	}
	return parsed, nil
}

func parseConstructed(raw string) (ConstructedQuery, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ConstructedQuery{}, false
	}

	var decoded constructedJSON
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decoded); err != nil {
		return ConstructedQuery{}, false
	}

	out := ConstructedQuery{Query: decoded.Query}
	for _, f := range decoded.Filters {
		filter := index.Filter{Seconds: f.Seconds, Video: f.Video}
		switch f.Field {
		case index.FieldStart, index.FieldEnd, index.FieldVideoID:
			filter.Field = f.Field
		default:
			continue
		}
		switch index.Op(f.Op) {
		case index.OpLte, index.OpGte, index.OpEq:
			filter.Op = index.Op(f.Op)
		default:
			continue
		}
		out.Filters = append(out.Filters, filter)
	}
	return out, true
}
