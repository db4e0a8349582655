package pipeline

import (
	"context"
	"log"
	"strings"

	"github.com/clipiq/clipiq/src/models"
	"github.com/clipiq/clipiq/src/session"
)

// Intent labels a chat turn with the handling path chosen by the router.
type Intent string

const (
	IntentSummary     Intent = "SUMMARY"
	IntentRAG         Intent = "RAG"
	IntentCompare     Intent = "COMPARE"
	IntentDualSummary Intent = "DUAL_SUMMARY"
	IntentError       Intent = "ERROR"
)

// classifyIntent asks the model to route the query. Any provider failure or
// unrecognized label falls back to RAG so a flaky router never blocks a turn.
func (p *Pipeline) classifyIntent(ctx context.Context, sess *session.Session, query string, twoVideos bool) Intent {
	history := renderHistory(sess.RecentHistory(4))
	raw, err := p.Model.Generate(ctx, routerPrompt(history, query, twoVideos))
	if err != nil {
		log.Printf("pipeline: intent classification failed, defaulting to RAG: %v", err)
		return IntentRAG
	}
	return parseIntent(models.Text(raw), twoVideos)
}

// parseIntent maps raw router output onto the closed intent enum.
// DUAL_SUMMARY is checked before SUMMARY because the latter is a substring.
func parseIntent(raw string, twoVideos bool) Intent {
	label := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case twoVideos && strings.Contains(label, "DUAL_SUMMARY"):
		return IntentDualSummary
	case twoVideos && strings.Contains(label, "COMPARE"):
		return IntentCompare
	case strings.Contains(label, "SUMMARY"):
		return IntentSummary
	case strings.Contains(label, "RAG"):
		return IntentRAG
	default:
		log.Printf("pipeline: unrecognized intent %q, defaulting to RAG", label)
		return IntentRAG
	}
}
