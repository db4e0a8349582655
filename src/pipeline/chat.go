package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clipiq/clipiq/src/models"
	"github.com/clipiq/clipiq/src/retriever"
	"github.com/clipiq/clipiq/src/session"
	"github.com/clipiq/clipiq/src/transcript"
)

// Chat runs one single-video turn: process the video if needed, route the
// message, and answer through the summary or retrieval path.
func (p *Pipeline) Chat(ctx context.Context, sessionID, urlOrID, message string) Result {
	sess := p.Sessions.GetOrCreate(sessionID)
	sess.BeginTurn()
	defer sess.EndTurn()

	pv, err := p.ProcessVideo(ctx, sess, urlOrID)
	if err != nil {
		log.Printf("pipeline: %v", err)
		return errorResult(fmt.Sprintf(msgProcessingFailed, transcript.ExtractVideoID(urlOrID)))
	}
	if !usable(pv) {
		return errorResult(fmt.Sprintf(msgNoTranscript, pv.VideoID))
	}

	intent := p.classifyIntent(ctx, sess, message, false)
	log.Printf("pipeline: session %s intent %s", sess.ID, intent)

	if intent == IntentSummary {
		summary, err := p.universalSummary(ctx, sess, pv)
		if err != nil {
			log.Printf("pipeline: %v", err)
			return errorResult(msgGenerationFailed)
		}
		sess.AppendTurn(message, summary)
		return Result{Response: summary, Intent: IntentSummary}
	}
	return p.answerFromTranscript(ctx, sess, pv, message)
}

// Summarize serves the standalone summary operation. It shares the memoized
// summary with the SUMMARY chat intent.
func (p *Pipeline) Summarize(ctx context.Context, sessionID, urlOrID string) (string, transcript.Metadata) {
	sess := p.Sessions.GetOrCreate(sessionID)
	sess.BeginTurn()
	defer sess.EndTurn()

	pv, err := p.ProcessVideo(ctx, sess, urlOrID)
	if err != nil {
		log.Printf("pipeline: %v", err)
		videoID := transcript.ExtractVideoID(urlOrID)
		return fmt.Sprintf(msgProcessingFailed, videoID), transcript.UnknownMetadata(videoID)
	}
	if len(pv.Chunks) == 0 {
		return fmt.Sprintf(msgNoTranscript, pv.VideoID), pv.Metadata
	}
	summary, err := p.universalSummary(ctx, sess, pv)
	if err != nil {
		log.Printf("pipeline: %v", err)
		return msgGenerationFailed, pv.Metadata
	}
	return summary, pv.Metadata
}

// answerFromTranscript is the RAG path shared by single-video chat and the
// two-video router. Retrieval failure and generation failure each map to
// their own user-facing error; an empty post-filter evidence set falls back
// to answering from metadata alone.
func (p *Pipeline) answerFromTranscript(ctx context.Context, sess *session.Session, pv *session.ProcessedVideo, message string) Result {
	r := retriever.New(pv.Index, p.Constructor, p.Embedder, pv.DynamicK)
	docs, err := r.Query(ctx, message)
	if err != nil {
		log.Printf("pipeline: retrieval for %s: %v", pv.VideoID, err)
		return errorResult(msgRetrievalFailed)
	}

	good := docs[:0:0]
	for _, d := range docs {
		if !retriever.IsLowQuality(d.Content, 15) {
			good = append(good, d)
		}
	}
	if len(good) == 0 {
		log.Printf("pipeline: no usable evidence for %s, answering from metadata", pv.VideoID)
		return p.answerFromMetadata(ctx, sess, pv, message)
	}

	blocks := make([]string, 0, len(good))
	for _, d := range good {
		blocks = append(blocks, fmt.Sprintf("[%ds]: %s", d.Start, d.Content))
	}
	contextText := strings.Join(blocks, "\n\n")
	history := renderHistory(sess.RecentHistory(6))

	summary, _ := sess.Summary(pv.VideoID)
	if summary == "" {
		summary = pv.Metadata.Title
	}
	prompt := ragPrompt(contextText, history, message, summary, pv.VideoID, good[0].Start)

	raw, err := p.Model.Generate(ctx, prompt)
	if err != nil {
		log.Printf("pipeline: generation for %s: %v", pv.VideoID, err)
		return errorResult(msgGenerationFailed)
	}
	answer := models.Text(raw)
	sess.AppendTurn(message, answer)

	sources := make([]Source, 0, 3)
	for _, d := range good {
		sources = append(sources, Source{VideoID: d.VideoID, Timestamp: d.Start})
		if len(sources) == 3 {
			break
		}
	}
	return Result{Response: answer, Intent: IntentRAG, Sources: sources}
}

func (p *Pipeline) answerFromMetadata(ctx context.Context, sess *session.Session, pv *session.ProcessedVideo, message string) Result {
	raw, err := p.Model.Generate(ctx, metadataFallbackPrompt(message, pv.Metadata))
	if err != nil {
		log.Printf("pipeline: metadata fallback for %s: %v", pv.VideoID, err)
		return errorResult(msgGenerationFailed)
	}
	answer := models.Text(raw)
	sess.AppendTurn(message, answer)
	return Result{Response: answer, Intent: IntentRAG}
}
