package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clipiq/clipiq/src/models"
	"github.com/clipiq/clipiq/src/retriever"
	"github.com/clipiq/clipiq/src/session"
)

// compareTopK caps per-side evidence for comparison turns. Comparison reads
// a fixed slice per video rather than the per-video dynamic count.
const compareTopK = 5

// Compare runs one comparison turn over two videos.
func (p *Pipeline) Compare(ctx context.Context, sessionID, urlA, urlB, question string) Result {
	sess := p.Sessions.GetOrCreate(sessionID)
	sess.BeginTurn()
	defer sess.EndTurn()
	return p.compareLocked(ctx, sess, urlA, urlB, question)
}

func (p *Pipeline) compareLocked(ctx context.Context, sess *session.Session, urlA, urlB, question string) Result {
	pvA, errA := p.ProcessVideo(ctx, sess, urlA)
	pvB, errB := p.ProcessVideo(ctx, sess, urlB)
	if errA != nil || errB != nil {
		log.Printf("pipeline: compare processing: %v / %v", errA, errB)
		return errorResult(msgComparisonFailed)
	}

	// Both transcripts unusable: refuse without burning a generation call.
	if pvA.Index == nil && pvB.Index == nil {
		return Result{
			Response: msgInsufficientData,
			Intent:   IntentError,
			VideoA:   &pvA.Metadata,
			VideoB:   &pvB.Metadata,
		}
	}

	evidenceA, statsA := p.sideEvidence(ctx, pvA, question)
	evidenceB, statsB := p.sideEvidence(ctx, pvB, question)

	prompt := comparisonPrompt(
		question,
		metadataBlock(pvA.Metadata, statsA.Kept, statsA.Dropped),
		metadataBlock(pvB.Metadata, statsB.Kept, statsB.Dropped),
		evidenceA,
		evidenceB,
	)
	if statsA.Kept == 0 || statsB.Kept == 0 {
		prompt += "\n\nNOTE: One or both videos have little or no usable transcript evidence. Lean on metadata and say so explicitly."
	}

	raw, err := p.Model.Generate(ctx, prompt)
	if err != nil {
		log.Printf("pipeline: comparison generation: %v", err)
		return errorResult(msgComparisonFailed)
	}
	answer := models.Text(raw)
	sess.AppendTurn(question, answer)
	return Result{
		Response: answer,
		Intent:   IntentCompare,
		VideoA:   &pvA.Metadata,
		VideoB:   &pvB.Metadata,
	}
}

// sideEvidence retrieves one video's evidence through the shared cache and
// formats it with low-quality filtering. Retrieval failure degrades to the
// no-evidence sentinel rather than failing the comparison.
func (p *Pipeline) sideEvidence(ctx context.Context, pv *session.ProcessedVideo, question string) (string, retriever.Stats) {
	if pv.Index == nil {
		return retriever.FormatEvidence(nil, true)
	}
	r := retriever.New(pv.Index, p.Constructor, p.Embedder, pv.DynamicK)
	key := retriever.Key("youtube-"+pv.VideoID, question)
	docs, err := p.Cache.GetOrRetrieve(ctx, key, r, question, compareTopK)
	if err != nil {
		log.Printf("pipeline: evidence retrieval for %s: %v", pv.VideoID, err)
		docs = nil
	}
	return retriever.FormatEvidence(docs, true)
}

// secondaryCues routes "the second video" style questions at the secondary
// video in the single-target fallback path.
var secondaryCues = []string{"second", "video b", "video 2", "secondary"}

// HandleQuery is the two-video entry point: it routes the query to a dual
// summary, a comparison, or a single-video answer against whichever video
// the phrasing points at.
func (p *Pipeline) HandleQuery(ctx context.Context, sessionID, urlA, urlB, query string) Result {
	if strings.TrimSpace(urlA) == "" || strings.TrimSpace(urlB) == "" {
		return errorResult(msgMissingVideos)
	}
	sess := p.Sessions.GetOrCreate(sessionID)
	sess.BeginTurn()
	defer sess.EndTurn()

	intent := p.classifyIntent(ctx, sess, query, true)
	log.Printf("pipeline: session %s two-video intent %s", sess.ID, intent)

	switch intent {
	case IntentDualSummary:
		return p.dualSummaryLocked(ctx, sess, urlA, urlB, query)
	case IntentCompare:
		return p.compareLocked(ctx, sess, urlA, urlB, query)
	}

	target := urlA
	lowered := strings.ToLower(query)
	for _, cue := range secondaryCues {
		if strings.Contains(lowered, cue) {
			target = urlB
			break
		}
	}
	pv, err := p.ProcessVideo(ctx, sess, target)
	if err != nil {
		log.Printf("pipeline: %v", err)
		return errorResult(msgRetrievalFailed)
	}
	if !usable(pv) {
		return errorResult(fmt.Sprintf(msgNoTranscript, pv.VideoID))
	}
	return p.answerFromTranscript(ctx, sess, pv, query)
}

func (p *Pipeline) dualSummaryLocked(ctx context.Context, sess *session.Session, urlA, urlB, query string) Result {
	pvA, errA := p.ProcessVideo(ctx, sess, urlA)
	pvB, errB := p.ProcessVideo(ctx, sess, urlB)
	if errA != nil || errB != nil {
		log.Printf("pipeline: dual summary processing: %v / %v", errA, errB)
		return errorResult(msgGenerationFailed)
	}
	if len(pvA.Chunks) == 0 && len(pvB.Chunks) == 0 {
		sess.AppendTurn(query, msgInsufficientData)
		return Result{
			Response: msgInsufficientData,
			Intent:   IntentError,
			VideoA:   &pvA.Metadata,
			VideoB:   &pvB.Metadata,
		}
	}

	textA := sampleChunks(pvA.Chunks, summaryBudget/2)
	textB := sampleChunks(pvB.Chunks, summaryBudget/2)
	if textA == "" {
		textA = "(no transcript available)"
	}
	if textB == "" {
		textB = "(no transcript available)"
	}

	raw, err := p.Model.Generate(ctx, dualSummaryPrompt(pvA.Metadata, pvB.Metadata, textA, textB))
	if err != nil {
		log.Printf("pipeline: dual summary generation: %v", err)
		return errorResult(msgGenerationFailed)
	}
	answer := models.Text(raw)
	sess.AppendTurn(query, answer)
	return Result{
		Response: answer,
		Intent:   IntentDualSummary,
		VideoA:   &pvA.Metadata,
		VideoB:   &pvB.Metadata,
	}
}
