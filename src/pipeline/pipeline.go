package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/index"
	"github.com/clipiq/clipiq/src/ingest"
	"github.com/clipiq/clipiq/src/models"
	"github.com/clipiq/clipiq/src/retriever"
	"github.com/clipiq/clipiq/src/session"
	"github.com/clipiq/clipiq/src/transcript"
)

// summaryBudget caps how many characters of transcript are fed to the
// universal summary prompt. Longer videos are stride-sampled down to it.
const summaryBudget = 500_000

// User-facing responses for turns that cannot be served.
const (
	msgNoTranscript     = "Transcript not available for video %s. Please provide a video with captions."
	msgProcessingFailed = "Error processing video %s."
	msgRetrievalFailed  = "Error retrieving relevant documents."
	msgGenerationFailed = "Error generating an answer."
	msgComparisonFailed = "Error during comparison."
	msgInsufficientData = "INSUFFICIENT_DATA: Transcripts missing for both videos. Cannot compare."
	msgMissingVideos    = "Both a primary and a secondary video are required."
)

// Pipeline wires transcript ingestion, retrieval, and generation into the
// session-scoped chat operations served by the API layer.
type Pipeline struct {
	Sessions    *session.Store
	Transcripts transcript.Service
	Metadata    transcript.MetadataService
	Embedder    embed.Embedder
	Builder     index.Builder
	Model       models.Agent
	Constructor retriever.QueryConstructor
	Cache       *retriever.Cache

	// EmbedRetries is passed through to chunk validation.
	EmbedRetries int
}

// Config carries the collaborators for New. Zero fields get working defaults
// so tests can construct a pipeline from just a model and an embedder.
type Config struct {
	Sessions     *session.Store
	Transcripts  transcript.Service
	Metadata     transcript.MetadataService
	Embedder     embed.Embedder
	Builder      index.Builder
	Model        models.Agent
	Constructor  retriever.QueryConstructor
	Cache        *retriever.Cache
	EmbedRetries int
}

func New(cfg Config) *Pipeline {
	p := &Pipeline{
		Sessions:     cfg.Sessions,
		Transcripts:  cfg.Transcripts,
		Metadata:     cfg.Metadata,
		Embedder:     cfg.Embedder,
		Builder:      cfg.Builder,
		Model:        cfg.Model,
		Constructor:  cfg.Constructor,
		Cache:        cfg.Cache,
		EmbedRetries: cfg.EmbedRetries,
	}
	if p.Sessions == nil {
		p.Sessions = session.NewStore(session.DefaultCapacity)
	}
	if p.Transcripts == nil {
		p.Transcripts = transcript.NewYouTubeTranscripts()
	}
	if p.Metadata == nil {
		p.Metadata = &transcript.YouTubeMetadata{}
	}
	if p.Embedder == nil {
		p.Embedder = embed.Safe(embed.Auto())
	}
	if p.Builder == nil {
		p.Builder = index.MemoryBuilder{}
	}
	if p.Model == nil {
		p.Model = models.NewDummyLLM("")
	}
	if p.Constructor == nil {
		p.Constructor = retriever.NewLLMQueryConstructor(p.Model)
	}
	if p.Cache == nil {
		p.Cache = retriever.NewCache()
	}
	return p
}

// Source points a chat answer back at a transcript location.
type Source struct {
	VideoID   string `json:"video_id"`
	Timestamp int    `json:"timestamp"`
}

// Result is the structured outcome of one chat turn. Failures are reported
// through Intent = ERROR with a user-facing Response, never an error return.
type Result struct {
	Response string               `json:"response"`
	Intent   Intent               `json:"intent"`
	Sources  []Source             `json:"sources,omitempty"`
	VideoA   *transcript.Metadata `json:"video_a,omitempty"`
	VideoB   *transcript.Metadata `json:"video_b,omitempty"`
}

func errorResult(response string) Result {
	return Result{Response: response, Intent: IntentError}
}

// ProcessVideo fetches, chunks, validates, and indexes a video once per
// session. Repeat calls return the memoized record. A missing transcript is
// not an error: the record comes back with no chunks and a nil index, and
// the chat operations surface that to the user.
func (p *Pipeline) ProcessVideo(ctx context.Context, sess *session.Session, urlOrID string) (*session.ProcessedVideo, error) {
	videoID := transcript.ExtractVideoID(urlOrID)
	if pv, ok := sess.Processed(videoID); ok {
		return pv, nil
	}

	meta := p.fetchMetadata(ctx, videoID)

	fragments, err := p.Transcripts.Fetch(ctx, videoID, nil)
	if err != nil {
		log.Printf("pipeline: transcript fetch for %s: %v", videoID, err)
		fragments = nil
	}

	chunks, k := ingest.BuildChunks(fragments, videoID)

	var ix index.Index
	if len(chunks) > 0 {
		validated := ingest.ValidateChunks(ctx, chunks, p.Embedder, p.EmbedRetries)
		if len(validated) > 0 {
			ix, err = p.Builder.Build(ctx, videoID, validated, p.Embedder)
			if err != nil {
				return nil, fmt.Errorf("process video %s: %w", videoID, err)
			}
		}
	}

	pv := &session.ProcessedVideo{
		VideoID:  videoID,
		Metadata: meta,
		Chunks:   chunks,
		DynamicK: k,
		Index:    ix,
	}
	sess.SetProcessed(pv)
	log.Printf("pipeline: processed %s (%d chunks, k=%d, indexed=%t)", videoID, len(chunks), k, ix != nil)
	return pv, nil
}

// fetchMetadata never fails a turn: lookup errors degrade to placeholders.
func (p *Pipeline) fetchMetadata(ctx context.Context, videoID string) transcript.Metadata {
	meta, err := p.Metadata.Fetch(ctx, videoID)
	if err != nil {
		log.Printf("pipeline: metadata lookup for %s: %v", videoID, err)
		return transcript.UnknownMetadata(videoID)
	}
	return meta
}

func usable(pv *session.ProcessedVideo) bool {
	return pv != nil && len(pv.Chunks) > 0 && pv.Index != nil
}

// universalSummary produces the memoized per-video summary. Transcripts over
// the character budget are stride-sampled so every region of the video still
// contributes chunks.
func (p *Pipeline) universalSummary(ctx context.Context, sess *session.Session, pv *session.ProcessedVideo) (string, error) {
	if s, ok := sess.Summary(pv.VideoID); ok {
		return s, nil
	}
	content := sampleChunks(pv.Chunks, summaryBudget)
	raw, err := p.Model.Generate(ctx, summaryPrompt(pv.Metadata.Title, content))
	if err != nil {
		return "", fmt.Errorf("summary for %s: %w", pv.VideoID, err)
	}
	s := models.Text(raw)
	sess.SetSummary(pv.VideoID, s)
	return s, nil
}

// sampleChunks joins chunk contents, taking every step-th chunk when the
// full transcript exceeds budget characters.
func sampleChunks(chunks []ingest.Chunk, budget int) string {
	total := 0
	for _, c := range chunks {
		total += len(c.Content)
	}
	step := 1
	if total > budget {
		step = total/budget + 1
	}
	var parts []string
	for i := 0; i < len(chunks); i += step {
		parts = append(parts, chunks[i].Content)
	}
	return strings.Join(parts, " ")
}
