package session

import (
	"sync"

	"github.com/clipiq/clipiq/src/index"
	"github.com/clipiq/clipiq/src/ingest"
	"github.com/clipiq/clipiq/src/transcript"
)

// Message roles mirror the chat history convention used in prompts.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string
	Content string
}

// ProcessedVideo memoizes the full ingestion result for one video so
// repeated turns about it skip metadata fetch, chunking, validation,
// and index build. Index is nil when the video had no usable
// transcript.
type ProcessedVideo struct {
	VideoID  string
	Metadata transcript.Metadata
	Chunks   []ingest.Chunk
	DynamicK int
	Index    index.Index
}

// Session is per-conversation state with process lifetime: append-only
// history, processed-video memoization, and a summary cache.
type Session struct {
	ID string

	turnMu sync.Mutex

	mu        sync.RWMutex
	history   []Message
	processed map[string]*ProcessedVideo
	summaries map[string]string
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		processed: make(map[string]*ProcessedVideo),
		summaries: make(map[string]string),
	}
}

// BeginTurn serializes turns within one session so history append order
// matches turn arrival order. Callers must pair it with EndTurn.
func (s *Session) BeginTurn() { s.turnMu.Lock() }

func (s *Session) EndTurn() { s.turnMu.Unlock() }

// AppendTurn records a user message and the assistant's reply.
func (s *Session) AppendTurn(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		Message{Role: RoleHuman, Content: user},
		Message{Role: RoleAI, Content: assistant},
	)
}

// RecentHistory returns up to n most recent messages, oldest first.
func (s *Session) RecentHistory(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.history) == 0 {
		return nil
	}
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// HistoryLen reports the number of recorded messages.
func (s *Session) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Processed returns the memoized ingestion result for a video.
func (s *Session) Processed(videoID string) (*ProcessedVideo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pv, ok := s.processed[videoID]
	return pv, ok
}

// SetProcessed stores an ingestion result. Concurrent writers for the
// same video overwrite each other with equivalent results, so the race
// costs duplicate work but never inconsistent state.
func (s *Session) SetProcessed(pv *ProcessedVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[pv.VideoID] = pv
}

// Summary returns the cached whole-transcript digest for a video.
func (s *Session) Summary(videoID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[videoID]
	return summary, ok
}

func (s *Session) SetSummary(videoID, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[videoID] = summary
}
