package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/clipiq/clipiq/src/pipeline"
	"github.com/clipiq/clipiq/src/transcript"
)

type Handlers struct {
	Pipeline *pipeline.Pipeline
}

type processRequest struct {
	SessionID string `json:"session_id"`
	VideoURL  string `json:"video_url"`
}

type processResponse struct {
	SessionID  string `json:"session_id"`
	VideoID    string `json:"video_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
}

// HandleProcess ingests a video ahead of chatting so the first chat turn is
// not blocked on transcript download and embedding.
func (h *Handlers) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodePost(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "video_url is required"})
		return
	}

	sess := h.Pipeline.Sessions.GetOrCreate(req.SessionID)
	sess.BeginTurn()
	pv, err := h.Pipeline.ProcessVideo(r.Context(), sess, req.VideoURL)
	sess.EndTurn()
	if err != nil {
		log.Printf("api: process: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "video processing failed"})
		return
	}

	status := "processed"
	if len(pv.Chunks) == 0 || pv.Index == nil {
		status = "no_transcript"
	}
	writeJSON(w, http.StatusOK, processResponse{
		SessionID:  sess.ID,
		VideoID:    pv.VideoID,
		Status:     status,
		ChunkCount: len(pv.Chunks),
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	VideoURL  string `json:"video_url"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	pipeline.Result
}

func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodePost(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "video_url and message are required"})
		return
	}

	sess := h.Pipeline.Sessions.GetOrCreate(req.SessionID)
	result := h.Pipeline.Chat(r.Context(), sess.ID, req.VideoURL, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{SessionID: sess.ID, Result: result})
}

type summaryRequest struct {
	SessionID string `json:"session_id"`
	VideoURL  string `json:"video_url"`
}

type summaryResponse struct {
	SessionID string              `json:"session_id"`
	Summary   string              `json:"summary"`
	VideoInfo transcript.Metadata `json:"video_info"`
}

func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decodePost(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "video_url is required"})
		return
	}

	sess := h.Pipeline.Sessions.GetOrCreate(req.SessionID)
	summary, info := h.Pipeline.Summarize(r.Context(), sess.ID, req.VideoURL)
	writeJSON(w, http.StatusOK, summaryResponse{SessionID: sess.ID, Summary: summary, VideoInfo: info})
}

type compareRequest struct {
	SessionID string `json:"session_id"`
	VideoURLA string `json:"video_url_a"`
	VideoURLB string `json:"video_url_b"`
	Question  string `json:"question"`
}

func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodePost(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	sess := h.Pipeline.Sessions.GetOrCreate(req.SessionID)
	result := h.Pipeline.HandleQuery(r.Context(), sess.ID, req.VideoURLA, req.VideoURLB, req.Question)
	writeJSON(w, http.StatusOK, chatResponse{SessionID: sess.ID, Result: result})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.Pipeline.Sessions.Len(),
	})
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}
