package api

import (
	"net/http"
	"time"

	"github.com/clipiq/clipiq/src/pipeline"
)

// New builds the HTTP server for the chat API. All state lives in the
// pipeline; handlers only translate JSON.
func New(addr string, p *pipeline.Pipeline) *http.Server {
	h := &Handlers{Pipeline: p}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", h.HandleHealth)
	mux.HandleFunc("/api/process", h.HandleProcess)
	mux.HandleFunc("/api/chat", h.HandleChat)
	mux.HandleFunc("/api/summary", h.HandleSummary)
	mux.HandleFunc("/api/compare", h.HandleCompare)

	return &http.Server{
		Addr:              addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// withCORS allows browser frontends on other origins to call the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
