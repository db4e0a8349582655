package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clipiq/clipiq/src/api"
	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/index"
	"github.com/clipiq/clipiq/src/models"
	"github.com/clipiq/clipiq/src/pipeline"
	"github.com/clipiq/clipiq/src/retriever"
	"github.com/clipiq/clipiq/src/session"
	"github.com/clipiq/clipiq/src/transcript"
)

type config struct {
	Port          string
	LLMProvider   string
	LLMModel      string
	IndexBackend  string
	PostgresURL   string
	MongoURI      string
	MongoDatabase string
	YouTubeAPIKey string
	SessionCap    int
}

func loadConfig() config {
	_ = godotenv.Load()

	return config{
		Port:          envOrDefault("PORT", "8000"),
		LLMProvider:   envOrDefault("CLIPIQ_LLM_PROVIDER", "openrouter"),
		LLMModel:      os.Getenv("CLIPIQ_LLM_MODEL"),
		IndexBackend:  envOrDefault("CLIPIQ_INDEX", "memory"),
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: envOrDefault("MONGO_DATABASE", "clipiq"),
		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		SessionCap:    session.DefaultCapacity,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	flag.Parse()
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := models.NewLLMProvider(ctx, cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		log.Fatalf("model provider: %v", err)
	}

	embedder := embed.Safe(embed.Auto())

	builder, cleanup, err := newBuilder(ctx, cfg)
	if err != nil {
		log.Fatalf("index backend: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	p := pipeline.New(pipeline.Config{
		Sessions:    session.NewStore(cfg.SessionCap),
		Transcripts: transcript.NewYouTubeTranscripts(),
		Metadata:    transcript.NewYouTubeMetadata(cfg.YouTubeAPIKey),
		Embedder:    embedder,
		Builder:     builder,
		Model:       model,
		Constructor: retriever.NewLLMQueryConstructor(model),
		Cache:       retriever.NewCache(),
	})

	srv := api.New(":"+cfg.Port, p)
	go func() {
		log.Printf("clipiq listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// newBuilder selects the vector index backend. The in-memory index needs no
// external services; Postgres requires pgvector, Mongo scores in-process.
func newBuilder(ctx context.Context, cfg config) (index.Builder, func(), error) {
	switch cfg.IndexBackend {
	case "postgres":
		store, err := index.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.CreateSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case "mongo":
		store, err := index.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, "")
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(context.Background()); err != nil {
				log.Printf("mongo close: %v", err)
			}
		}, nil
	default:
		return index.MemoryBuilder{}, nil, nil
	}
}
