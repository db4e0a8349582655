package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/ingest"
)

// PostgresStore backs video indexes with Postgres + pgvector for
// deployments that want chunks to survive a restart.
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (ps *PostgresStore) Close() {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
}

// CreateSchema bootstraps the chunk table. The embedding column is
// untyped-dimension vector so any embedding model works.
func (ps *PostgresStore) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
                CREATE EXTENSION IF NOT EXISTS vector;
                CREATE TABLE IF NOT EXISTS transcript_chunks (
                        id BIGSERIAL PRIMARY KEY,
                        video_id TEXT NOT NULL,
                        content TEXT NOT NULL,
                        start_seconds INT NOT NULL,
                        end_seconds INT NOT NULL,
                        embedding VECTOR
                );
                CREATE INDEX IF NOT EXISTS transcript_chunks_video_idx ON transcript_chunks (video_id);
        `)
	return err
}

// Build replaces the stored chunks for the video and returns a handle
// scoped to it.
func (ps *PostgresStore) Build(ctx context.Context, videoID string, chunks []ingest.Chunk, embedder embed.Embedder) (Index, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if _, err := ps.DB.Exec(ctx, `DELETE FROM transcript_chunks WHERE video_id = $1`, videoID); err != nil {
		return nil, fmt.Errorf("index build for %s: %w", videoID, err)
	}
	for _, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("index build for %s: %w", videoID, err)
		}
		_, err = ps.DB.Exec(ctx, `
                        INSERT INTO transcript_chunks (video_id, content, start_seconds, end_seconds, embedding)
                        VALUES ($1, $2, $3, $4, $5::vector)
                `, videoID, chunk.Content, chunk.Start, chunk.End, vectorLiteral(vec))
		if err != nil {
			return nil, fmt.Errorf("index build for %s: %w", videoID, err)
		}
	}
	return &PostgresIndex{store: ps, videoID: videoID, count: len(chunks)}, nil
}

// PostgresIndex is a per-video view over the shared chunk table.
type PostgresIndex struct {
	store   *PostgresStore
	videoID string
	count   int
}

func (ix *PostgresIndex) Len() int { return ix.count }

func (ix *PostgresIndex) Search(ctx context.Context, queryEmbedding []float32, filters []Filter, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	where, args := ix.whereClause(filters, queryEmbedding)
	query := fmt.Sprintf(`
                SELECT content, video_id, start_seconds, end_seconds,
                       1 - (embedding <=> $1::vector) AS score
                FROM transcript_chunks
                WHERE %s
                ORDER BY embedding <=> $1::vector
                LIMIT %d
        `, where, k)

	rows, err := ix.store.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.Content, &c.VideoID, &c.Start, &c.End, &c.Score); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (ix *PostgresIndex) whereClause(filters []Filter, queryEmbedding []float32) (string, []any) {
	conds := []string{"video_id = $2"}
	args := []any{vectorLiteral(queryEmbedding), ix.videoID}

	for _, f := range filters {
		var column string
		switch f.Field {
		case FieldStart:
			column = "start_seconds"
		case FieldEnd:
			column = "end_seconds"
		default:
			continue
		}
		var cmp string
		switch f.Op {
		case OpLte:
			cmp = "<="
		case OpGte:
			cmp = ">="
		case OpEq:
			cmp = "="
		default:
			continue
		}
		args = append(args, f.Seconds)
		conds = append(conds, fmt.Sprintf("%s %s $%d", column, cmp, len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// vectorLiteral renders a pgvector input literal: "[0.1,0.2,...]".
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
