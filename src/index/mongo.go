package index

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clipiq/clipiq/src/embed"
	"github.com/clipiq/clipiq/src/ingest"
)

// MongoStore keeps transcript chunks in a MongoDB collection. Ranking
// happens in-process over the filtered candidate set, which is fine at
// per-video corpus sizes (tens to low hundreds of chunks).
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

const mongoCloseTimeout = 5 * time.Second

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		collection = "transcript_chunks"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (ms *MongoStore) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

type mongoChunk struct {
	VideoID   string    `bson:"video_id"`
	Content   string    `bson:"content"`
	Start     int       `bson:"start"`
	End       int       `bson:"end"`
	Embedding []float64 `bson:"embedding"`
}

// Build replaces the stored chunks for the video.
func (ms *MongoStore) Build(ctx context.Context, videoID string, chunks []ingest.Chunk, embedder embed.Embedder) (Index, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if _, err := ms.collection.DeleteMany(ctx, bson.M{"video_id": videoID}); err != nil {
		return nil, err
	}
	docs := make([]any, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return nil, err
		}
		docs = append(docs, mongoChunk{
			VideoID:   videoID,
			Content:   chunk.Content,
			Start:     chunk.Start,
			End:       chunk.End,
			Embedding: toFloat64(vec),
		})
	}
	if _, err := ms.collection.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return &MongoIndex{store: ms, videoID: videoID, count: len(chunks)}, nil
}

// MongoIndex is a per-video view over the shared collection.
type MongoIndex struct {
	store   *MongoStore
	videoID string
	count   int
}

func (ix *MongoIndex) Len() int { return ix.count }

func (ix *MongoIndex) Search(ctx context.Context, queryEmbedding []float32, filters []Filter, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, nil
	}
	filter := bson.M{"video_id": ix.videoID}
	for _, f := range filters {
		var field string
		switch f.Field {
		case FieldStart:
			field = "start"
		case FieldEnd:
			field = "end"
		default:
			continue
		}
		switch f.Op {
		case OpLte:
			filter[field] = bson.M{"$lte": f.Seconds}
		case OpGte:
			filter[field] = bson.M{"$gte": f.Seconds}
		case OpEq:
			filter[field] = f.Seconds
		}
	}

	cursor, err := ix.store.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Candidate
	for cursor.Next(ctx) {
		var doc mongoChunk
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, Candidate{
			Content: doc.Content,
			VideoID: doc.VideoID,
			Start:   doc.Start,
			End:     doc.End,
			Score:   CosineSimilarity(queryEmbedding, toFloat32(doc.Embedding)),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func toFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
