package ingest

import (
	"fmt"
	"math"
	"strings"

	"github.com/clipiq/clipiq/src/transcript"
)

// Chunk is a timestamped span of transcript text sized for retrieval.
// Start and End are second offsets; Start <= End and the range is the
// union of the fragments the chunk was built from.
type Chunk struct {
	Content string
	VideoID string
	Start   int
	End     int
}

const (
	minChunkSize = 600
	maxChunkSize = 1200
	overlapRatio = 0.15

	defaultK = 5
	maxK     = 10
)

// BuildChunks turns ordered fragments into overlapping timestamped
// chunks and the dynamic retrieval count for the resulting corpus.
// Empty input yields no chunks and the floor k of 5 so downstream
// retrieval calls stay well-formed.
func BuildChunks(fragments []transcript.Fragment, videoID string) ([]Chunk, int) {
	if len(fragments) == 0 {
		return nil, defaultK
	}

	totalChars := 0
	for _, f := range fragments {
		totalChars += len(f.Text)
	}

	target := totalChars / 50
	if target < minChunkSize {
		target = minChunkSize
	}
	if target > maxChunkSize {
		target = maxChunkSize
	}
	overlap := int(float64(target) * overlapRatio)

	segments := accumulateSegments(fragments, videoID, target)

	splitter := NewSplitter(target, overlap)
	var chunks []Chunk
	for _, seg := range segments {
		for _, piece := range splitter.Split(seg.Content) {
			chunks = append(chunks, Chunk{
				Content: piece,
				VideoID: seg.VideoID,
				Start:   seg.Start,
				End:     seg.End,
			})
		}
	}

	return chunks, DynamicK(len(chunks))
}

// accumulateSegments greedily merges consecutive fragments until each
// raw segment reaches the target size. Each segment content carries a
// literal timestamp label with its start second.
func accumulateSegments(fragments []transcript.Fragment, videoID string, target int) []Chunk {
	var segments []Chunk
	var parts []string
	segStart := 0
	segEnd := 0
	segLen := 0

	for i, f := range fragments {
		if len(parts) == 0 {
			segStart = int(f.Start)
		}
		parts = append(parts, f.Text)
		segLen += len(f.Text)
		segEnd = int(f.Start + f.Duration)

		if segLen >= target || i == len(fragments)-1 {
			segments = append(segments, Chunk{
				Content: fmt.Sprintf("[Timestamp: %ds] ", segStart) + strings.Join(parts, " "),
				VideoID: videoID,
				Start:   segStart,
				End:     segEnd,
			})
			parts = nil
			segLen = 0
		}
	}
	return segments
}

// DynamicK scales the nearest-neighbor result count to the corpus size:
// small corpora search everything (capped at 5), larger ones widen
// logarithmically up to 10 to balance recall against prompt cost.
func DynamicK(numChunks int) int {
	if numChunks < 20 {
		if numChunks < defaultK {
			return numChunks
		}
		return defaultK
	}
	k := int(math.Log2(float64(numChunks)) * 1.5)
	if k < defaultK {
		return defaultK
	}
	if k > maxK {
		return maxK
	}
	return k
}
