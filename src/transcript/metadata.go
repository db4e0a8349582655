package transcript

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Metadata describes a video as reported by the YouTube Data API.
// Fields fall back to "Unknown" when the API is unreachable or the
// credential is absent; metadata problems never fail a request.
type Metadata struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// MetadataService fetches video metadata.
type MetadataService interface {
	Fetch(ctx context.Context, videoID string) (Metadata, error)
}

// UnknownMetadata returns the placeholder used when metadata cannot be
// fetched.
func UnknownMetadata(videoID string) Metadata {
	return Metadata{
		VideoID: videoID,
		Title:   "Unknown",
		Channel: "Unknown",
		Date:    "Unknown",
	}
}

// YouTubeMetadata reads the snippet part of the YouTube Data API v3.
type YouTubeMetadata struct {
	APIKey string
}

func NewYouTubeMetadata(apiKey string) *YouTubeMetadata {
	return &YouTubeMetadata{APIKey: apiKey}
}

// Fetch returns snippet metadata for the video. Any failure degrades to
// placeholders; the error return is always nil so callers never branch
// on it.
func (m *YouTubeMetadata) Fetch(ctx context.Context, videoID string) (Metadata, error) {
	fallback := UnknownMetadata(videoID)
	if m == nil || m.APIKey == "" {
		log.Printf("metadata: no API key configured; returning placeholder for %s", videoID)
		return fallback, nil
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(m.APIKey))
	if err != nil {
		log.Printf("metadata: service init failed: %v", err)
		return fallback, nil
	}
	resp, err := svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		log.Printf("metadata: fetch failed for %s: %v", videoID, err)
		return fallback, nil
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return fallback, nil
	}

	snippet := resp.Items[0].Snippet
	meta := Metadata{
		VideoID:     videoID,
		Title:       snippet.Title,
		Channel:     snippet.ChannelTitle,
		Date:        ParsePublishedAt(snippet.PublishedAt),
		Description: snippet.Description,
	}
	if meta.Title == "" {
		meta.Title = "Unknown"
	}
	if meta.Channel == "" {
		meta.Channel = "Unknown"
	}
	return meta, nil
}

// ParsePublishedAt converts an ISO8601 timestamp to a YYYY-MM-DD date,
// or "Unknown" when absent or unparseable.
func ParsePublishedAt(iso string) string {
	if iso == "" {
		return "Unknown"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return "Unknown"
}

// SecToMMSS renders a second offset as mm:ss.
func SecToMMSS(s int) string {
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
