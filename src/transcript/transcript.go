package transcript

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fragment is the smallest transcript unit: a caption line with its
// start time and duration, in seconds. Fragments arrive ordered by
// start time and non-overlapping.
type Fragment struct {
	Text     string
	Start    float64
	Duration float64
}

// ErrTranscriptUnavailable signals that a video has captions disabled or
// no transcript in any requested language. Callers treat this as empty
// input, not as a hard failure.
var ErrTranscriptUnavailable = errors.New("transcript: unavailable")

// Service fetches ordered transcript fragments for a video.
type Service interface {
	Fetch(ctx context.Context, videoID string, languages []string) ([]Fragment, error)
}

// SupportedLanguages is the preference order used when no explicit list
// is given.
var SupportedLanguages = []string{
	"en", "hi", "es", "fr", "de", "zh-Hans", "zh-Hant",
	"ja", "ko", "ru", "pt", "it", "ar", "tr", "vi",
}

// YouTubeTranscripts fetches captions through YouTube's timedtext
// endpoint, trying each preferred language in order.
type YouTubeTranscripts struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewYouTubeTranscripts() *YouTubeTranscripts {
	return &YouTubeTranscripts{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    "https://video.google.com/timedtext",
	}
}

type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

func (s *YouTubeTranscripts) Fetch(ctx context.Context, videoID string, languages []string) ([]Fragment, error) {
	if len(languages) == 0 {
		languages = SupportedLanguages
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for _, lang := range languages {
		fragments, err := s.fetchLang(ctx, client, videoID, lang)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if len(fragments) > 0 {
			return fragments, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptUnavailable, lastErr)
	}
	return nil, ErrTranscriptUnavailable
}

func (s *YouTubeTranscripts) fetchLang(ctx context.Context, client *http.Client, videoID, lang string) ([]Fragment, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext %s: status %d", lang, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseTimedText(body)
}

// ParseTimedText decodes a timedtext XML document into ordered fragments.
func ParseTimedText(data []byte) ([]Fragment, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("timedtext decode: %w", err)
	}
	fragments := make([]Fragment, 0, len(doc.Texts))
	for _, cue := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(cue.Body))
		if text == "" {
			continue
		}
		fragments = append(fragments, Fragment{
			Text:     text,
			Start:    cue.Start,
			Duration: cue.Dur,
		})
	}
	return fragments, nil
}
