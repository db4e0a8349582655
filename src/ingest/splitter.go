package ingest

import "strings"

// Splitter recursively splits text on progressively finer separators so
// every produced piece fits the chunk size, with consecutive pieces
// sharing roughly Overlap characters of context.
type Splitter struct {
	ChunkSize int
	Overlap   int

	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = minChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &Splitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Split returns the chunked text. Input at or under the chunk size
// passes through as a single piece.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, separators)

	var splits []string
	if sep == "" {
		splits = windowRunes(text, s.ChunkSize)
	} else {
		splits = strings.Split(text, sep)
	}

	var out []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			out = append(out, s.merge(pending, sep)...)
			pending = nil
		}
	}
	for _, piece := range splits {
		if len(piece) <= s.ChunkSize {
			pending = append(pending, piece)
			continue
		}
		// Piece still too long: recurse with finer separators.
		flush()
		out = append(out, s.split(piece, rest)...)
	}
	flush()
	return out
}

// merge greedily packs small splits into chunks up to the chunk size,
// carrying Overlap trailing characters into the next chunk.
func (s *Splitter) merge(splits []string, sep string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)
	sepLen := len(sep)

	joined := func() string {
		return strings.TrimSpace(strings.Join(current, sep))
	}

	for _, piece := range splits {
		extra := len(piece)
		if len(current) > 0 {
			extra += sepLen
		}
		if total+extra > s.ChunkSize && len(current) > 0 {
			if doc := joined(); doc != "" {
				chunks = append(chunks, doc)
			}
			// Drop leading splits until the retained tail fits the
			// overlap budget.
			for total > s.Overlap && len(current) > 1 {
				total -= len(current[0]) + sepLen
				current = current[1:]
			}
			if total > s.Overlap {
				current = nil
				total = 0
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += len(piece)
	}
	if doc := joined(); doc != "" {
		chunks = append(chunks, doc)
	}
	return chunks
}

func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// windowRunes hard-splits text into fixed-size rune windows; the last
// resort when no separator is present.
func windowRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
