package transcript

import "regexp"

var videoIDPattern = regexp.MustCompile(`(?:v=|/|be/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID pulls the 11-character video id out of a YouTube URL.
// Inputs that do not look like a URL are returned unchanged, so bare ids
// pass through.
func ExtractVideoID(urlOrID string) string {
	if m := videoIDPattern.FindStringSubmatch(urlOrID); m != nil {
		return m[1]
	}
	return urlOrID
}
