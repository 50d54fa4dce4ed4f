package extraction

import (
	"regexp"
	"strings"

	"github.com/llmarena/chessmatch-backend/internal/prompt"
)

// movePatterns are tried in fixed priority order; the first pattern with a
// match anywhere in the text wins.
var movePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([a-h][1-8])\b`),                // e4, d5
	regexp.MustCompile(`\b([KQRBN][a-h][1-8])\b`),         // Nf3, Bc4
	regexp.MustCompile(`\b([KQRBN]x[a-h][1-8])\b`),        // Nxe5, Bxf7
	regexp.MustCompile(`\b([a-h]x[a-h][1-8])\b`),          // exd5, fxg7
	regexp.MustCompile(`\b(O-O(-O)?)\b`),                  // O-O, O-O-O
	regexp.MustCompile(`\b([KQRBN][a-h1-8]?[a-h][1-8])\b`),  // Nbd2, R1e7
	regexp.MustCompile(`\b([KQRBN][a-h1-8]?x[a-h][1-8])\b`), // Nbxd5, R1xd7
}

// Move - extracts the first recognizable move token from a free-text model
// response. The second return value reports whether a token was found, which
// is a distinct outcome from a token that later turns out to be illegal.
func Move(response string) (string, bool) {
	if response == "" {
		return "", false
	}

	for _, pattern := range movePatterns {
		if match := pattern.FindString(response); match != "" {
			return match, true
		}
	}

	return "", false
}

// Reasoning - extracts the reasoning section from a model response. It never
// fails: if no marker is present it falls back to the text after the move
// token, and finally to the whole response.
func Reasoning(response string) string {
	if idx := strings.Index(response, prompt.ReasoningMarker); idx != -1 {
		return strings.TrimSpace(response[idx+len(prompt.ReasoningMarker):])
	}

	if move, ok := Move(response); ok {
		afterMove := response[strings.Index(response, move)+len(move):]
		if trimmed := strings.TrimSpace(afterMove); trimmed != "" {
			return trimmed
		}
	}

	return response
}
