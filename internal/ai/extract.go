package ai

import (
	"errors"
	"strings"
)

// ErrNoJSON means the model's reply contained no {...} span at all.
var ErrNoJSON = errors.New("ai: no JSON object found in response")

// ExtractJSON pulls the first-to-last brace span out of a free-text model
// reply. Models frequently wrap their JSON in prose or markdown fences; the
// greedy match tolerates both. The returned string is not guaranteed to be
// valid JSON, only brace-delimited.
func ExtractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}
