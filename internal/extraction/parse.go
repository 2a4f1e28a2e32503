package extraction

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when model output holds no JSON object
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSON pulls the outermost JSON object out of model output, tolerating
// markdown code fences and surrounding prose
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx == -1 || endIdx < startIdx {
		return nil, ErrNoJSON
	}

	raw := json.RawMessage(text[startIdx : endIdx+1])
	if !json.Valid(raw) {
		return nil, errors.New("invalid JSON object in response")
	}
	return raw, nil
}
