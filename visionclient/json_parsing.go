package visionclient

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONFound is returned by extractJSONObject when the reply contains
// no balanced-looking brace pair.
var ErrNoJSONFound = errors.New("visionclient: no JSON object found in reply")

// extractJSONObject finds the first "{" and the last "}" in text and
// returns the substring between them, inclusive. It does not validate
// brace balance beyond that — json.Unmarshal is the real validator.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start > end {
		return "", ErrNoJSONFound
	}
	return text[start : end+1], nil
}

// applyInstructionsReply mirrors the wire shape the Stage-2 system prompt
// directs the model to emit.
type applyInstructionsReply struct {
	Prompt            string `json:"prompt"`
	IsPromptGenerated bool   `json:"isPromptGenerated"`
}

// parseApplyInstructionsReply implements the §4.3.2 response-parsing
// algorithm: try the first JSON object in the reply; on any failure to
// extract or unmarshal it, fall back to the same refusal heuristic Stage 1
// uses and synthesize the outcome from the raw text.
func parseApplyInstructionsReply(raw string) Outcome {
	jsonStr, err := extractJSONObject(raw)
	if err != nil {
		return classifyFreeText(raw)
	}

	var parsed applyInstructionsReply
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return classifyFreeText(raw)
	}

	return Outcome{
		Prompt:    strings.TrimSpace(parsed.Prompt),
		Generated: parsed.IsPromptGenerated,
	}
}
