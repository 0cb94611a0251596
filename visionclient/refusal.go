package visionclient

import "strings"

// refusalMarkers are substrings that, when present in a lowercased model
// reply, identify the reply as a decline rather than a usable prompt. The
// set overlaps with ordinary English ("cannot") and is meant as a coarse
// safety net, not a precise classifier.
var refusalMarkers = []string{
	"i'm sorry",
	"i can't assist",
	"can't help",
	"cannot",
	"unable to",
}

// isRefusal reports whether reply contains any refusal marker.
func isRefusal(reply string) bool {
	lower := strings.ToLower(reply)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// classifyFreeText turns a raw model reply into a Prompt Outcome using the
// refusal heuristic. Used directly for Stage 1 and as the Stage 2 fallback
// when JSON parsing fails.
func classifyFreeText(reply string) Outcome {
	trimmed := strings.TrimSpace(reply)
	return Outcome{
		Prompt:    trimmed,
		Generated: !isRefusal(trimmed),
	}
}
