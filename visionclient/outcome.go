// Package visionclient wraps the chat-completions vision/text model used
// by Stage 1 (prompt reconstruction) and Stage 2 (instruction application)
// of the orchestration pipeline.
package visionclient

// Outcome is the structured Prompt Outcome returned by both client
// operations. Generated is true iff the model produced a usable prompt;
// it is false on refusal or on an empty/too-short reply, per the
// heuristic described on each operation.
type Outcome struct {
	Prompt    string
	Generated bool
}
