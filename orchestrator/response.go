// Package orchestrator wires the Validator, Blob Store Adapter, Vision /
// Text Model Client, Image Synthesis Client, and Proxy Gateway into the
// linear Pipeline Request → Pipeline Response flow with strict
// short-circuit semantics.
package orchestrator

// Response is the Pipeline Response returned to the caller after a full
// or partial run. Pointer fields are nullable in the JSON encoding,
// matching the §3 data model exactly.
type Response struct {
	BaseImageURL        string   `json:"base_image_url"`
	BaseImageKey        string   `json:"base_image_key"`
	ReferenceImageURLs  []string `json:"reference_image_urls"`
	ReferenceImageKeys  []string `json:"reference_image_keys"`
	Prompt1             *string  `json:"prompt1"`
	Prompt2             *string  `json:"prompt2"`
	OutputImageURL      *string  `json:"output_image_url"`
	OutputImageKey      *string  `json:"output_image_key"`
	Step2Executed       bool     `json:"step2_executed"`
	PromptGenerated     bool     `json:"prompt_generated"`
	Error               string   `json:"error,omitempty"`
}
