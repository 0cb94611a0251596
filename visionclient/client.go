package visionclient

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"imageflow/core"
	"imageflow/logging"
)

// Client is the Vision / Text Model Client. It exposes the two operations
// that together drive Stage 1 and Stage 2 of the pipeline, both speaking
// standard chat-completions over a bearer token.
type Client struct {
	openai                      *openai.Client
	model                       string
	systemPromptImageUnderstand string
	systemPromptEditor          string
	logger                      *logging.Logger
}

// New builds a Client from process configuration, following the same
// DefaultConfig-plus-BaseURL-override pattern the core package uses for
// its own chat-completions client.
func New(cfg *core.Config, logger *logging.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.VisionModelAPIKey)
	if cfg.VisionModelBaseURL != "" {
		clientConfig.BaseURL = cfg.VisionModelBaseURL
	}
	clientConfig.HTTPClient = core.GetDefaultHTTPClient(cfg)

	return &Client{
		openai:                      openai.NewClientWithConfig(clientConfig),
		model:                       cfg.VisionModel,
		systemPromptImageUnderstand: cfg.SystemPromptImageUnderstand,
		systemPromptEditor:          cfg.SystemPromptPromptEditor,
		logger:                      logger.Named("visionclient"),
	}
}

func dataURI(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// ReconstructPrompt implements §4.3.1: it sends the base image embedded as
// a data-URI plus the image-understanding system prompt, and classifies
// the free-text reply with the refusal heuristic.
func (c *Client) ReconstructPrompt(ctx context.Context, imageBytes []byte, mime string) (Outcome, error) {
	resp, err := c.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPromptImageUnderstand,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Describe this image so it can be recreated by a text-to-image model.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURI(mime, imageBytes)},
					},
				},
			},
		},
	})
	if err != nil {
		return Outcome{}, &TransportError{Op: "reconstruct_prompt", Err: err}
	}
	if len(resp.Choices) == 0 {
		return Outcome{}, &TransportError{Op: "reconstruct_prompt", Err: fmt.Errorf("no choices in response")}
	}

	return classifyFreeText(resp.Choices[0].Message.Content), nil
}

// ApplyInstructions implements §4.3.2: it sends the base prompt, the user
// instructions, and each reference image as a labeled data-URI, with the
// final fragment augmented by an explicit JSON-shape directive and JSON
// mode enabled.
func (c *Client) ApplyInstructions(ctx context.Context, basePrompt, instructions string, references []ReferenceImage) (Outcome, error) {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf("Base prompt:\n%s\n\nInstructions:\n%s", basePrompt, instructions),
		},
	}

	for i, ref := range references {
		parts = append(parts,
			openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("Reference image #%d", i+1),
			},
			openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURI(ref.MIME, ref.Bytes)},
			},
		)
	}

	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: `Return ONLY a JSON object of the shape {"prompt": string, "isPromptGenerated": boolean}.`,
	})

	resp, err := c.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPromptEditor,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	if err != nil {
		return Outcome{}, &TransportError{Op: "apply_instructions", Err: err}
	}
	if len(resp.Choices) == 0 {
		return Outcome{}, &TransportError{Op: "apply_instructions", Err: fmt.Errorf("no choices in response")}
	}

	return parseApplyInstructionsReply(resp.Choices[0].Message.Content), nil
}

// ReferenceImage pairs raw bytes with their declared MIME type for the
// Stage-2 reference-image attachments.
type ReferenceImage struct {
	Bytes []byte
	MIME  string
}
