package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"imageflow/core"
)

// primaryModel is the Vertex AI published model the primary provider
// targets. It is not configurable: the spec's environment variables cover
// project/location/credentials only.
const primaryModel = "gemini-2.5-flash-image"

const vertexScope = "https://www.googleapis.com/auth/cloud-platform"

// PrimaryProvider generates images via Vertex AI's generateContent API,
// authenticating with a service-account credentials file rather than a
// bare API key.
type PrimaryProvider struct {
	httpClient  *http.Client
	credentials *google.Credentials
	projectID   string
	location    string
}

// NewPrimaryProvider reads and parses the service-account credentials file
// named by cfg.ImagePrimaryCredentialsPath (already resolved to an
// absolute, readable path by core.LoadConfig).
func NewPrimaryProvider(ctx context.Context, cfg *core.Config) (*PrimaryProvider, error) {
	raw, err := os.ReadFile(cfg.ImagePrimaryCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read vertex credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, vertexScope)
	if err != nil {
		return nil, fmt.Errorf("imagegen: parse vertex credentials: %w", err)
	}

	return &PrimaryProvider{
		httpClient:  core.GetHTTPClient(cfg, 2*time.Minute),
		credentials: creds,
		projectID:   cfg.ImagePrimaryProjectID,
		location:    cfg.ImagePrimaryLocation,
	}, nil
}

type generateContentRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ImageConfig *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type generateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *rawProviderError `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type rawProviderError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Generate implements the primary call described in §4.4: it builds a
// generateContent request carrying the prompt and, when aspectRatio is
// non-empty, a generation-config field, then extracts inline base64 image
// data from the first candidate.
func (p *PrimaryProvider) Generate(ctx context.Context, prompt string, aspectRatio AspectRatio) ([]byte, error) {
	token, err := p.credentials.TokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("imagegen: vertex token: %w", err)
	}

	reqBody := generateContentRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if aspectRatio != "" {
		reqBody.GenerationConfig = &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: string(aspectRatio)},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("imagegen: marshal request: %w", err)
	}

	url := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		p.location, p.projectID, p.location, primaryModel,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: primary provider request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read primary provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseProviderError(resp.StatusCode, respBody)
	}

	var result generateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("imagegen: unmarshal primary provider response: %w", err)
	}
	if result.Error != nil {
		return nil, &providerError{
			Code:    result.Error.Code,
			Status:  result.Error.Status,
			Message: result.Error.Message,
			Details: string(respBody),
		}
	}

	for _, candidate := range result.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("imagegen: decode inline image data: %w", err)
				}
				return data, nil
			}
		}
	}

	return nil, fmt.Errorf("imagegen: no inline image data in primary provider response")
}

func parseProviderError(statusCode int, body []byte) *providerError {
	var wrapper struct {
		Error rawProviderError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error.Message != "" {
		return &providerError{
			Code:    wrapper.Error.Code,
			Status:  wrapper.Error.Status,
			Message: wrapper.Error.Message,
			Details: string(body),
		}
	}
	return &providerError{
		Code:    statusCode,
		Message: string(body),
		Details: string(body),
	}
}

// isQuotaExhausted implements the §4.4 three-way quota test.
func isQuotaExhausted(err error) bool {
	perr, ok := asProviderError(err)
	if !ok {
		return false
	}
	if perr.Code == 8 {
		return true
	}
	if perr.Status == "RESOURCE_EXHAUSTED" {
		return true
	}
	combined := strings.ToUpper(perr.Details + perr.Message)
	return strings.Contains(combined, "RESOURCE_EXHAUSTED") || strings.Contains(combined, "QUOTA")
}

func asProviderError(err error) (*providerError, bool) {
	perr, ok := err.(*providerError)
	return perr, ok
}
