package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// defaultSystemPromptImageUnderstand is the built-in Stage-1 system prompt.
// Implementations must preserve this text verbatim when the operator has not
// set SYSTEM_PROMPT_IMAGE_UNDERSTAND, because it encodes part of the
// product's behavior contract.
const defaultSystemPromptImageUnderstand = `You are a meticulous visual description engine. Examine the supplied image and produce a single, richly detailed prompt that a text-to-image model could use to recreate it as faithfully as possible.

Describe the subject, pose, framing, lighting, color palette, background, materials, and any text or logos visible in the image. Do not comment on whether you can or cannot help; either produce the description or decline outright. Respond with the description only, no preamble.`

// defaultSystemPromptEditor is the built-in Stage-2 system prompt.
const defaultSystemPromptEditor = `You are a precise prompt editor for a text-to-image pipeline. You will be given an existing image-description prompt, a set of user instructions describing how the resulting image should change, and optionally one or more reference images for style or content guidance.

Rewrite the base prompt so that it incorporates the requested changes while preserving everything the user did not ask to change. Respond ONLY with a JSON object of the shape {"prompt": string, "isPromptGenerated": boolean}. Set isPromptGenerated to false only if you are declining to produce a prompt.`

// Config holds all process-wide configuration values for the image-flow
// pipeline. It is read once at startup from the environment and treated as
// immutable thereafter (core.LoadConfig), in the teacher's GetEnvOrDefault /
// ParseIntEnv style.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// VisionModelAPIKey authenticates chat-completions calls made by
	// visionclient (OPENAI_API_KEY).
	VisionModelAPIKey  string
	VisionModelBaseURL string
	VisionModel        string

	// Primary image generator (Gemini-style generateContent API).
	ImagePrimaryProjectID       string
	ImagePrimaryLocation        string
	ImagePrimaryCredentialsPath string

	// Fallback image generator (fal-style JSON API).
	ImageFallbackAPIKey      string
	ImageFallbackEndpoint    string
	ImageFallbackModelID     string
	ImageFallbackAspectRatio string

	// Blob storage (S3-compatible).
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageEndpoint   string
	StoragePublicLink string
	StorageFolder     string

	// OutputFormat is the file extension (and, prefixed with "image/", the
	// MIME type) used for generated images. Default "png".
	OutputFormat string

	// MaxReferenceImages is the ceiling on referenceImages[] entries.
	MaxReferenceImages int

	// System prompts, overridable but defaulting to a built-in literal.
	SystemPromptImageUnderstand string
	SystemPromptPromptEditor    string

	// AllowSelfSignedCerts mirrors the teacher's TLS escape hatch for
	// self-hosted S3-compatible endpoints.
	AllowSelfSignedCerts bool
}

// LoadConfig loads configuration from environment variables per the §6
// environment variable list. It returns a *ConfigError for every required
// credential that is missing, except the fallback image generator's API key,
// whose absence is a lazy failure detected only when the fallback path is
// actually exercised.
func LoadConfig() (*Config, error) {
	visionKey := os.Getenv("OPENAI_API_KEY")
	if visionKey == "" {
		return nil, ErrMissingConfig("OPENAI_API_KEY")
	}

	storageAccessKey := os.Getenv("S3_ACCESS_KEY")
	storageSecretKey := os.Getenv("S3_SECRET_KEY")
	storageBucket := os.Getenv("S3_BUCKET_NAME")
	if storageAccessKey == "" {
		return nil, ErrMissingConfig("S3_ACCESS_KEY")
	}
	if storageSecretKey == "" {
		return nil, ErrMissingConfig("S3_SECRET_KEY")
	}
	if storageBucket == "" {
		return nil, ErrMissingConfig("S3_BUCKET_NAME")
	}

	projectID := os.Getenv("GOOGLE_VERTEX_PROJECT_ID")
	if projectID == "" {
		return nil, ErrMissingConfig("GOOGLE_VERTEX_PROJECT_ID")
	}

	credsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credsPath != "" {
		abs, err := filepath.Abs(credsPath)
		if err != nil {
			return nil, ErrUnreadableCredentials(credsPath, err.Error())
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, ErrUnreadableCredentials(abs, err.Error())
		}
		credsPath = abs
	} else {
		return nil, ErrMissingConfig("GOOGLE_APPLICATION_CREDENTIALS")
	}

	cfg := &Config{
		Port: ParseIntEnv("PORT", 4000),

		VisionModelAPIKey:  visionKey,
		VisionModelBaseURL: GetEnvOrDefault("TEXT_LLM_URL", "https://api.openai.com/v1"),
		VisionModel:        GetEnvOrDefault("VISION_MODEL", "gpt-4o"),

		ImagePrimaryProjectID:       projectID,
		ImagePrimaryLocation:        GetEnvOrDefault("GOOGLE_VERTEX_LOCATION", "us-central1"),
		ImagePrimaryCredentialsPath: credsPath,

		ImageFallbackAPIKey:      os.Getenv("FAL_API_KEY"),
		ImageFallbackEndpoint:    GetEnvOrDefault("FAL_GEMINI_ENDPOINT", "https://fal.run/fal-ai/gemini-25-flash-image"),
		ImageFallbackModelID:     GetEnvOrDefault("FAL_GEMINI_MODEL_ID", "fal-ai/gemini-25-flash-image"),
		ImageFallbackAspectRatio: GetEnvOrDefault("FAL_GEMINI_ASPECT_RATIO", "1:1"),

		StorageAccessKey:  storageAccessKey,
		StorageSecretKey:  storageSecretKey,
		StorageBucket:     storageBucket,
		StorageEndpoint:   os.Getenv("S3_ENDPOINT_URL"),
		StoragePublicLink: strings.TrimRight(os.Getenv("S3_PUBLIC_LINK"), "/"),
		StorageFolder:     GetEnvOrDefault("S3_FOLDER", "internaluse"),

		OutputFormat:       GetEnvOrDefault("IMAGE_OUTPUT_FORMAT", "png"),
		MaxReferenceImages: ParseIntEnv("MAX_REFERENCE_IMAGES", 2),

		SystemPromptImageUnderstand: GetEnvOrDefault("SYSTEM_PROMPT_IMAGE_UNDERSTAND", defaultSystemPromptImageUnderstand),
		SystemPromptPromptEditor:    GetEnvOrDefault("SYSTEM_PROMPT_PROMPT_EDITOR", defaultSystemPromptEditor),

		AllowSelfSignedCerts: GetEnvOrDefault("ALLOW_SELF_SIGNED_CERTS", "false") == "true",
	}

	if cfg.StoragePublicLink == "" {
		return nil, ErrMissingConfig("S3_PUBLIC_LINK")
	}

	return cfg, nil
}

// RequestTimeout is the orchestration endpoint's soft upper bound, matching
// the 5-minute deadline the client-facing proxy imposes.
const RequestTimeout = 5 * time.Minute
