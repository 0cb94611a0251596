package imagegen

import (
	"context"

	"go.uber.org/zap"

	"imageflow/logging"
)

// synthesizer is the shape both providers satisfy, letting Client and its
// tests swap in doubles without depending on the concrete HTTP plumbing.
type synthesizer interface {
	Generate(ctx context.Context, prompt string, aspectRatio AspectRatio) ([]byte, error)
}

// Client is the Image Synthesis Client: it tries the primary provider and,
// on a detected quota-exhaustion condition, transparently retries once
// against the fallback provider. Any other primary error propagates
// unchanged.
type Client struct {
	primary            synthesizer
	fallback           synthesizer
	defaultAspectRatio AspectRatio
	logger             *logging.Logger
}

// New wires a Client around the two providers and the configured default
// aspect ratio (used when the caller omits one, and to govern the
// primary's generation-config in that case too).
func New(primary, fallback synthesizer, defaultAspectRatio AspectRatio, logger *logging.Logger) *Client {
	return &Client{
		primary:            primary,
		fallback:           fallback,
		defaultAspectRatio: defaultAspectRatio,
		logger:             logger.Named("imagegen"),
	}
}

// Generate implements §4.4: attempt the primary provider; on quota
// exhaustion, fall back to the secondary provider; any other primary
// error is returned unchanged. The bool result reports whether the
// fallback provider served the request, so callers can record which
// provider a run actually used.
func (c *Client) Generate(ctx context.Context, prompt string, aspectRatio AspectRatio) ([]byte, bool, error) {
	effective := aspectRatio.orDefault(c.defaultAspectRatio)

	data, err := c.primary.Generate(ctx, prompt, effective)
	if err == nil {
		return data, false, nil
	}
	if !isQuotaExhausted(err) {
		return nil, false, err
	}

	c.logger.Warn("primary image provider quota exhausted, routing to fallback", zap.Error(err))
	data, err = c.fallback.Generate(ctx, prompt, effective)
	return data, true, err
}
