package driven

import "context"

// LLMService provides text generation for keyword extraction.
// This is an optional service - when nil, keyword extraction degrades
// to the local frequency-weighted strategy.
type LLMService interface {
	// Complete produces a completion for the given system instructions
	// and user prompt. Implementations retry rate-limited requests
	// against an ordered fallback-model list; only the final model's
	// failure propagates.
	Complete(ctx context.Context, system, prompt string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the primary model in use.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request, without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures text generation behaviour.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
