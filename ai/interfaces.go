package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionRequest describes a single chat-completion call.
type CompletionRequest struct {
	// SystemPrompt sets the assistant role for the completion.
	SystemPrompt string

	// UserPrompt is the full user-turn prompt, including any assembled context.
	UserPrompt string

	// Model overrides the provider's configured completion model when non-empty.
	Model string

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// Completer generates chat completions from prompts.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete issues one completion request and returns the generated text.
	// Failures are reported as *ProviderError so callers can distinguish
	// timeout, rate-limit, and generic provider conditions.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Completer instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the chat completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
