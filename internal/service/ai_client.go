package service

import "context"

// CompletionClient is the single interface every completion backend
// implements. It replaces the older duck-typed client handling: both
// concrete providers expose the same generate/stream pair.
type CompletionClient interface {
	// Generate returns the completion for a prompt within a token budget
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// GenerateStream streams completion chunks to the callback
	GenerateStream(ctx context.Context, prompt string, maxTokens int, callback func(chunk string) error) error

	// CreateEmbeddings generates embeddings for texts
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g. DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// Ensure OpenAIClient implements CompletionClient
var _ CompletionClient = (*OpenAIClient)(nil)
