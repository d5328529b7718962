package interfaces

import (
	"context"
)

// LLMProvider identifies the backing model provider.
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API (chat only)
	LLMProviderClaude LLMProvider = "claude"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// EmbedTaskType hints the provider how the embedding will be used. Gemini
// produces asymmetric embeddings for documents vs queries; both sides must
// use the matching task type for similarity scores to be meaningful.
type EmbedTaskType string

const (
	EmbedTaskDocument EmbedTaskType = "RETRIEVAL_DOCUMENT"
	EmbedTaskQuery    EmbedTaskType = "RETRIEVAL_QUERY"
)

// LLMService defines the narrow interface the retrieval core consumes for
// embedding generation and chat completion. Implementations are external
// collaborators invoked over the network; both operations may fail with
// transient (retryable) or permanent errors.
type LLMService interface {
	// Embed generates a fixed-dimension embedding vector for the given text.
	Embed(ctx context.Context, text string, task EmbedTaskType) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string, task EmbedTaskType) ([][]float32, error)

	// Chat generates a completion from the conversation history, in
	// chronological order including any system prompt.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the service is reachable and operational.
	HealthCheck(ctx context.Context) error

	// GetProvider returns the backing provider identifier.
	GetProvider() LLMProvider

	// Close releases client resources.
	Close() error
}
