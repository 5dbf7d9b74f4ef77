// Package llm provides chat-completion clients for the external matching
// model, with typed error classification and JSON extraction from free-form
// model output.
package llm

import "context"

// ChatClient is the interface matching and ranking orchestration depends on.
// Implementations send a system/user message pair and return the raw text of
// the model's reply. Use this interface for dependency injection so tests
// can substitute a mock.
type ChatClient interface {
	Complete(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error)

	// Model returns the configured model identifier, for logging.
	Model() string
}
