package llm

import "context"

// MockChatClient is a configurable mock for testing model-path behavior.
// Set CompleteFunc to control responses; calls are counted for verification.
type MockChatClient struct {
	// CompleteFunc is invoked by Complete. If nil, an empty string and nil
	// error are returned.
	CompleteFunc func(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	CompleteCalls int
}

// NewMockChatClient creates a mock with defaults.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{ModelName: "mock-model"}
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemMessage, userMessage, temperature)
	}
	return "", nil
}

// Model implements ChatClient.
func (m *MockChatClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

var _ ChatClient = (*MockChatClient)(nil)
