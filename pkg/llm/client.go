package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds connection settings for a chat client.
type Config struct {
	Provider string // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Endpoint string // Base URL for OpenAI-compatible providers
	Model    string // Model identifier, e.g. "gpt-4o-mini"
	APIKey   string
}

// OpenAIClient talks to OpenAI-compatible chat-completion endpoints.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Complete sends a system/user message pair and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userMessage)),
		zap.Float64("temperature", temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: float32(temperature),
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", Classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(KindContract, "no choices in response", nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

var _ ChatClient = (*OpenAIClient)(nil)

// NewChatClient builds the client matching cfg.Provider. It returns
// (nil, nil) when no credential is configured; callers treat a nil client
// as the not-configured state and use the deterministic path.
func NewChatClient(cfg *Config, logger *zap.Logger) (ChatClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return NewOpenAIClient(cfg, logger)
	}
}
