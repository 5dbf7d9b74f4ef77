package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Complete sends a system/user message pair and returns the reply text.
func (c *AnthropicClient) Complete(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error) {
	temp := float32(temperature)

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userMessage)))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(userMessage)},
		MaxTokens:   4096,
		Temperature: &temp,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", classifyAnthropic(err)
	}

	if len(resp.Content) == 0 {
		return "", NewError(KindContract, "no content in response", nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Content[0].GetText(), nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

// classifyAnthropic maps anthropic SDK errors onto the shared error kinds.
func classifyAnthropic(err error) *Error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthenticationErr() || apiErr.IsPermissionErr():
			return NewError(KindAuth, "authentication failed", err)
		case apiErr.IsRateLimitErr():
			return NewError(KindRateLimit, "rate limited", err)
		case apiErr.IsApiErr() || apiErr.IsOverloadedErr():
			return NewError(KindEndpoint, "server error", err)
		default:
			return NewError(KindEndpoint, "request rejected", err)
		}
	}
	return Classify(err)
}

var _ ChatClient = (*AnthropicClient)(nil)
