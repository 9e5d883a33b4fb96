package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient calls the Anthropic Messages API through the official SDK.
type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int
	client    anthropic.Client
}

// NewAnthropicClient создает клиент Anthropic с заданными параметрами.
// Повторы SDK отключены: ошибка транспорта должна дойти до вызывающего кода.
func NewAnthropicClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &AnthropicClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    anthropic.NewClient(opts...),
	}
}

// Chat отправляет сообщения в Anthropic и возвращает текст ответа и сырой ответ API.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}

	system := make([]anthropic.TextBlockParam, 0)
	conversation := make([]anthropic.MessageParam, 0, len(messages))
	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: text})
		case "assistant", "model":
			conversation = append(conversation, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}

	if len(conversation) == 0 {
		return "", nil, errors.New("anthropic request has no user content")
	}

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(resolveMaxTokens(c.maxTokens)),
		System:      system,
		Messages:    conversation,
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", nil, &APIError{Provider: ProviderAnthropic, StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return "", nil, fmt.Errorf("anthropic request: %w", err)
	}

	var builder strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	return builder.String(), []byte(response.RawJSON()), nil
}
