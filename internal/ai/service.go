package ai

import (
	"context"
	"log/slog"
)

type Service struct {
	client Client
	logger *slog.Logger
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// GenerateAdvice запрашивает у модели советы и превращает ответ в текст отчета.
// Ошибка возвращается только при сбое транспорта; неразборчивый ответ заменяется FallbackAdvice.
func (s *Service) GenerateAdvice(ctx context.Context, input PromptInput) (AdviceResult, error) {
	prompt := Compose(input)
	result := AdviceResult{Prompt: prompt}

	content, raw, err := s.client.Chat(ctx, buildMessages(prompt))
	result.Raw = raw
	if err != nil {
		return result, err
	}
	result.Content = content

	payload, err := ParseAdvice(content)
	if err != nil {
		s.logger.WarnContext(ctx, "ai advice fallback used", slog.String("error", err.Error()), slog.Int("content_length", len(content)))
		result.Text = FallbackAdvice
		return result, nil
	}

	result.Payload = payload
	result.Parsed = true
	result.Text = payload.Markdown()
	return result, nil
}
