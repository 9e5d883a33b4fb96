package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const geminiTemperature = 0.2

var errGeminiNoUserContent = errors.New("gemini request has no user content")

// GeminiClient ходит в Generative Language API (generateContent).
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// NewGeminiClient создает клиент Gemini с заданными параметрами.
func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat отправляет сообщения в Gemini и возвращает текст ответа и сырой ответ API.
// Ответ без кандидатов не считается ошибкой: текст пустой, разбор совета уйдет в запасной вариант.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	request, err := newGeminiRequest(messages, resolveMaxTokens(c.maxTokens))
	if err != nil {
		return "", nil, err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", nil, err
	}

	body, status, err := postJSON(ctx, c.httpClient, c.endpoint(), nil, payload)
	if err != nil {
		return "", body, fmt.Errorf("gemini request: %w", err)
	}
	if !isSuccess(status) {
		return "", body, &APIError{Provider: ProviderGemini, StatusCode: status, Message: geminiErrorMessage(body)}
	}

	return geminiCandidateText(body), body, nil
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

// newGeminiRequest выносит системные сообщения в systemInstruction, остальные идут в contents.
func newGeminiRequest(messages []Message, maxTokens int) (geminiRequest, error) {
	var system []geminiPart
	request := geminiRequest{
		GenerationConfig: &geminiConfig{
			Temperature:      geminiTemperature,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: "application/json",
		},
	}

	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		part := geminiPart{Text: text}
		switch role := geminiRole(message.Role); role {
		case "system":
			system = append(system, part)
		default:
			request.Contents = append(request.Contents, geminiContent{Role: role, Parts: []geminiPart{part}})
		}
	}

	if len(request.Contents) == 0 {
		return geminiRequest{}, errGeminiNoUserContent
	}
	if len(system) > 0 {
		request.SystemInstruction = &geminiContent{Role: "system", Parts: system}
	}

	return request, nil
}

// geminiRole приводит роль сообщения к словарю Gemini: у ассистента роль "model".
func geminiRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "system":
		return "system"
	case "assistant", "model":
		return "model"
	default:
		return "user"
	}
}

func geminiErrorMessage(body []byte) string {
	if message := gjson.GetBytes(body, "error.message"); message.Type == gjson.String {
		return message.String()
	}

	return strings.TrimSpace(string(body))
}

// geminiCandidateText склеивает текстовые части первого кандидата.
func geminiCandidateText(body []byte) string {
	var builder strings.Builder
	gjson.GetBytes(body, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		builder.WriteString(part.Get("text").String())
		return true
	})

	return builder.String()
}
