package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"mafia/internal/domain"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const jsonOnlyInstruction = "You must respond with valid JSON only. " +
	"Do not include any text before or after the JSON."

// Config configures the OpenRouter gateway.
type Config struct {
	APIKey         string
	BaseURL        string
	MaxRetries     int
	RequestTimeout time.Duration
}

// OpenRouter talks to OpenRouter's chat-completions API. It is shared by
// all sessions and safe for concurrent use; rate-limit retries and
// per-request timeouts are handled by the underlying client.
type OpenRouter struct {
	client openai.Client
	logger *slog.Logger
}

// NewOpenRouter creates the gateway. An empty API key is allowed so the
// server can boot without one; every call will then fail and sessions
// degrade agent seats to pass-equivalents.
func NewOpenRouter(cfg Config, logger *slog.Logger) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.APIKey == "" {
		logger.Warn("no openrouter api key configured, agent seats will pass every turn")
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.RequestTimeout),
	)

	return &OpenRouter{client: client, logger: logger}
}

// Decide implements Gateway.
func (o *OpenRouter) Decide(ctx context.Context, req Request) (domain.Action, error) {
	content, err := o.chat(ctx, req.Model, jsonOnlyInstruction, req.Prompt, 0.8)
	if err != nil {
		return domain.Action{}, err
	}

	action, err := ParseAction(req.PlayerID, content)
	if err != nil {
		o.logger.Debug("unparseable agent response",
			"gameID", req.GameID,
			"playerID", req.PlayerID,
			"model", req.Model,
			"error", err,
		)
		return domain.Action{}, err
	}
	return action, nil
}

// Complete implements Gateway.
func (o *OpenRouter) Complete(ctx context.Context, req Request) (string, error) {
	return o.chat(ctx, req.Model, "", req.Prompt, 0.5)
}

func (o *OpenRouter) chat(ctx context.Context, model, system, prompt string, temperature float64) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
