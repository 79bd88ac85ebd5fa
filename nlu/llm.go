package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/schedsense/booking"
)

// Config configures the model-backed understander.
type Config struct {
	Provider      string // openai, deepseek, siliconflow, ollama, or any OpenAI-compatible
	Model         string
	APIKey        string
	BaseURL       string
	Timeout       int   // request timeout in seconds, default 30
	MaxConcurrent int64 // concurrent in-flight calls, default 8
}

// LLMUnderstander classifies intents and extracts fields through an
// OpenAI-compatible chat completion API. Concurrent calls are bounded by
// a weighted semaphore so a burst of sessions cannot exhaust the upstream
// quota.
type LLMUnderstander struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	sem     *semaphore.Weighted
	logger  *slog.Logger
}

// NewLLMUnderstander builds a client for the configured provider. Unknown
// providers are treated as generic OpenAI-compatible endpoints.
func NewLLMUnderstander(cfg Config, logger *slog.Logger) (*LLMUnderstander, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("nlu: model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.HTTPClient = newHTTPClient()

	baseURL := cfg.BaseURL
	switch cfg.Provider {
	case "openai", "":
		// default endpoint unless overridden
	case "deepseek":
		if baseURL == "" {
			baseURL = "https://api.deepseek.com"
		}
	case "siliconflow":
		if baseURL == "" {
			baseURL = "https://api.siliconflow.cn/v1"
		}
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
	default:
		slog.Info("using generic OpenAI-compatible provider", "provider", cfg.Provider)
	}
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	return &LLMUnderstander{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: time.Duration(timeout) * time.Second,
		sem:     semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
	}, nil
}

const classifyPrompt = `You classify a user message in a meeting-booking conversation.
Respond with exactly one of these labels and nothing else:
greeting, book_meeting, check_availability, select_slot, confirm_booking, modify_booking, cancel_booking, general`

const extractPrompt = `You extract booking fields from a user message in a meeting-booking conversation.
Respond with a single JSON object. Use only these keys, omitting any the message does not mention:
"date" (the date phrase verbatim, e.g. "tomorrow", "friday", "2026-09-04"),
"time" (time-of-day phrase, e.g. "morning", "3 pm"),
"duration" (e.g. "90 minutes", "2 hours"),
"title", "description", "attendee_contact".
Do not invent values. Respond with JSON only.`

func (u *LLMUnderstander) complete(ctx context.Context, system, user string) (string, error) {
	if err := u.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("nlu: acquire slot: %w", err)
	}
	defer u.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := u.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       u.model,
		MaxTokens:   256,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("nlu: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("nlu: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (u *LLMUnderstander) ClassifyIntent(ctx context.Context, message string, s *booking.Session) (booking.Intent, error) {
	user := message
	if s != nil {
		user = fmt.Sprintf("Conversation state: %s\nMessage: %s", s.State, message)
	}
	out, err := u.complete(ctx, classifyPrompt, user)
	if err != nil {
		return booking.IntentGeneral, err
	}
	label := strings.ToLower(strings.TrimSpace(out))
	u.logger.Debug("intent classified", "label", label, "message_len", len(message))
	return booking.ParseIntent(label), nil
}

func (u *LLMUnderstander) ExtractFields(ctx context.Context, message string, now time.Time) (booking.RawFields, error) {
	user := fmt.Sprintf("Current date: %s\nMessage: %s", now.Format("2006-01-02 (Monday)"), message)
	out, err := u.complete(ctx, extractPrompt, user)
	if err != nil {
		return nil, err
	}
	raw, err := parseFieldJSON(out)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// parseFieldJSON tolerates completions that wrap the JSON object in prose
// or markdown fences by slicing out the outermost braces.
func parseFieldJSON(out string) (booking.RawFields, error) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("nlu: no JSON object in completion")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(out[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("nlu: decode extraction: %w", err)
	}
	raw := booking.RawFields{}
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			if val != "" {
				raw[k] = val
			}
		case float64:
			raw[k] = fmt.Sprintf("%d", int(val))
		}
	}
	return raw, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
