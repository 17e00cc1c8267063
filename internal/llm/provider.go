// Package llm talks to generative-language providers. Gemini is the only
// backend; the Provider interface keeps the advisor independent of it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Provider names for configuration.
const (
	ProviderGemini = "gemini"
)

// Common errors returned by LLM providers.
var (
	ErrNoAPIKey        = errors.New("llm: API key not configured")
	ErrRateLimit       = errors.New("llm: rate limit exceeded")
	ErrProviderDown    = errors.New("llm: provider unavailable")
	ErrInvalidModel    = errors.New("llm: invalid model")
	ErrEmptyResponse   = errors.New("llm: empty response")
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
	FinishSafety FinishReason = "safety"
	FinishError  FinishReason = "error"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response represents a complete response from the LLM.
type Response struct {
	Content      string        `json:"content"`
	FinishReason FinishReason  `json:"finish_reason"`
	Usage        Usage         `json:"usage"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Latency      time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions configures a single chat request. Zero values mean "provider default".
type ChatOptions struct {
	Model       string   `json:"model,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Provider is implemented by every LLM backend.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Model returns the model used when ChatOptions names none.
	Model() string

	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Ping checks that the provider is reachable and the key is accepted.
	Ping(ctx context.Context) error
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// String returns a one-line summary of the response for logs.
func (r *Response) String() string {
	truncated := r.Content
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}

// Generator turns a Provider into a single-prompt text completer.
type Generator struct {
	provider Provider
	opts     *ChatOptions
	logger   *slog.Logger
}

// NewGenerator wraps p; opts apply to every request and may be nil. A nil
// logger means slog.Default().
func NewGenerator(p Provider, opts *ChatOptions, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: p, opts: opts, logger: logger}
}

// Generate sends prompt as a lone user message and returns the raw text.
// A response with no text is ErrEmptyResponse.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.provider.Chat(ctx, []Message{UserMessage(prompt)}, g.opts)
	if err != nil {
		return "", err
	}
	g.logger.Debug("generation complete", "response", resp.String())
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w (finish reason %q)", ErrEmptyResponse, resp.FinishReason)
	}
	return resp.Content, nil
}

// NewProvider builds the named backend. An empty name selects Gemini.
func NewProvider(name, apiKey, model string, timeout time.Duration) (Provider, error) {
	switch strings.ToLower(name) {
	case "", ProviderGemini:
		opts := []GeminiOption{WithGeminiModel(model)}
		if timeout > 0 {
			opts = append(opts, WithGeminiHTTPClient(&http.Client{Timeout: timeout}))
		}
		return NewGeminiProvider(apiKey, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}
