// Package ai sends a message sequence to the configured LLM provider and
// normalizes its failures into a small error taxonomy.
package ai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starford/crmai/internal/models"
)

// Role values of a Message. System messages are tolerated in the input but
// the separate system prompt is the supported way to give guidance.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is one vendor binding. Implementations own any vendor-specific
// reshaping of messages and the system prompt.
type Provider interface {
	Complete(ctx context.Context, key, model string, messages []Message, system string) (string, error)
}

// Defaults for generation parameters and endpoints.
const (
	DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 1500
	DefaultTimeout        = 60 * time.Second
)

// Client dispatches calls to the provider named in the settings.
type Client struct {
	providers map[models.Provider]Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// Config tunes the built-in bindings.
type Config struct {
	OpenAIEndpoint string
	GeminiEndpoint string
	GeminiModel    string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithProvider registers or replaces the binding for name.
func WithProvider(name models.Provider, p Provider) Option {
	return func(c *Client) { c.providers[name] = p }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client with the OpenAI and Gemini bindings built from cfg.
// Zero fields in cfg take the package defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	c := &Client{
		providers: map[models.Provider]Provider{
			models.ProviderOpenAI: &OpenAI{
				Endpoint:    orString(cfg.OpenAIEndpoint, DefaultOpenAIEndpoint),
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
				HTTP:        cfg.HTTPClient,
			},
			models.ProviderGemini: &Gemini{
				Endpoint:    strings.TrimRight(orString(cfg.GeminiEndpoint, DefaultGeminiEndpoint), "/"),
				Model:       orString(cfg.GeminiModel, DefaultGeminiModel),
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
				HTTP:        cfg.HTTPClient,
			},
		},
		timeout: cfg.Timeout,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call sends messages and the optional system prompt to the provider selected
// by settings. It makes exactly one attempt, bounded by the client timeout and
// ctx. Every failure is an *Error.
func (c *Client) Call(ctx context.Context, settings models.AISettings, messages []Message, system string) (string, error) {
	p, ok := c.providers[settings.Provider]
	if !ok {
		return "", &Error{Kind: ErrUnknownProvider, Provider: settings.Provider}
	}
	key := strings.TrimSpace(settings.ActiveKey())
	if key == "" {
		return "", &Error{Kind: ErrMissingCredential, Provider: settings.Provider}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Complete(ctx, key, settings.Model, messages, system)
	if err != nil {
		c.logger.Warn("ai: call failed",
			slog.String("provider", string(settings.Provider)),
			slog.String("kind", KindOf(err)),
			slog.String("error", err.Error()))
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: ErrEmptyResponse, Provider: settings.Provider}
	}
	c.logger.Debug("ai: call done",
		slog.String("provider", string(settings.Provider)),
		slog.Duration("elapsed", time.Since(start)))
	return text, nil
}

// TestConnection sends a one-line ping and returns the provider's answer.
func (c *Client) TestConnection(ctx context.Context, settings models.AISettings) (string, error) {
	return c.Call(ctx, settings, []Message{{Role: RoleUser, Content: `Réponds uniquement "OK".`}}, "")
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
