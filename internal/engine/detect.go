package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kalambet/hireagent/internal/ollama"
	"github.com/kalambet/hireagent/internal/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config selects and parameterises a provider.
type Config struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// Backend is a Service that can also report its own readiness.
type Backend interface {
	Service
	// EnsureReady verifies the provider can serve Model, writing progress to w.
	EnsureReady(ctx context.Context, w io.Writer) error
}

// New builds the configured provider, wrapped with the call timeout.
func New(cfg Config) (Service, Backend, error) {
	var b Backend
	switch cfg.Provider {
	case ProviderOpenAI, "":
		b = &openaiBackend{client: openai.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature)}
	case ProviderOllama:
		b = &ollamaBackend{client: ollama.New(cfg.BaseURL, cfg.Model, cfg.Temperature)}
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q (want %q or %q)", cfg.Provider, ProviderOpenAI, ProviderOllama)
	}
	return WithTimeout(b, cfg.Timeout), b, nil
}

type openaiBackend struct {
	client *openai.Client
}

func (o *openaiBackend) Invoke(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]openai.Message, len(messages))
	for i, m := range messages {
		msgs[i] = openai.Message{Role: m.Role, Content: m.Content}
	}
	return o.client.Chat(ctx, msgs)
}

// EnsureReady is a no-op for hosted APIs; failures surface on the first call.
func (o *openaiBackend) EnsureReady(context.Context, io.Writer) error {
	return nil
}

type ollamaBackend struct {
	client *ollama.Client
}

func (o *ollamaBackend) Invoke(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]ollama.Message, len(messages))
	for i, m := range messages {
		msgs[i] = ollama.Message{Role: m.Role, Content: m.Content}
	}
	return o.client.Chat(ctx, msgs)
}

func (o *ollamaBackend) EnsureReady(ctx context.Context, w io.Writer) error {
	return ollama.EnsureReady(ctx, o.client, w)
}
