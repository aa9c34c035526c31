package llm

import (
    "context"
    "fmt"
    "io"
    "strings"

    "github.com/example/news-summarizer/internal/config"
)

const (
    defaultOpenAIModel    = "gpt-4o-mini"
    defaultAnthropicModel = "claude-3-5-sonnet-latest"
    defaultGeminiModel    = "gemini-1.5-flash"
)

// NewFromConfig returns a Client for the configured provider.
// Supported providers:
// - LLM_PROVIDER=openai|anthropic|gemini|mock
// - For OpenAI:    OPENAI_API_KEY, optional OPENAI_BASE_URL
// - For Anthropic: ANTHROPIC_API_KEY
// - For Gemini:    GOOGLE_API_KEY
// Without LLM_PROVIDER the first API key found picks the provider; with no key at all it returns a MockClient.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig) (Client, error) {
    prov := strings.ToLower(strings.TrimSpace(cfg.Provider))
    if prov == "" { prov = detectProvider(cfg) }
    switch prov {
    case "openai":
        if cfg.OpenAIAPIKey == "" { return nil, fmt.Errorf("llm: provider openai needs OPENAI_API_KEY") }
        return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, modelOr(cfg.Model, defaultOpenAIModel), cfg.MaxTokens), nil
    case "anthropic":
        if cfg.AnthropicAPIKey == "" { return nil, fmt.Errorf("llm: provider anthropic needs ANTHROPIC_API_KEY") }
        return NewAnthropicClient(cfg.AnthropicAPIKey, modelOr(cfg.Model, defaultAnthropicModel), cfg.MaxTokens), nil
    case "gemini":
        if cfg.GoogleAPIKey == "" { return nil, fmt.Errorf("llm: provider gemini needs GOOGLE_API_KEY") }
        c, err := NewGeminiClient(ctx, cfg.GoogleAPIKey, modelOr(cfg.Model, defaultGeminiModel), cfg.MaxTokens)
        if err != nil { return nil, err }
        return c, nil
    case "mock":
        return &MockClient{}, nil
    }
    return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
}

// Close releases c if it holds resources, such as the Gemini gRPC connection.
func Close(c Client) error {
    if closer, ok := c.(io.Closer); ok { return closer.Close() }
    return nil
}

func detectProvider(cfg config.LLMConfig) string {
    switch {
    case strings.TrimSpace(cfg.OpenAIAPIKey) != "":
        return "openai"
    case strings.TrimSpace(cfg.AnthropicAPIKey) != "":
        return "anthropic"
    case strings.TrimSpace(cfg.GoogleAPIKey) != "":
        return "gemini"
    }
    return "mock"
}

func modelOr(model, def string) string {
    if v := strings.TrimSpace(model); v != "" { return v }
    return def
}
