package config

import (
    "fmt"
    "strings"
    "time"

    "github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration. Values come from the environment.
type Config struct {
    Server  ServerConfig
    Logging LogConfig
    Summary SummaryConfig
    Tools   ToolsConfig
    Agent   AgentConfig
    LLM     LLMConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
    Host           string `envconfig:"HOST" default:"0.0.0.0"`
    Port           string `envconfig:"PORT" default:"8000"`
    MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
    Level       string `envconfig:"LOG_LEVEL" default:"info"`
    Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// SummaryConfig holds knobs for one summarize call. A zero Timeout disables the overall deadline.
type SummaryConfig struct {
    Timeout         time.Duration `envconfig:"SUMMARY_TIMEOUT" default:"0s"`
    DefaultLanguage string        `envconfig:"DEFAULT_LANGUAGE" default:"vietnamese"`
}

// ToolsConfig describes the two stdio tool servers started per request.
type ToolsConfig struct {
    FetchCommand   string        `envconfig:"FETCH_SERVER_COMMAND" default:"uvx"`
    FetchArgs      []string      `envconfig:"FETCH_SERVER_ARGS" default:"mcp-server-fetch"`
    BrowserCommand string        `envconfig:"BROWSER_SERVER_COMMAND" default:"npx"`
    BrowserArgs    []string      `envconfig:"BROWSER_SERVER_ARGS" default:"@playwright/mcp@latest"`
    Env            []string      `envconfig:"TOOL_SERVER_ENV"`
    SessionTimeout time.Duration `envconfig:"TOOL_SESSION_TIMEOUT" default:"60s"`
    CloseGrace     time.Duration `envconfig:"TOOL_CLOSE_GRACE" default:"2s"`
}

// AgentConfig holds the agent definition knobs.
type AgentConfig struct {
    Name             string `envconfig:"AGENT_NAME" default:"news_summarizer"`
    MaxTurns         int    `envconfig:"AGENT_MAX_TURNS" default:"10"`
    InstructionsFile string `envconfig:"AGENT_INSTRUCTIONS_FILE"`
}

// LLMConfig selects and configures the model provider.
// An empty Provider means auto-detect from whichever API key is set.
type LLMConfig struct {
    Provider        string `envconfig:"LLM_PROVIDER"`
    Model           string `envconfig:"LLM_MODEL"`
    MaxTokens       int64  `envconfig:"LLM_MAX_TOKENS" default:"4096"`
    OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
    OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL"`
    AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
    GoogleAPIKey    string `envconfig:"GOOGLE_API_KEY"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
    var cfg Config
    if err := envconfig.Process("", &cfg); err != nil {
        return nil, fmt.Errorf("failed to load config: %w", err)
    }
    if err := cfg.Validate(); err != nil { return nil, err }
    return &cfg, nil
}

// Validate rejects values envconfig accepts but the service cannot run with.
func (c *Config) Validate() error {
    if strings.TrimSpace(c.Tools.FetchCommand) == "" { return fmt.Errorf("invalid config: FETCH_SERVER_COMMAND is empty") }
    if strings.TrimSpace(c.Tools.BrowserCommand) == "" { return fmt.Errorf("invalid config: BROWSER_SERVER_COMMAND is empty") }
    if c.Tools.SessionTimeout <= 0 { return fmt.Errorf("invalid config: TOOL_SESSION_TIMEOUT must be positive") }
    if c.Tools.CloseGrace <= 0 { return fmt.Errorf("invalid config: TOOL_CLOSE_GRACE must be positive") }
    if c.Summary.Timeout < 0 { return fmt.Errorf("invalid config: SUMMARY_TIMEOUT must not be negative") }
    if c.Agent.MaxTurns <= 0 { return fmt.Errorf("invalid config: AGENT_MAX_TURNS must be positive") }
    switch strings.ToLower(strings.TrimSpace(c.LLM.Provider)) {
    case "", "openai", "anthropic", "gemini", "mock":
    default:
        return fmt.Errorf("invalid config: unknown LLM_PROVIDER %q", c.LLM.Provider)
    }
    return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return c.Server.Host + ":" + c.Server.Port }

// Default returns the configuration used when nothing is set in the environment.
func Default() *Config {
    return &Config{
        Server:  ServerConfig{Host: "0.0.0.0", Port: "8000", MetricsEnabled: true},
        Logging: LogConfig{Level: "info"},
        Summary: SummaryConfig{DefaultLanguage: "vietnamese"},
        Tools: ToolsConfig{
            FetchCommand:   "uvx",
            FetchArgs:      []string{"mcp-server-fetch"},
            BrowserCommand: "npx",
            BrowserArgs:    []string{"@playwright/mcp@latest"},
            SessionTimeout: 60 * time.Second,
            CloseGrace:     2 * time.Second,
        },
        Agent: AgentConfig{Name: "news_summarizer", MaxTurns: 10},
        LLM:   LLMConfig{MaxTokens: 4096},
    }
}
