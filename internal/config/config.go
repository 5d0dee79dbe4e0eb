// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Engine names accepted for ANALYSIS_ENGINE.
const (
	EngineRule = "rule"
	EngineLLM  = "llm"
)

// LLM provider names accepted for LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira     JiraConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Server   ServerConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
}

// LLMConfig holds configuration for the delegated scoring engine.
type LLMConfig struct {
	Provider        string
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
}

// AnalysisConfig holds batch analysis tuning parameters.
type AnalysisConfig struct {
	// Concurrency bounds in-flight work in both orchestrators
	Concurrency int

	// DefaultStatus is the status filter applied when the caller gives none
	DefaultStatus string

	// Engine selects the scoring strategy: "rule" or "llm"
	Engine string
}

// ServerConfig holds the HTTP front-end configuration.
type ServerConfig struct {
	Port int
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.anthropic_api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.ollama_host", "OLLAMA_HOST")
	v.BindEnv("analysis.concurrency", "ANALYSIS_CONCURRENCY")
	v.BindEnv("analysis.default_status", "DEFAULT_STATUS_FILTER")
	v.BindEnv("analysis.engine", "ANALYSIS_ENGINE")
	v.BindEnv("server.port", "PORT")

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4.1-mini")
	v.SetDefault("llm.ollama_host", "http://localhost:11434")
	v.SetDefault("analysis.concurrency", 5)
	v.SetDefault("analysis.default_status", "未着手")
	v.SetDefault("analysis.engine", EngineRule)
	v.SetDefault("server.port", 3000)

	// Create config structure
	config := &Config{
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(v.GetString("llm.provider")),
			Model:           v.GetString("llm.model"),
			OpenAIAPIKey:    v.GetString("llm.openai_api_key"),
			AnthropicAPIKey: v.GetString("llm.anthropic_api_key"),
			OllamaHost:      v.GetString("llm.ollama_host"),
		},
		Analysis: AnalysisConfig{
			Concurrency:   v.GetInt("analysis.concurrency"),
			DefaultStatus: v.GetString("analysis.default_status"),
			Engine:        strings.ToLower(v.GetString("analysis.engine")),
		},
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
		},
	}

	// A misconfigured bound must never disable the limiter
	if config.Analysis.Concurrency < 1 {
		config.Analysis.Concurrency = 1
	}

	return config, nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	// JIRA validation
	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateLLMConfig validates delegated-engine configuration. It only
// enforces credentials when the LLM engine is actually selected.
func ValidateLLMConfig(config *Config) error {
	if config.Analysis.Engine != EngineLLM {
		return nil
	}

	switch config.LLM.Provider {
	case ProviderOpenAI:
		if config.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("missing required environment variable: OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if config.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("missing required environment variable: ANTHROPIC_API_KEY")
		}
	case ProviderOllama:
		// Ollama needs no credentials
	default:
		return fmt.Errorf("unsupported LLM provider: %s", config.LLM.Provider)
	}

	return nil
}
