package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/danielolaszy/triage/internal/adf"
	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/pkg/models"
)

// LLMEngine delegates scoring to a chat-completion model and parses the
// JSON object from its free-text response. Unlike the rule engine it is
// neither deterministic nor offline; it is only used when explicitly
// configured.
type LLMEngine struct {
	llm       llms.Model
	modelName string
}

// NewLLMEngine creates the delegated engine from configuration. A missing
// credential is a construction-time error so a misconfigured engine fails
// before any batch work starts.
func NewLLMEngine(cfg *config.Config) (*LLMEngine, error) {
	if err := config.ValidateLLMConfig(cfg); err != nil {
		return nil, err
	}

	var model llms.Model
	var err error

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		model, err = openai.New(
			openai.WithToken(cfg.LLM.OpenAIAPIKey),
			openai.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		model, err = anthropic.New(
			anthropic.WithToken(cfg.LLM.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLM.Model),
			ollama.WithServerURL(cfg.LLM.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	return &LLMEngine{llm: model, modelName: cfg.LLM.Model}, nil
}

// Name implements Engine.
func (e *LLMEngine) Name() string {
	return "llm"
}

// Analyze implements Engine by prompting the model and extracting the JSON
// object from its response.
func (e *LLMEngine) Analyze(ctx context.Context, issue models.Issue) (map[string]any, error) {
	prompt := buildPrompt(issue)

	response, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if response == "" {
		return nil, fmt.Errorf("AI response did not include text output")
	}

	return ExtractJSON(response)
}

// buildPrompt renders the issue context for the model. The field list pins
// the response keys to the derived-field contract.
func buildPrompt(issue models.Issue) string {
	description := adf.ToPlainText(issue.Description)

	commentLines := make([]string, 0, len(issue.Comments))
	for _, comment := range issue.Comments {
		commentLines = append(commentLines, fmt.Sprintf("%s: %s", comment.Author, adf.CommentBody(comment)))
	}

	var b strings.Builder
	b.WriteString("You are an AI assistant helping product discovery teams prioritize work. ")
	fmt.Fprintf(&b, "Analyze the following Jira Product Discovery idea and output a JSON object with keys: %s.\n\n",
		strings.Join(models.AIFieldNames(), ", "))
	fmt.Fprintf(&b, "Idea key: %s\n", issue.Key)
	fmt.Fprintf(&b, "Summary: %s\n", issue.Summary)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Labels: %s\n", strings.Join(issue.Labels, ", "))
	fmt.Fprintf(&b, "Votes: %d\n", issue.Votes)
	fmt.Fprintf(&b, "Status: %s\n", issue.Status)
	fmt.Fprintf(&b, "Created: %s\n", formatTime(issue.Created))
	fmt.Fprintf(&b, "Updated: %s\n", formatTime(issue.Updated))
	fmt.Fprintf(&b, "Existing Impact: %s\n", formatOverride(issue.Impact))
	fmt.Fprintf(&b, "Existing Effort: %s\n", formatOverride(issue.Effort))
	fmt.Fprintf(&b, "Existing Confidence: %s\n", formatOverride(issue.Confidence))
	fmt.Fprintf(&b, "Recent Comments: %s\n\n", strings.Join(commentLines, "\n"))
	b.WriteString("Only respond with valid JSON.")

	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatOverride(value *float64) string {
	if value == nil {
		return "none"
	}
	return fmt.Sprintf("%g", *value)
}
