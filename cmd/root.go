// Package cmd provides the command-line interface for the triage tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/analysis"
	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/internal/jira"
)

const version = "1.1.0"

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage scores Jira Product Discovery tickets and writes the derived ai_ fields",
	Long: `Triage analyzes Jira Product Discovery tickets and derives a set of
ai_ prefixed scoring fields (impact, effort, urgency, priority, theme
category, confidence, suggested next action and an analysis note).

Scores come from a deterministic rule engine by default, or from an LLM
when ANALYSIS_ENGINE=llm is configured. Derived fields can be written back
to Jira individually or in batches, with a dry-run mode that previews the
writes without touching Jira.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

// buildService wires the Jira client and the configured scoring engine into
// the orchestrator. engineOverride, when non-empty, wins over
// ANALYSIS_ENGINE.
func buildService(engineOverride string) (*analysis.Service, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if engineOverride != "" {
		cfg.Analysis.Engine = strings.ToLower(engineOverride)
	}

	client, err := jira.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize jira client: %v", err)
	}

	var engine analysis.Engine
	switch cfg.Analysis.Engine {
	case config.EngineLLM:
		engine, err = analysis.NewLLMEngine(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize llm engine: %v", err)
		}
	case config.EngineRule:
		engine = analysis.NewRuleEngine()
	default:
		return nil, nil, fmt.Errorf("unsupported analysis engine: %s", cfg.Analysis.Engine)
	}

	return analysis.NewService(client, client, engine, cfg.Analysis.Concurrency), cfg, nil
}

// printJSON writes the report to stdout. Logs go to stderr, so stdout stays
// machine-readable.
func printJSON(report any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
