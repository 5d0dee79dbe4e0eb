// Package tools implements the MCP tool handlers.
package tools

import (
	"context"
	"log/slog"

	"github.com/danielolaszy/triage/internal/analysis"
	"github.com/danielolaszy/triage/pkg/models"
)

// Service is the orchestrator surface the tool handlers call into.
type Service interface {
	RunAnalysis(ctx context.Context, req analysis.AnalyzeRequest) (*models.AnalyzeReport, error)
	RunUpdate(ctx context.Context, req analysis.UpdateRequest) (*models.UpdateReport, error)
	UpdateSingle(ctx context.Context, issueID string, fields map[string]any, dryRun bool) (*models.UpdateReport, error)
}

// Dependencies holds shared dependencies injected into all tool handlers.
type Dependencies struct {
	Service       Service
	DefaultStatus string
	Logger        *slog.Logger
}
