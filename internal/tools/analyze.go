package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/danielolaszy/triage/internal/analysis"
)

// AnalyzeInput defines the input schema for the analyze_jira_tickets tool.
type AnalyzeInput struct {
	ProjectKey   string `json:"project_key" jsonschema:"required,Jira project key (e.g. WD)"`
	StatusFilter string `json:"status_filter,omitempty" jsonschema:"Status filter; defaults to the configured status"`
	Limit        string `json:"limit,omitempty" jsonschema:"Maximum number of tickets to analyze, or unlimited for all"`
}

// NewAnalyzeHandler creates the analyze_jira_tickets handler. It fetches all
// matching issues, scores them, and returns the batch report as JSON text.
func NewAnalyzeHandler(deps *Dependencies) mcp.ToolHandlerFor[AnalyzeInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.ProjectKey == "" {
			return ErrorResult("project_key is required", "Pass the Jira project key, e.g. WD"), nil, nil
		}

		limit, err := parseLimit(input.Limit)
		if err != nil {
			return ErrorResult(err.Error(), `Use a number or "unlimited"`), nil, nil
		}

		status := input.StatusFilter
		if status == "" {
			status = deps.DefaultStatus
		}

		report, err := deps.Service.RunAnalysis(ctx, analysis.AnalyzeRequest{
			ProjectKey: input.ProjectKey,
			Status:     status,
			Limit:      limit,
		})
		if err != nil {
			deps.Logger.Error("ticket analysis failed", "project", input.ProjectKey, "error", err)
			return ErrorResult("Failed to analyze tickets: "+err.Error(), "Check the Jira connection settings"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(report, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}

// parseLimit treats "" and "unlimited" as no cap and clamps negatives to
// zero.
func parseLimit(value string) (*int, error) {
	if value == "" || value == "unlimited" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("limit must be a number or \"unlimited\"")
	}
	if n < 0 {
		n = 0
	}
	return &n, nil
}
