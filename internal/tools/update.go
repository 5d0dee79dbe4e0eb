package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/danielolaszy/triage/internal/analysis"
	"github.com/danielolaszy/triage/pkg/models"
)

// UpdateFieldInput defines the input schema for the update_jira_field tool.
type UpdateFieldInput struct {
	IssueID string         `json:"issue_id" jsonschema:"required,Jira issue key (e.g. WD-101)"`
	Fields  map[string]any `json:"fields" jsonschema:"required,Map of ai_ prefixed fields and their values"`
	DryRun  bool           `json:"dry_run,omitempty" jsonschema:"Preview the update without writing"`
}

// singleUpdatePayload is the flat response shape for a single-issue update.
type singleUpdatePayload struct {
	UpdatedCount  int      `json:"updated_count"`
	Status        string   `json:"status"`
	DryRun        bool     `json:"dry_run"`
	IssueID       string   `json:"issue_id"`
	FieldsUpdated []string `json:"fields_updated"`
}

// NewUpdateFieldHandler creates the update_jira_field handler.
func NewUpdateFieldHandler(deps *Dependencies) mcp.ToolHandlerFor[UpdateFieldInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateFieldInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.IssueID == "" {
			return ErrorResult("issue_id is required", "Pass the Jira issue key, e.g. WD-101"), nil, nil
		}
		if len(input.Fields) == 0 {
			return ErrorResult("fields is required", "Provide at least one ai_ prefixed field"), nil, nil
		}

		report, err := deps.Service.UpdateSingle(ctx, input.IssueID, input.Fields, input.DryRun)
		if err != nil {
			return ErrorResult(err.Error(), "Only the recognized ai_ fields can be written"), nil, nil
		}

		result := report.Results[0]
		if result.Error != "" {
			deps.Logger.Error("issue update failed", "issue", input.IssueID, "error", result.Error)
			return ErrorResult("Failed to update "+input.IssueID+": "+result.Error, ""), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(singleUpdatePayload{
			UpdatedCount:  report.UpdatedCount,
			Status:        report.Status,
			DryRun:        report.DryRun,
			IssueID:       result.IssueID,
			FieldsUpdated: result.FieldsUpdated,
		}, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}

// BatchUpdateInput defines the input schema for the batch_update_jira_fields
// tool.
type BatchUpdateInput struct {
	Issues []models.UpdateItem `json:"issues" jsonschema:"required,Issues to update with their ai_ field maps"`
	DryRun bool                `json:"dry_run,omitempty" jsonschema:"Preview the updates without writing"`
}

// NewBatchUpdateHandler creates the batch_update_jira_fields handler. Items
// fail individually; the batch itself always produces a report.
func NewBatchUpdateHandler(deps *Dependencies) mcp.ToolHandlerFor[BatchUpdateInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BatchUpdateInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Issues == nil {
			return ErrorResult("issues array is required", "Provide issues with issue_id and fields"), nil, nil
		}

		report, err := deps.Service.RunUpdate(ctx, analysis.UpdateRequest{
			Items:  input.Issues,
			DryRun: input.DryRun,
		})
		if err != nil {
			deps.Logger.Error("batch update failed", "items", len(input.Issues), "error", err)
			return ErrorResult("Failed to run batch update: "+err.Error(), ""), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(report, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}
