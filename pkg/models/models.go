// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// The nine derived fields this tool computes and may write back to Jira.
// The set is a closed external contract: updates are restricted to exactly
// these keys by membership check, not by prefix matching.
const (
	FieldImpactScore         = "ai_impact_score"
	FieldEffortScore         = "ai_effort_score"
	FieldUrgencyScore        = "ai_urgency_score"
	FieldPriorityRank        = "ai_priority_rank"
	FieldThemeCategory       = "ai_theme_category"
	FieldConfidenceLevel     = "ai_confidence_level"
	FieldSuggestedNextAction = "ai_suggested_next_action"
	FieldAnalysisNote        = "ai_analysis_note"
	FieldLastEvaluatedAt     = "ai_last_evaluated_at"
)

// aiFieldSet is the membership index over the nine field names.
var aiFieldSet = map[string]bool{
	FieldImpactScore:         true,
	FieldEffortScore:         true,
	FieldUrgencyScore:        true,
	FieldPriorityRank:        true,
	FieldThemeCategory:       true,
	FieldConfidenceLevel:     true,
	FieldSuggestedNextAction: true,
	FieldAnalysisNote:        true,
	FieldLastEvaluatedAt:     true,
}

// IsAIField reports whether name is one of the nine recognized AI fields.
func IsAIField(name string) bool {
	return aiFieldSet[name]
}

// AIFieldNames returns the closed set of AI field names in contract order.
func AIFieldNames() []string {
	return []string{
		FieldImpactScore,
		FieldEffortScore,
		FieldUrgencyScore,
		FieldPriorityRank,
		FieldThemeCategory,
		FieldConfidenceLevel,
		FieldSuggestedNextAction,
		FieldAnalysisNote,
		FieldLastEvaluatedAt,
	}
}

// Comment is a single issue comment.
type Comment struct {
	// Author is the commenter's display name
	Author string `json:"author"`

	// Body is the comment text, already normalized to plain text
	Body string `json:"body"`

	// Created is the raw creation timestamp as reported by Jira
	Created string `json:"created"`
}

// Issue represents one Jira issue with the attributes the analysis consumes.
type Issue struct {
	// Key is the stable issue identifier (e.g. "WD-101")
	Key string `json:"key"`

	// Summary is the issue's one-line title
	Summary string `json:"summary"`

	// Description is the raw description body. It may be plain text or a
	// JSON-encoded rich-text document; scoring normalizes it first.
	Description string `json:"description"`

	// Labels attached to the issue, in source order
	Labels []string `json:"labels"`

	// Votes is the vote count, zero when absent
	Votes int `json:"votes"`

	// Comments in source order
	Comments []Comment `json:"comments"`

	// Status is the current status name (e.g. "In Progress")
	Status string `json:"status"`

	// Created is the creation time; zero when Jira omitted it
	Created time.Time `json:"created"`

	// Updated is the last-modified time; zero when Jira omitted it
	Updated time.Time `json:"updated"`

	// Impact, Effort and Confidence are pre-existing human-entered override
	// values. Nil means no override; a present value takes precedence over
	// the computed score.
	Impact     *float64 `json:"impact,omitempty"`
	Effort     *float64 `json:"effort,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// IssueAnalysis is the per-issue outcome of a batch analysis. Exactly one of
// AIFields or Error is populated.
type IssueAnalysis struct {
	// ID is the issue key
	ID string `json:"id"`

	// Summary echoes the issue summary for readability of the report
	Summary string `json:"summary"`

	// AIFields holds the derived field set, including ai_last_evaluated_at
	AIFields map[string]any `json:"ai_fields,omitempty"`

	// Error carries the failure message when scoring this issue failed
	Error string `json:"error,omitempty"`
}

// AnalyzeReport aggregates a batch analysis run. Issues preserves the
// selection order of the fetch, not completion order.
type AnalyzeReport struct {
	ProjectKey    string          `json:"project_key"`
	TotalIssues   int             `json:"total_issues"`
	AnalyzedCount int             `json:"analyzed_count"`
	Limit         *int            `json:"limit"`
	Issues        []IssueAnalysis `json:"issues"`
}

// UpdateItem is one (issue, fields) pair submitted for update.
type UpdateItem struct {
	IssueID string         `json:"issue_id"`
	Fields  map[string]any `json:"fields"`
}

// UpdateResult is the per-issue outcome of a batch update.
type UpdateResult struct {
	IssueID string `json:"issue_id"`

	// FieldsUpdated lists the sanitized keys that were (or would be) written
	FieldsUpdated []string `json:"fields_updated,omitempty"`

	// Skipped is true when sanitization left nothing to write
	Skipped bool `json:"skipped"`

	Error string `json:"error,omitempty"`
}

// UpdateReport aggregates a batch update run. Results preserves input order.
// UpdatedCount is always zero on a dry run.
type UpdateReport struct {
	UpdatedCount int            `json:"updated_count"`
	Status       string         `json:"status"`
	DryRun       bool           `json:"dry_run"`
	Results      []UpdateResult `json:"logs"`
}
