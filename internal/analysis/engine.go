// Package analysis implements issue scoring and the batch orchestration that
// drives it.
package analysis

import (
	"context"

	"github.com/danielolaszy/triage/pkg/models"
)

// Engine scores a single issue into the derived AI field set. Analyze
// returns the eight computed fields; ai_last_evaluated_at is stamped by the
// orchestrator when the field set is finalized.
//
// Implementations must treat each call as independent: the orchestrator runs
// many Analyze calls concurrently.
type Engine interface {
	// Name identifies the engine for logging and reports.
	Name() string

	// Analyze derives the AI fields for one issue.
	Analyze(ctx context.Context, issue models.Issue) (map[string]any, error)
}
