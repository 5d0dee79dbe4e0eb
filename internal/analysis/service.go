package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danielolaszy/triage/internal/jira"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// Fetcher pulls the complete result set for a query, draining all pages
// before returning.
type Fetcher interface {
	SearchAll(ctx context.Context, query jira.SearchQuery) ([]models.Issue, error)
}

// Updater writes a field map to a single issue.
type Updater interface {
	UpdateFields(ctx context.Context, issueID string, fields map[string]any) error
}

// AnalyzeRequest selects the issues for a batch analysis run.
type AnalyzeRequest struct {
	ProjectKey string

	// Status filters by status name; empty means no status clause
	Status string

	// Limit caps how many fetched issues are analyzed. Nil analyzes all; a
	// zero cap analyzes none while the report still carries the true total.
	Limit *int
}

// UpdateRequest is a batch of field updates.
type UpdateRequest struct {
	Items  []models.UpdateItem
	DryRun bool
}

// Service drives batch analysis and batch updates under a shared concurrency
// bound. All collaborators are injected at construction.
type Service struct {
	fetcher     Fetcher
	updater     Updater
	engine      Engine
	concurrency int
	now         func() time.Time
}

// NewService creates the orchestrator. A concurrency bound below 1 is
// coerced to 1.
func NewService(fetcher Fetcher, updater Updater, engine Engine, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		fetcher:     fetcher,
		updater:     updater,
		engine:      engine,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// forEach runs fn(i) for i in [0,n) on a fixed-size worker pool. Results are
// communicated through pre-sized slices indexed by i, so completion order
// never leaks into reports.
func (s *Service) forEach(n int, fn func(i int)) {
	workers := s.concurrency
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// RunAnalysis fetches every issue matching the request, scores the selected
// prefix concurrently, and returns the aggregated report. A fetch failure
// aborts the whole run; a scoring failure is local to its issue.
func (s *Service) RunAnalysis(ctx context.Context, req AnalyzeRequest) (*models.AnalyzeReport, error) {
	issues, err := s.fetcher.SearchAll(ctx, jira.SearchQuery{
		ProjectKey: req.ProjectKey,
		Status:     req.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	selected := issues
	if req.Limit != nil {
		limit := *req.Limit
		if limit < 0 {
			limit = 0
		}
		if limit < len(selected) {
			selected = selected[:limit]
		}
	}

	logging.Info("starting batch analysis",
		"project", req.ProjectKey,
		"total_issues", len(issues),
		"selected", len(selected),
		"engine", s.engine.Name(),
		"concurrency", s.concurrency)

	results := make([]models.IssueAnalysis, len(selected))
	s.forEach(len(selected), func(i int) {
		issue := selected[i]
		fields, err := s.engine.Analyze(ctx, issue)
		if err != nil {
			logging.Warn("issue analysis failed", "issue", issue.Key, "error", err)
			results[i] = models.IssueAnalysis{
				ID:      issue.Key,
				Summary: issue.Summary,
				Error:   err.Error(),
			}
			return
		}

		merged := make(map[string]any, len(fields)+1)
		for key, value := range fields {
			merged[key] = value
		}
		merged[models.FieldLastEvaluatedAt] = s.now().UTC().Format(time.RFC3339)

		results[i] = models.IssueAnalysis{
			ID:       issue.Key,
			Summary:  issue.Summary,
			AIFields: merged,
		}
	})

	analyzed := 0
	for _, result := range results {
		if result.Error == "" {
			analyzed++
		}
	}

	return &models.AnalyzeReport{
		ProjectKey:    req.ProjectKey,
		TotalIssues:   len(issues),
		AnalyzedCount: analyzed,
		Limit:         req.Limit,
		Issues:        results,
	}, nil
}

// RunUpdate sanitizes and dispatches a batch of field updates. Every item
// produces exactly one result: success, skipped, or failed. With DryRun set
// the updater is never invoked and UpdatedCount is zero.
func (s *Service) RunUpdate(ctx context.Context, req UpdateRequest) (*models.UpdateReport, error) {
	logging.Info("starting batch update",
		"items", len(req.Items),
		"dry_run", req.DryRun,
		"concurrency", s.concurrency)

	results := make([]models.UpdateResult, len(req.Items))
	s.forEach(len(req.Items), func(i int) {
		results[i] = s.updateOne(ctx, req.Items[i], req.DryRun)
	})

	updated := 0
	if !req.DryRun {
		for _, result := range results {
			if !result.Skipped && result.Error == "" {
				updated++
			}
		}
	}

	return &models.UpdateReport{
		UpdatedCount: updated,
		Status:       "success",
		DryRun:       req.DryRun,
		Results:      results,
	}, nil
}

// UpdateSingle updates one issue. Unlike the batch path, a missing id or an
// empty sanitized field set is a precondition error reported to the caller
// before any work starts.
func (s *Service) UpdateSingle(ctx context.Context, issueID string, fields map[string]any, dryRun bool) (*models.UpdateReport, error) {
	if issueID == "" {
		return nil, fmt.Errorf("issue_id is required")
	}

	sanitized := SanitizeFields(fields)
	if len(sanitized) == 0 {
		return nil, fmt.Errorf("no recognized ai_ fields provided for update")
	}

	result := s.updateOne(ctx, models.UpdateItem{IssueID: issueID, Fields: fields}, dryRun)

	updated := 0
	if !dryRun && result.Error == "" {
		updated = 1
	}

	return &models.UpdateReport{
		UpdatedCount: updated,
		Status:       "success",
		DryRun:       dryRun,
		Results:      []models.UpdateResult{result},
	}, nil
}

// updateOne handles one (issue, fields) pair with per-item failure
// isolation.
func (s *Service) updateOne(ctx context.Context, item models.UpdateItem, dryRun bool) models.UpdateResult {
	if item.IssueID == "" {
		return models.UpdateResult{Error: "issue_id is required"}
	}

	sanitized := SanitizeFields(item.Fields)
	if len(sanitized) == 0 {
		return models.UpdateResult{IssueID: item.IssueID, Skipped: true}
	}

	keys := make([]string, 0, len(sanitized))
	for key := range sanitized {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if !dryRun {
		if err := s.updater.UpdateFields(ctx, item.IssueID, sanitized); err != nil {
			logging.Warn("issue update failed", "issue", item.IssueID, "error", err)
			return models.UpdateResult{IssueID: item.IssueID, Error: err.Error()}
		}
	}

	return models.UpdateResult{IssueID: item.IssueID, FieldsUpdated: keys}
}
