// Package jira provides the client used to fetch and update Jira issues.
package jira

import (
	"context"
	"fmt"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/triage/internal/adf"
	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// searchPageSize is the page size used when draining search results.
const searchPageSize = 100

// Override fields are read from two alternative attribute names. The
// custom-field name wins over the canonical display name; keep this order in
// sync with overrideValue and its tests.
const (
	customFieldImpact     = "customfield_impact"
	customFieldEffort     = "customfield_effort"
	customFieldConfidence = "customfield_confidence"

	canonicalImpact     = "Impact"
	canonicalEffort     = "Effort"
	canonicalConfidence = "Confidence"
)

// searchFields is the field list requested from the search API.
var searchFields = []string{
	"summary",
	"description",
	"labels",
	"votes",
	"comment",
	"created",
	"updated",
	"status",
	canonicalImpact,
	canonicalEffort,
	canonicalConfidence,
	customFieldImpact,
	customFieldEffort,
	customFieldConfidence,
}

// SearchQuery selects the issues a batch analysis operates on. JQL, when
// set, replaces the project/status clause entirely.
type SearchQuery struct {
	ProjectKey string
	Status     string
	JQL        string
}

// Client handles interactions with the JIRA API. It is constructed once and
// injected into the callers that need it; there is no process-wide instance.
type Client struct {
	client *jira.Client
}

// NewClient creates a new JIRA client from the given configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	// Create JIRA authentication transport
	tp := jira.BasicAuthTransport{
		Username: cfg.Jira.Username,
		Password: cfg.Jira.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.Jira.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %v", err)
	}

	logging.Debug("jira client initialized",
		"url", cfg.Jira.URL,
		"username", cfg.Jira.Username,
		"token", logging.MaskSensitive(cfg.Jira.Token))

	return &Client{client: client}, nil
}

// buildJQL renders the search clause for a query.
func buildJQL(query SearchQuery) string {
	if query.JQL != "" {
		return query.JQL
	}

	clauses := []string{fmt.Sprintf("project = %q", query.ProjectKey)}
	if query.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = %q", query.Status))
	}
	return strings.Join(clauses, " AND ")
}

// SearchAll returns every issue matching the query, draining all result
// pages before returning. Page fetches are sequential; a failure on any page
// fails the whole search.
func (c *Client) SearchAll(ctx context.Context, query SearchQuery) ([]models.Issue, error) {
	if c.client == nil {
		return nil, fmt.Errorf("jira client not initialized")
	}

	jql := buildJQL(query)
	logging.Debug("searching issues", "jql", jql)

	var issues []models.Issue
	startAt := 0

	for {
		opts := &jira.SearchOptions{
			StartAt:    startAt,
			MaxResults: searchPageSize,
			Fields:     searchFields,
			Expand:     "renderedFields,names",
		}

		page, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search jira issues: %v", err)
		}

		for _, issue := range page {
			issues = append(issues, convertIssue(issue))
		}
		startAt += len(page)

		if len(page) == 0 || startAt >= resp.Total {
			break
		}
	}

	logging.Debug("search complete", "jql", jql, "count", len(issues))
	return issues, nil
}

// UpdateFields writes the given fields to a single issue. One network call,
// no retry; retries are the caller's decision.
func (c *Client) UpdateFields(ctx context.Context, issueID string, fields map[string]any) error {
	if c.client == nil {
		return fmt.Errorf("jira client not initialized")
	}

	payload := map[string]any{"fields": fields}
	resp, err := c.client.Issue.UpdateIssueWithContext(ctx, issueID, payload)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to update issue %s: %v (status: %d)", issueID, err, resp.StatusCode)
		}
		return fmt.Errorf("failed to update issue %s: %v", issueID, err)
	}

	logging.Debug("issue updated", "issue_id", issueID, "field_count", len(fields))
	return nil
}

// convertIssue maps a go-jira issue onto the internal model.
func convertIssue(issue jira.Issue) models.Issue {
	result := models.Issue{Key: issue.Key}

	fields := issue.Fields
	if fields == nil {
		return result
	}

	result.Summary = fields.Summary
	result.Description = fields.Description
	result.Labels = fields.Labels
	result.Status = statusName(fields)
	result.Created = time.Time(fields.Created)
	result.Updated = time.Time(fields.Updated)

	if fields.Votes != nil {
		result.Votes = fields.Votes.Votes
	}

	if fields.Comments != nil {
		for _, comment := range fields.Comments.Comments {
			if comment == nil {
				continue
			}
			result.Comments = append(result.Comments, models.Comment{
				Author:  comment.Author.DisplayName,
				Body:    adf.ToPlainText(comment.Body),
				Created: comment.Created,
			})
		}
	}

	result.Impact = overrideValue(fields, customFieldImpact, canonicalImpact)
	result.Effort = overrideValue(fields, customFieldEffort, canonicalEffort)
	result.Confidence = overrideValue(fields, customFieldConfidence, canonicalConfidence)

	return result
}

func statusName(fields *jira.IssueFields) string {
	if fields.Status == nil {
		return ""
	}
	return fields.Status.Name
}

// overrideValue reads a human-entered override from the issue's unmapped
// fields, trying the custom-field name before the canonical one.
func overrideValue(fields *jira.IssueFields, names ...string) *float64 {
	for _, name := range names {
		raw, ok := fields.Unknowns[name]
		if !ok || raw == nil {
			continue
		}
		if value, ok := coerceNumber(raw); ok {
			return &value
		}
	}
	return nil
}
