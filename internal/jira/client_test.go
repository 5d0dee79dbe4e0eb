package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	jiralib "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumber(t *testing.T) {
	testCases := []struct {
		name     string
		raw      any
		expected float64
		ok       bool
	}{
		{name: "Float", raw: 7.5, expected: 7.5, ok: true},
		{name: "Int", raw: 4, expected: 4, ok: true},
		{name: "Numeric string", raw: "8", expected: 8, ok: true},
		{name: "String with units", raw: "8 points", expected: 8, ok: true},
		{name: "Blank string", raw: "   ", ok: false},
		{name: "Non-numeric string", raw: "high", ok: false},
		{name: "Option object with value", raw: map[string]any{"value": "6"}, expected: 6, ok: true},
		{name: "Option object with score", raw: map[string]any{"score": 3.0}, expected: 3, ok: true},
		{name: "Option object without numbers", raw: map[string]any{"id": "x"}, ok: false},
		{name: "Nil-ish type", raw: []string{"5"}, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := coerceNumber(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

// issueFromJSON decodes a raw API payload the way the client receives it,
// which also exercises go-jira's unknown-field capture.
func issueFromJSON(t *testing.T, payload string) jiralib.Issue {
	t.Helper()
	var issue jiralib.Issue
	require.NoError(t, json.Unmarshal([]byte(payload), &issue))
	return issue
}

func TestConvertIssue(t *testing.T) {
	issue := issueFromJSON(t, `{
		"key": "WD-101",
		"fields": {
			"summary": "ログインが遅い",
			"description": "詳細な説明",
			"labels": ["performance", "backend"],
			"votes": {"votes": 12},
			"status": {"name": "In Progress"},
			"comment": {"comments": [
				{"author": {"displayName": "Tanaka"}, "body": "再現しました", "created": "2026-07-01T10:00:00.000+0900"}
			]},
			"customfield_impact": "7",
			"Confidence": 0.8
		}
	}`)

	converted := convertIssue(issue)

	assert.Equal(t, "WD-101", converted.Key)
	assert.Equal(t, "ログインが遅い", converted.Summary)
	assert.Equal(t, []string{"performance", "backend"}, converted.Labels)
	assert.Equal(t, 12, converted.Votes)
	assert.Equal(t, "In Progress", converted.Status)
	require.Len(t, converted.Comments, 1)
	assert.Equal(t, "Tanaka", converted.Comments[0].Author)
	assert.Equal(t, "再現しました", converted.Comments[0].Body)

	require.NotNil(t, converted.Impact)
	assert.Equal(t, 7.0, *converted.Impact)
	assert.Nil(t, converted.Effort)
	require.NotNil(t, converted.Confidence)
	assert.Equal(t, 0.8, *converted.Confidence)
}

func TestConvertIssueOverridePrecedence(t *testing.T) {
	// When both names carry a value, the custom-field name wins.
	issue := issueFromJSON(t, `{
		"key": "WD-102",
		"fields": {
			"summary": "x",
			"customfield_impact": 9,
			"Impact": 2
		}
	}`)

	converted := convertIssue(issue)
	require.NotNil(t, converted.Impact)
	assert.Equal(t, 9.0, *converted.Impact)
}

func TestConvertIssueCanonicalFallback(t *testing.T) {
	// The canonical name is used when the custom field is absent or empty.
	issue := issueFromJSON(t, `{
		"key": "WD-103",
		"fields": {
			"summary": "x",
			"Effort": "5"
		}
	}`)

	converted := convertIssue(issue)
	require.NotNil(t, converted.Effort)
	assert.Equal(t, 5.0, *converted.Effort)
}

func TestBuildJQL(t *testing.T) {
	testCases := []struct {
		name     string
		query    SearchQuery
		expected string
	}{
		{
			name:     "Project only",
			query:    SearchQuery{ProjectKey: "WD"},
			expected: `project = "WD"`,
		},
		{
			name:     "Project and status",
			query:    SearchQuery{ProjectKey: "WD", Status: "未着手"},
			expected: `project = "WD" AND status = "未着手"`,
		},
		{
			name:     "Raw JQL wins",
			query:    SearchQuery{ProjectKey: "WD", JQL: "assignee = currentUser()"},
			expected: "assignee = currentUser()",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, buildJQL(tc.query))
		})
	}
}

// newTestClient points the go-jira client at a local test server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	jc, err := jiralib.NewClient(server.Client(), server.URL)
	require.NoError(t, err)
	return &Client{client: jc}
}

func TestSearchAllDrainsPages(t *testing.T) {
	const total = 150

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/2/search", r.URL.Path)

		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		pageEnd := startAt + searchPageSize
		if pageEnd > total {
			pageEnd = total
		}

		issues := make([]map[string]any, 0, pageEnd-startAt)
		for i := startAt; i < pageEnd; i++ {
			issues = append(issues, map[string]any{
				"key":    fmt.Sprintf("WD-%d", i+1),
				"fields": map[string]any{"summary": fmt.Sprintf("issue %d", i+1)},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"startAt":    startAt,
			"maxResults": searchPageSize,
			"total":      total,
			"issues":     issues,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	issues, err := client.SearchAll(context.Background(), SearchQuery{ProjectKey: "WD"})
	require.NoError(t, err)

	// Both pages drained, selection order preserved.
	require.Len(t, issues, total)
	assert.Equal(t, "WD-1", issues[0].Key)
	assert.Equal(t, "WD-150", issues[total-1].Key)
}

func TestSearchAllPropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["boom"]}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.SearchAll(context.Background(), SearchQuery{ProjectKey: "WD"})
	assert.Error(t, err)
}

func TestUpdateFields(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.UpdateFields(context.Background(), "WD-101", map[string]any{
		"ai_impact_score": 7,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/rest/api/2/issue/WD-101", gotPath)
	assert.Equal(t, float64(7), gotBody["fields"]["ai_impact_score"])
}
