// Package adf converts Atlassian Document Format rich text to plain text.
package adf

import (
	"encoding/json"
	"strings"

	"github.com/danielolaszy/triage/pkg/models"
)

// node is the subset of an ADF node the converter cares about.
type node struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Content []node `json:"content"`
}

// flatten joins the text of a node subtree with single spaces.
func flatten(content []node) string {
	parts := make([]string, 0, len(content))
	for _, n := range content {
		if n.Text != "" {
			parts = append(parts, n.Text)
			continue
		}
		if len(n.Content) > 0 {
			parts = append(parts, flatten(n.Content))
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ToPlainText normalizes a description value to plain text. Jira Product
// Discovery returns descriptions as ADF documents; older API versions return
// plain strings. A value that parses as a {"type":"doc"} document is
// flattened with one line per top-level block, anything else is returned
// unchanged.
func ToPlainText(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "{") {
		return value
	}

	var doc node
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil || doc.Type != "doc" {
		return value
	}

	lines := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		lines = append(lines, flatten(block.Content))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CommentBody extracts the plain-text body of a comment. Comment bodies share
// the description's string-or-document duality.
func CommentBody(comment models.Comment) string {
	return ToPlainText(comment.Body)
}
