package analysis

import (
	"github.com/danielolaszy/triage/pkg/models"
)

// SanitizeFields restricts an arbitrary field map to the recognized AI
// fields with non-nil values. Membership is checked against the closed field
// set, not by prefix, so a stray "ai_foo" never reaches the updater. The
// result is never nil; callers decide whether an empty map means "skip".
func SanitizeFields(fields map[string]any) map[string]any {
	sanitized := make(map[string]any, len(fields))
	for key, value := range fields {
		if !models.IsAIField(key) || value == nil {
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
