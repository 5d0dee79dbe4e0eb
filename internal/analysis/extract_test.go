package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected map[string]any
		wantErr  bool
	}{
		{
			name:     "Bare object",
			text:     `{"ai_impact_score": 7}`,
			expected: map[string]any{"ai_impact_score": float64(7)},
		},
		{
			name:     "Object wrapped in prose",
			text:     "Here is the analysis:\n{\"ai_theme_category\": \"安定性\"}\nLet me know if you need more.",
			expected: map[string]any{"ai_theme_category": "安定性"},
		},
		{
			name:     "Code fence",
			text:     "```json\n{\"ai_effort_score\": 3}\n```",
			expected: map[string]any{"ai_effort_score": float64(3)},
		},
		{
			name:    "No braces",
			text:    "I cannot produce JSON for this.",
			wantErr: true,
		},
		{
			name:    "Braces out of order",
			text:    "} nothing here {",
			wantErr: true,
		},
		{
			name:    "Unparseable content",
			text:    "{not json}",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ExtractJSON(tc.text)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, parsed)
		})
	}
}
