package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON locates the first '{' and the last '}' in free-form model
// output and parses that substring as a JSON object. LLM responses often
// wrap the object in prose or code fences; everything outside the braces is
// ignored.
func ExtractJSON(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")

	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("unable to locate JSON object in AI response")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response as JSON: %v", err)
	}
	return parsed, nil
}
