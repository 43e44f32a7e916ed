package agents

import (
	"encoding/json"
	"strings"
)

// ParseJSON extracts a JSON object embedded in free-form model text. It tries
// a fenced ```json block first, then the substring from the first '{' to the
// last '}'. The second result reports whether anything parsed; on failure the
// returned map is empty, never nil, and the function never panics. Every
// caller must treat the result as potentially missing expected keys.
func ParseJSON(text string) (map[string]interface{}, bool) {
	if candidate, ok := fencedJSON(text); ok {
		if parsed, ok := unmarshalObject(candidate); ok {
			return parsed, true
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if parsed, ok := unmarshalObject(text[start : end+1]); ok {
			return parsed, true
		}
	}
	return map[string]interface{}{}, false
}

func fencedJSON(text string) (string, bool) {
	const fence = "```json"
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func unmarshalObject(candidate string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stringValue reads a string field from a parsed object, defaulting when the
// key is absent or has a different type.
func stringValue(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// stringList reads a list of strings from a parsed object, skipping non-string
// entries rather than failing the whole list.
func stringList(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
