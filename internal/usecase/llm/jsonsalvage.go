// Package llm holds helpers shared by every LLM-consuming pipeline stage:
// parsing a model's free-form completion back into the JSON object the
// prompt asked for, tolerating the common ways models misbehave (markdown
// code fences, leading or trailing prose). A truncated object, whose braces
// never balance, is not repaired and fails to parse.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSONObject extracts and unmarshals a single JSON object from raw,
// which may be wrapped in a markdown code fence or followed by trailing
// commentary. It is the salvage-parsing pass every stage runs on a model
// response before giving up and falling back.
func ParseJSONObject(raw string, out interface{}) error {
	candidate := stripFence(raw)

	if err := json.Unmarshal([]byte(candidate), out); err == nil {
		return nil
	}

	// Fall back to the outermost balanced {...} span, which tolerates
	// leading/trailing prose the model added around the object.
	span, err := outermostObject(candidate)
	if err != nil {
		return fmt.Errorf("no JSON object found in response: %w", err)
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		return fmt.Errorf("unmarshal salvaged JSON object: %w", err)
	}
	return nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// outermostObject returns the substring spanning the first '{' through its
// matching '}', tracking string literals so braces inside quoted values
// don't confuse the depth count.
func outermostObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", fmt.Errorf("no opening brace")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal, ignore braces
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("no matching closing brace")
}
