package ai

import "strings"

// cleanModelJSON strips Markdown code fences and surrounding prose from a
// model response that was asked for strict JSON but may not have complied.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Fall back to the outermost JSON value if prose leaked around it.
	start := strings.IndexAny(s, "{[")
	if start > 0 {
		s = s[start:]
	}
	end := strings.LastIndexAny(s, "}]")
	if end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}

	return s
}
