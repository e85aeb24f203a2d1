// Package utils holds small helpers shared across packages.
package utils

import "strings"

// CleanJSONResponse strips the markdown code fences generative models tend to
// wrap JSON payloads in, returning the bare JSON text.
func CleanJSONResponse(txt string) string {
	cleaned := strings.TrimSpace(txt)

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```json")
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	return strings.TrimSpace(cleaned)
}
