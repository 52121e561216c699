// Package extract isolates the JSON object a completion backend was asked to
// emit from whatever prose it wrapped around it.
package extract

import (
	"encoding/json"
	"strings"

	"interview-byte/internal/domain"
)

// Object locates the first '{' and the last '}' in rawText and returns the
// substring between them (inclusive) once it parses as a JSON object. This
// tolerates a backend that surrounds the intended payload with explanatory
// text, at the cost of being fooled by braces inside the prose itself, so
// callers must validate every field of the result.
//
// Reasoning blocks (<think>...</think>) and markdown code fences are stripped
// before scanning; some models emit both around the payload.
func Object(rawText string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(rawText)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):]
		}
	}
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, domain.NewMalformedPayloadError(rawText, nil)
	}

	candidate := cleaned[jsonStart : jsonEnd+1]
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, domain.NewMalformedPayloadError(rawText, err)
	}
	return json.RawMessage(candidate), nil
}
