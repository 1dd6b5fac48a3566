package llm

import "strings"

// ExtractJSONPayload pulls the JSON document out of a model reply. Models
// often wrap structured output in a fenced code block even when asked for
// bare JSON, so the extraction order is: a ```json fence, then any ```
// fence, then the trimmed reply itself. The caller decides what to do when
// the returned text fails to parse.
func ExtractJSONPayload(reply string) string {
	trimmed := strings.TrimSpace(reply)

	if payload, ok := fencedBlock(trimmed, "```json"); ok {
		return payload
	}
	if payload, ok := fencedBlock(trimmed, "```"); ok {
		return payload
	}
	return trimmed
}

// fencedBlock returns the content of the first code fence opened by marker.
func fencedBlock(s, marker string) (string, bool) {
	start := strings.Index(s, marker)
	if start == -1 {
		return "", false
	}
	rest := s[start+len(marker):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
