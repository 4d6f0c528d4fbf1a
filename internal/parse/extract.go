// Package parse recovers structured results from untrusted LLM output text.
//
// Model responses arrive as freeform prose that should contain exactly one
// JSON object, possibly wrapped in markdown fences or surrounded by noise.
// Extraction scans for the first brace-balanced span, string and escape
// aware, then validates it against the tri-state generation schema.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"qacraft/internal/domain"
)

// trailingComma matches a comma that directly precedes a closing brace or
// bracket across whitespace. Applied blindly, so a literal ",\n}" inside a
// string value would be rewritten too; the rewrite only sticks when the
// result parses.
var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// ExtractObject returns the first syntactically balanced JSON object
// embedded in text. One level of markdown code fences is stripped before
// scanning. When no balanced span is found the whole input is tried as
// JSON; failing that, a ResponseNotJson failure carrying the raw text is
// returned.
func ExtractObject(raw string) (string, error) {
	text := stripFence(raw)

	if span, ok := balancedSpan(text); ok {
		if json.Valid([]byte(span)) {
			return span, nil
		}
		if repaired, ok := repairTrailingCommas(span); ok {
			return repaired, nil
		}
		return "", domain.NewRawFailure(domain.FailResponseNotJSON, raw,
			"model did not return valid JSON")
	}

	// No balanced object: fall back to parsing the entire input.
	whole := strings.TrimSpace(text)
	if json.Valid([]byte(whole)) {
		return whole, nil
	}
	if repaired, ok := repairTrailingCommas(whole); ok {
		return repaired, nil
	}
	return "", domain.NewRawFailure(domain.FailResponseNotJSON, raw,
		"model did not return valid JSON")
}

// balancedSpan locates the first '{' and scans forward with a brace
// counter. A '"' toggles string state unless escaped; a '\' consumes the
// following character. Nested objects and arrays are part of the span since
// every '{'/'}' pair counts. Returns ok=false when no '{' exists or the
// counter never returns to zero.
func balancedSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// stripFence removes one level of markdown code-fence wrapping
// (```json ... ``` or bare ```). Anything else passes through untouched.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	body := strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		marker := strings.TrimSpace(body[:nl])
		// Only a language marker may sit on the fence line.
		if marker == "" || marker == "json" {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// repairTrailingCommas applies the single best-effort rewrite for trailing
// commas before a closing brace or bracket, then re-validates. This is a
// documented fallback, not a general JSON repair: nested malformations
// beyond trailing commas still fail.
func repairTrailingCommas(span string) (string, bool) {
	repaired := trailingComma.ReplaceAllString(span, "$1")
	if repaired == span {
		return "", false
	}
	if json.Valid([]byte(repaired)) {
		return repaired, true
	}
	return "", false
}
