// Package jsonfield does best-effort scalar-field extraction from
// JSON-like text without parsing it.
//
// This is NOT a JSON parser. Extract performs a single top-level lookup: it
// does not recurse, does not process escapes (an embedded \" in a string
// value truncates the result), and is unsafe against nested objects that
// reuse the key name. Callers must only point it at known-flat response
// shapes, typically as a salvage path for bodies that fail real decoding.
package jsonfield

import "strings"

// Extract returns the value of key in body, or "" if the key is absent or
// the body is malformed. String values are returned without their quotes;
// numeric and boolean literals are returned trimmed.
func Extract(body, key string) string {
	searchKey := `"` + key + `"`
	keyIdx := strings.Index(body, searchKey)
	if keyIdx == -1 {
		return ""
	}

	colonOff := strings.Index(body[keyIdx:], ":")
	if colonOff == -1 {
		return ""
	}

	valueStart := keyIdx + colonOff + 1
	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= len(body) {
		return ""
	}

	if body[valueStart] == '"' {
		// String value: content up to the next quote, no escape handling.
		end := strings.IndexByte(body[valueStart+1:], '"')
		if end == -1 {
			return ""
		}
		return body[valueStart+1 : valueStart+1+end]
	}

	// Number or boolean literal: scan to the next delimiter.
	valueEnd := valueStart
	for valueEnd < len(body) {
		c := body[valueEnd]
		if c == ',' || c == '}' || c == ']' {
			break
		}
		valueEnd++
	}
	return strings.TrimSpace(body[valueStart:valueEnd])
}
