package ai

import "strings"

// maxExtractStarts bounds how many unclosed '{' are retried, keeping the scan
// linear in the length of the model output.
const maxExtractStarts = 16

// ExtractJSONObject returns the first balanced {...} span in text. Braces
// inside JSON strings are ignored. A '{' that never closes is skipped and the
// scan resumes at the next one, so stray braces in surrounding prose do not
// hide a later object. The span is not guaranteed to be valid JSON.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for attempts := 0; start >= 0 && attempts < maxExtractStarts; attempts++ {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
