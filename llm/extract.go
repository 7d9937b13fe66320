package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONArray returns the first well-formed JSON array found in s.
// Model output routinely wraps JSON in prose or markdown fences, and
// with response_format json_object the array usually arrives inside a
// wrapper object; the scanner handles both by returning the first
// balanced `[...]` that is itself valid JSON. Candidates that balance
// but do not parse (a `[` that sat inside prose or a string literal)
// are skipped and the scan continues. Returns ok=false when nothing
// qualifies.
func ExtractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	for start >= 0 {
		if sub, ok := scanBalanced(s[start:], '[', ']'); ok && json.Valid([]byte(sub)) {
			return sub, true
		}
		next := strings.IndexByte(s[start+1:], '[')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return "", false
}

// scanBalanced returns the prefix of s spanning one balanced open/close
// pair, skipping brackets inside JSON string literals.
func scanBalanced(s string, open, close byte) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
			if depth < 0 {
				return "", false
			}
		}
	}
	return "", false
}
