package responders

import "strings"

// extractJSONArray returns the first balanced top-level JSON array in s.
// Brackets inside string literals are ignored.
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	for start >= 0 {
		if end, ok := matchBracket(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBracket(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				if ch != ']' {
					return 0, false
				}
				return i, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}
