package services

import "strings"

// FindObjectSpan returns the first balanced {...} span in free-form model
// text. Surrounding prose and code fences are ignored.
func FindObjectSpan(text string) (string, bool) {
	return findBalancedSpan(text, '{', '}')
}

// FindArraySpan returns the first balanced [...] span in free-form model
// text.
func FindArraySpan(text string) (string, bool) {
	return findBalancedSpan(text, '[', ']')
}

// findBalancedSpan tries each opener in order and returns the first one that
// closes. Openers that never close (stray prose) are skipped.
func findBalancedSpan(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	for start >= 0 {
		if end, ok := matchClose(text, start, open, close); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchClose scans from text[start] (an opener) to its matching closer.
// Delimiters inside JSON strings do not count. Scanning bytes is safe for
// UTF-8 input since all delimiters are ASCII.
func matchClose(text string, start int, open, close byte) (int, bool) {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
