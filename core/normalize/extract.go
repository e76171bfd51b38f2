package normalize

// extractCandidate isolates the JSON span in text most likely to be the
// intended payload. It scans for balanced-brace spans, honoring double-quoted
// string literals and backslash escapes, and does not assume well-formed
// JSON — it only finds boundaries.
//
// When several complete top-level spans exist the longest wins, ties broken
// by earliest start. When no span closes before the text ends, the trailing
// unterminated span is returned with truncated=true so the parser can apply
// its close-repair. When no opening brace exists at all, the extraction
// sentinel is returned.
func extractCandidate(text string) (candidate string, truncated bool, err error) {
	var (
		best      string
		openStart = -1
		depth     = 0
		inString  = false
		escaped   = false
	)

	for i := 0; i < len(text); i++ {
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
			// Quotes only count inside a span; a stray quote in
			// surrounding prose must not derail brace tracking.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				openStart = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // unmatched closer in prose
			}
			depth--
			if depth == 0 {
				span := text[openStart : i+1]
				if len(span) > len(best) {
					best = span
				}
				openStart = -1
			}
		}
	}

	if best != "" {
		return best, false, nil
	}
	if openStart >= 0 {
		// The text ends inside an open structure: hand the remainder to
		// the parser, which knows how to close truncated JSON.
		return text[openStart:], true, nil
	}
	return "", false, &Error{Kind: KindExtractionFailed, Detail: "no balanced or open brace span in input: " + excerpt(text)}
}
