package normalize

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// repairStep is one rung of the tolerant-parse ladder: a named, pure
// transformation of the candidate text. apply returns the transformed text
// and whether anything changed; an unchanged result skips the reparse.
type repairStep struct {
	name  string
	apply func(string) (string, bool)
}

// repairLadder is the fixed attempt sequence. Every step is idempotent and
// operates on the original candidate, not on a previous step's output; the
// jsonrepair library at the bottom is the catch-all for compound damage.
var repairLadder = []repairStep{
	{name: "strict", apply: func(s string) (string, bool) { return s, true }},
	{name: "strip-trailing-commas", apply: stripTrailingCommas},
	{name: "normalize-quotes", apply: normalizeQuotes},
	{name: "close-truncated", apply: closeTruncated},
	{name: "jsonrepair", apply: func(s string) (string, bool) {
		repaired, err := jsonrepair.JSONRepair(s)
		if err != nil {
			return s, false
		}
		return repaired, true
	}},
}

// parseTolerant runs the repair ladder over candidate, stopping at the first
// attempt that yields valid JSON. On exhaustion it returns a parse failure
// naming every attempted repair.
func parseTolerant(candidate string) (any, error) {
	attempts := make([]string, 0, len(repairLadder))
	for _, step := range repairLadder {
		attempts = append(attempts, step.name)
		repaired, changed := step.apply(candidate)
		if !changed && step.name != "strict" {
			continue
		}
		var tree any
		if err := json.Unmarshal([]byte(repaired), &tree); err == nil {
			return tree, nil
		}
	}
	return nil, &Error{
		Kind:     KindParseFailed,
		Detail:   excerpt(candidate),
		Attempts: attempts,
	}
}

// stripTrailingCommas removes commas that directly precede a closing brace or
// bracket, outside string literals. Handles nested occurrences in one pass by
// looking ahead over whitespace.
func stripTrailingCommas(s string) (string, bool) {
	var (
		b        strings.Builder
		inString bool
		escaped  bool
		changed  bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
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
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isJSONSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				changed = true
				continue // drop the comma, keep whitespace and closer
			}
		}
		b.WriteByte(c)
	}
	return b.String(), changed
}

// normalizeQuotes rewrites single-quoted string literals into double-quoted
// ones, leaving existing double-quoted spans untouched. Inside a rewritten
// literal, escaped single quotes become plain and bare double quotes gain an
// escape.
func normalizeQuotes(s string) (string, bool) {
	var (
		b        strings.Builder
		inDouble bool
		inSingle bool
		escaped  bool
		changed  bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inDouble:
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inDouble = false
			}
		case inSingle:
			switch {
			case escaped:
				if c == '\'' {
					b.WriteByte('\'')
				} else {
					b.WriteByte('\\')
					b.WriteByte(c)
				}
				escaped = false
			case c == '\\':
				escaped = true
			case c == '\'':
				b.WriteByte('"')
				inSingle = false
			case c == '"':
				b.WriteString(`\"`)
			default:
				b.WriteByte(c)
			}
		case c == '"':
			inDouble = true
			b.WriteByte(c)
		case c == '\'':
			inSingle = true
			changed = true
			b.WriteByte('"')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), changed
}

// closeTruncated appends the minimal closer sequence inferred from the open
// nesting at the point of truncation: an unterminated string literal gets its
// quote, then every open brace and bracket is closed in reverse order. A
// dangling comma or key separator before the closers is dropped so the result
// has a chance of parsing strictly.
func closeTruncated(s string) (string, bool) {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
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
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !inString && len(stack) == 0 {
		return s, false
	}

	var b strings.Builder
	b.Grow(len(s) + len(stack) + 1)
	if inString {
		b.WriteString(s)
		b.WriteByte('"')
	} else {
		// Trim a trailing comma or colon left by the truncation.
		trimmed := strings.TrimRight(s, " \t\r\n")
		trimmed = strings.TrimRight(trimmed, ",:")
		b.WriteString(trimmed)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String(), true
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
