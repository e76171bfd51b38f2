package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/sceneplan/internal/utils"
)

// Kind identifies the pipeline stage that rejected the input.
type Kind string

const (
	KindExtractionFailed        Kind = "extraction_failed"
	KindParseFailed             Kind = "parse_failed"
	KindCoercionFailed          Kind = "coercion_failed"
	KindValidationFailed        Kind = "validation_failed"
	KindConstraintUnsatisfiable Kind = "constraint_unsatisfiable"
)

// Stage sentinels. Every failure returned by [Normalize] wraps exactly one of
// these, so callers can branch with [errors.Is] without inspecting details:
//
//	if errors.Is(err, normalize.ErrParseFailed) {
//	    // all repair attempts were exhausted
//	}
var (
	ErrExtractionFailed        = errors.New("sceneplan: no JSON-like span found in raw text")
	ErrParseFailed             = errors.New("sceneplan: all JSON repair attempts exhausted")
	ErrCoercionFailed          = errors.New("sceneplan: required field missing or unconvertible")
	ErrValidationFailed        = errors.New("sceneplan: scene plan failed validation")
	ErrConstraintUnsatisfiable = errors.New("sceneplan: generation constraints cannot be satisfied")
)

// sentinelFor maps a kind to its package sentinel.
func sentinelFor(kind Kind) error {
	switch kind {
	case KindExtractionFailed:
		return ErrExtractionFailed
	case KindParseFailed:
		return ErrParseFailed
	case KindCoercionFailed:
		return ErrCoercionFailed
	case KindValidationFailed:
		return ErrValidationFailed
	case KindConstraintUnsatisfiable:
		return ErrConstraintUnsatisfiable
	}
	return errors.New("sceneplan: unknown failure")
}

// Violation is a single validation defect: where it was found, which rule was
// broken, and the offending value.
type Violation struct {
	Path  string `json:"path"`
	Rule  string `json:"rule"`
	Value any    `json:"value,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (value: %v)", v.Path, v.Rule, v.Value)
}

// Error is the failure type returned by every pipeline stage. It wraps the
// stage sentinel, so both [errors.Is] against a sentinel and [errors.As]
// against *Error work on the same value.
type Error struct {
	Kind Kind `json:"kind"`

	// Path locates the offending field for coercion failures,
	// e.g. "scenes[2].durationSec".
	Path string `json:"path,omitempty"`

	// Detail is a human-readable explanation. Long excerpts of the raw
	// input are truncated before being stored here.
	Detail string `json:"detail,omitempty"`

	// Violations holds the accumulated defect list for validation
	// failures; empty for other kinds.
	Violations []Violation `json:"violations,omitempty"`

	// Attempts names the syntactic repairs tried before a parse failure,
	// in order. Diagnostics only.
	Attempts []string `json:"attempts,omitempty"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(sentinelFor(e.Kind).Error())
	if e.Path != "" {
		b.WriteString(": " + e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if len(e.Violations) > 0 {
		parts := make([]string, len(e.Violations))
		for i, v := range e.Violations {
			parts[i] = v.String()
		}
		b.WriteString(": [" + strings.Join(parts, "; ") + "]")
	}
	if len(e.Attempts) > 0 {
		b.WriteString(" (attempted repairs: " + strings.Join(e.Attempts, ", ") + ")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return sentinelFor(e.Kind)
}

// AsError unwraps err into a *Error, returning nil when err does not carry
// one. Convenience wrapper around [errors.As].
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// errorf builds a *Error with a formatted detail message.
func errorf(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// excerpt bounds a raw-input excerpt before it is embedded in an error.
func excerpt(s string) string {
	return utils.TruncateString(s, 200)
}
