// Package jsonschema generates JSON Schema documents from Go types via
// reflection. The schemas are embedded in generation prompts so the upstream
// text model knows the exact shape of the scene plan it must emit; they are
// not used for validation, which the normalize package performs on typed
// values instead.
package jsonschema
