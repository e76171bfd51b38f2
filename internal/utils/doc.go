// Package utils holds small helpers shared across the module: safe JSON
// stringification for logs and prompts, bounded string truncation for error
// excerpts, and a generic pointer constructor.
package utils
