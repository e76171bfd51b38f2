package normalize

import (
	"errors"
	"testing"
)

func TestExtractCandidate(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          string
		wantTruncated bool
		wantErr       bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "object in prose",
			input: `Sure! Here is the plan you asked for: {"a": 1} — hope it helps.`,
			want:  `{"a": 1}`,
		},
		{
			name:  "object in markdown fence",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "longest of multiple spans wins",
			input: `{"a": 1} and then {"b": {"c": 2}}`,
			want:  `{"b": {"c": 2}}`,
		},
		{
			name:  "braces inside string literals are ignored",
			input: `{"text": "use {curly} freely", "n": 1}`,
			want:  `{"text": "use {curly} freely", "n": 1}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"text": "she said \"hi {there}\"", "n": 1}`,
			want:  `{"text": "she said \"hi {there}\"", "n": 1}`,
		},
		{
			name:          "unterminated span is a truncation candidate",
			input:         `prefix {"a": [1, 2`,
			want:          `{"a": [1, 2`,
			wantTruncated: true,
		},
		{
			name:  "complete span preferred over later truncated one",
			input: `{"a": 1} trailing {"b": [`,
			want:  `{"a": 1}`,
		},
		{
			name:  "unmatched closer in prose is skipped",
			input: `weird } prose {"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:    "no braces at all",
			input:   "there is no JSON here, sorry",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated, err := extractCandidate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractCandidate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrExtractionFailed) {
					t.Errorf("error does not wrap ErrExtractionFailed: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("extractCandidate() = %q, want %q", got, tt.want)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.wantTruncated)
			}
		})
	}
}
