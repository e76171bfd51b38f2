package utils

import (
	"strings"
	"testing"
)

func TestJSONToString(t *testing.T) {
	tests := []struct {
		name   string
		object interface{}
		indent bool
		want   string
	}{
		{
			name:   "compact map",
			object: map[string]int{"a": 1},
			want:   `{"a":1}`,
		},
		{
			name:   "indented map",
			object: map[string]int{"a": 1},
			indent: true,
			want:   "{\n  \"a\": 1\n}",
		},
		{
			name:   "number",
			object: 12.5,
			want:   "12.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JSONToString(tt.object, tt.indent)
			if got != tt.want {
				t.Errorf("JSONToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONToStringUnmarshalable(t *testing.T) {
	got := JSONToString(make(chan int))
	if !strings.Contains(got, "error") {
		t.Errorf("JSONToString() on unmarshalable value = %q, want an error payload", got)
	}
}

func TestTruncateString(t *testing.T) {
	long := strings.Repeat("x", 600)

	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString() = %q, want unchanged", got)
	}
	got := TruncateString(long, 100)
	if len(got) >= len(long) {
		t.Errorf("TruncateString() did not shorten the input")
	}
	if !strings.Contains(got, "total: 600 chars") {
		t.Errorf("TruncateString() = %q, want the original length recorded", got)
	}

	// Non-positive maxLen falls back to the default.
	if got := TruncateString(long, 0); !strings.HasPrefix(got, strings.Repeat("x", DefaultMaxStringLength)) {
		t.Errorf("TruncateString() with zero maxLen did not use the default")
	}
}

func TestPtr(t *testing.T) {
	v := Ptr(42)
	if v == nil || *v != 42 {
		t.Errorf("Ptr(42) = %v", v)
	}
}
