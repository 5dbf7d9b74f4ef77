package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleFloat(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  float64
	}{
		{
			name:  "number value",
			input: json.RawMessage(`3.8`),
			want:  3.8,
		},
		{
			name:  "quoted number",
			input: json.RawMessage(`"3.25"`),
			want:  3.25,
		},
		{
			name:  "quoted number with whitespace",
			input: json.RawMessage(`" 72.5 "`),
			want:  72.5,
		},
		{
			name:  "integer value",
			input: json.RawMessage(`85`),
			want:  85,
		},
		{
			name:  "non-numeric string coerces to zero",
			input: json.RawMessage(`"four point oh"`),
			want:  0,
		},
		{
			name:  "null value",
			input: json.RawMessage(`null`),
			want:  0,
		},
		{
			name:  "empty raw message",
			input: json.RawMessage{},
			want:  0,
		},
		{
			name:  "object coerces to zero",
			input: json.RawMessage(`{"value": 3}`),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleFloat(tt.input)
			if got != tt.want {
				t.Errorf("FlexibleFloat(%s) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleString(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{
			name:  "string value",
			input: json.RawMessage(`"Merit Award"`),
			want:  "Merit Award",
		},
		{
			name:  "integer value",
			input: json.RawMessage(`2026`),
			want:  "2026",
		},
		{
			name:  "float value",
			input: json.RawMessage(`3.75`),
			want:  "3.75",
		},
		{
			name:  "boolean value",
			input: json.RawMessage(`true`),
			want:  "true",
		},
		{
			name:  "null value",
			input: json.RawMessage(`null`),
			want:  "",
		},
		{
			name:  "empty raw message",
			input: nil,
			want:  "",
		},
		{
			name:  "array falls back to raw text",
			input: json.RawMessage(`[1,2]`),
			want:  `[1,2]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleString(tt.input)
			if got != tt.want {
				t.Errorf("FlexibleString(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
