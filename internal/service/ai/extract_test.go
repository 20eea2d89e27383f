package ai

import (
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "bare object",
			input:  `{"a": 1}`,
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "leading and trailing prose",
			input:  "Here is your plan:\n{\"a\": {\"b\": 2}}\nEnjoy! {not json}",
			want:   `{"a": {"b": 2}}`,
			wantOK: true,
		},
		{
			name:   "code fence",
			input:  "```json\n{\"workoutDays\": []}\n```",
			want:   `{"workoutDays": []}`,
			wantOK: true,
		},
		{
			name:   "braces inside strings",
			input:  `{"note": "use } and { freely", "q": "say \"}\""}`,
			want:   `{"note": "use } and { freely", "q": "say \"}\""}`,
			wantOK: true,
		},
		{
			name:   "unclosed stray brace before object",
			input:  `Format: { name ... then {"a": 1}`,
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "no object",
			input:  "Sorry, I cannot help with that.",
			wantOK: false,
		},
		{
			name:   "truncated object",
			input:  `{"a": {"b": 1}`,
			want:   `{"b": 1}`,
			wantOK: true,
		},
		{
			name:   "only unterminated",
			input:  `{"a": "b`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObjectGivesUpOnManyUnclosedBraces(t *testing.T) {
	input := strings.Repeat("{ ", 10000) + `{"a": 1}`

	if got, ok := ExtractJSONObject(input); ok {
		t.Fatalf("expected no object after exhausting retries, got %q", got)
	}

	within := strings.Repeat("{ ", maxExtractStarts-1) + `{"a": 1}`
	if got, ok := ExtractJSONObject(within); !ok || got != `{"a": 1}` {
		t.Fatalf("expected object within retry budget, got %q %v", got, ok)
	}
}
