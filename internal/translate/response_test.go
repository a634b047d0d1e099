package translate

import (
	"testing"
)

func TestExtractTranslationResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"index": 0, "text": "こんにちは"},
				{"index": 1, "text": "さようなら"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here is the translation:
			[
				{"index": 0, "text": "Bonjour"},
				{"index": 1, "text": "Au revoir"}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"index": 0, "text": "Hola"}
			]
			I hope this helps!`,
			wantCount: 1,
		},
		{
			name:      "wrapper object with results key",
			input:     `{"results": [{"index": 0, "text": "Translated"}]}`,
			wantCount: 1,
		},
		{
			name:      "wrapper object with translations key",
			input:     `{"translations": [{"index": 0, "text": "Übersetzt"}]}`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"index": 0, "text": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with empty text",
			input:   `[{"index": 0, "text": ""}]`,
			wantErr: true,
		},
		{
			name:      "invalid escape in text",
			input:     `[{"index": 0, "text": "first\Nsecond"}]`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractTranslationResults(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, `plain`},
		{`a\nb`, `a\nb`},
		{`a\Nb`, `a\\Nb`},
		{`quote \" ok`, `quote \" ok`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := fixInvalidEscapes(tt.in); got != tt.want {
			t.Errorf("fixInvalidEscapes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain JSON", `[{"index": 0, "text": "hello"}]`, `[{"index": 0, "text": "hello"}]`},
		{"json code fence", "```json\n[{\"index\": 0, \"text\": \"hello\"}]\n```", `[{"index": 0, "text": "hello"}]`},
		{"plain code fence", "```\n[{\"index\": 0}]\n```", `[{"index": 0}]`},
		{"surrounding whitespace", "  \n\n```json\n[{\"index\": 0}]\n```\n\n  ", `[{"index": 0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name    string
		results []TranslationResult
		want    bool
	}{
		{"nil slice", nil, false},
		{"result with text", []TranslationResult{{Index: 0, Text: "hello"}}, true},
		{"result with empty text", []TranslationResult{{Index: 0, Text: ""}}, false},
		{"one valid", []TranslationResult{{Index: 0}, {Index: 1, Text: "valid"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateResults(tt.results); got != tt.want {
				t.Errorf("validateResults() = %v, want %v", got, tt.want)
			}
		})
	}
}
