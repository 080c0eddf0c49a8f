package utils

import (
	"testing"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"cottage_number": 9, "guest_count": 4}`,
			want: map[string]interface{}{
				"cottage_number": float64(9),
				"guest_count":    float64(4),
			},
			wantErr: false,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"cottage_number": 7, "nights": 3}` + "\n```",
			want: map[string]interface{}{
				"cottage_number": float64(7),
				"nights":         float64(3),
			},
			wantErr: false,
		},
		{
			name:  "JSON with surrounding text",
			input: `Here is the extraction: {"season": "winter", "nights": 2} hope that helps.`,
			want: map[string]interface{}{
				"season": "winter",
				"nights": float64(2),
			},
			wantErr: false,
		},
		{
			name:  "JSON with trailing comma",
			input: `{"guest_count": 6,}`,
			want: map[string]interface{}{
				"guest_count": float64(6),
			},
			wantErr: false,
		},
		{
			name:  "JSON with unquoted keys",
			input: `{guest_count: 6, nights: 2}`,
			want: map[string]interface{}{
				"guest_count": float64(6),
				"nights":      float64(2),
			},
			wantErr: false,
		},
		{
			name:    "Empty string",
			input:   "",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "sorry, I cannot extract anything here",
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseAIJSON() got = %v, want %v", got, tt.want)
				}
				for k, v := range tt.want {
					if got[k] != v {
						t.Errorf("ParseAIJSON() key %q = %v, want %v", k, got[k], v)
					}
				}
			}
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		open   rune
		closer rune
		want   string
	}{
		{
			name:   "Simple object",
			input:  `{"a": 1}`,
			open:   '{',
			closer: '}',
			want:   `{"a": 1}`,
		},
		{
			name:   "Nested objects",
			input:  `{"a": {"b": 2}}`,
			open:   '{',
			closer: '}',
			want:   `{"a": {"b": 2}}`,
		},
		{
			name:   "Object with string containing braces",
			input:  `{"text": "Hello {world}"}`,
			open:   '{',
			closer: '}',
			want:   `{"text": "Hello {world}"}`,
		},
		{
			name:   "Array",
			input:  `[1, 2, 3]`,
			open:   '[',
			closer: ']',
			want:   `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalanced(tt.input, tt.open, tt.closer)
			if got != tt.want {
				t.Errorf("extractBalanced() = %v, want %v", got, tt.want)
			}
		})
	}
}
