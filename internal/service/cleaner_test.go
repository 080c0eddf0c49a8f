package service

import (
	"strings"
	"testing"
)

func TestCleanerRules(t *testing.T) {
	c := NewAnswerCleaner()

	tests := []struct {
		rule  string
		input string
		want  string
	}{
		{
			rule:  "strip_system_preamble",
			input: "You are a helpful booking assistant. Cottage 7 sleeps eight guests.",
			want:  "Cottage 7 sleeps eight guests.",
		},
		{
			rule:  "strip_role_labels",
			input: "Assistant: Cottage 7 sleeps eight guests.",
			want:  "Cottage 7 sleeps eight guests.",
		},
		{
			rule:  "strip_bracket_markers",
			input: "[ANSWER]Cottage 7 sleeps eight guests.[END]",
			want:  "Cottage 7 sleeps eight guests.",
		},
		{
			rule:  "strip_instruction_tail",
			input: "I still need the stay dates.\nPlease ask the guest for this instead of guessing.",
			want:  "I still need the stay dates.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			rule := c.RuleByName(tt.rule)
			if rule == nil {
				t.Fatalf("rule %q not found", tt.rule)
			}
			if got := rule.Apply(tt.input); got != tt.want {
				t.Errorf("rule %s = %q, want %q", tt.rule, got, tt.want)
			}
		})
	}
}

func TestCleanFullPipeline(t *testing.T) {
	c := NewAnswerCleaner()

	input := "You are a helpful assistant.\nAnswer: The property is gated with guards.\n\n\n\nPets are welcome."
	got := c.Clean(input)

	if strings.Contains(got, "You are") || strings.Contains(got, "Answer:") {
		t.Errorf("scaffolding survived cleaning: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank runs not collapsed: %q", got)
	}
	if !strings.Contains(got, "gated with guards") || !strings.Contains(got, "Pets are welcome") {
		t.Errorf("cleaning removed real content: %q", got)
	}
}

// Clean answers must pass through unchanged apart from trimming.
func TestCleanLeavesGoodAnswersAlone(t *testing.T) {
	c := NewAnswerCleaner()
	input := "Cottage 9 has four bedrooms and sleeps up to twelve guests."
	if got := c.Clean(input); got != input {
		t.Errorf("Clean(%q) = %q, want unchanged", input, got)
	}
}

func TestCleanEmptyAfterStripping(t *testing.T) {
	c := NewAnswerCleaner()
	if got := c.Clean("[ANSWER]"); got != "" {
		t.Errorf("Clean = %q, want empty string", got)
	}
}
