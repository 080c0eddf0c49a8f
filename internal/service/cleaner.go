package service

import (
	"regexp"
	"strings"
)

// CleaningRule is one named, independently testable step of the
// answer-cleaning pipeline: a matcher plus a remover
type CleaningRule struct {
	Name  string
	Apply func(string) string
}

// AnswerCleaner strips leaked instruction templates and prompt
// scaffolding from generated answers. Rules run in a fixed order.
type AnswerCleaner struct {
	rules []CleaningRule
}

var (
	reSystemPreamble  = regexp.MustCompile(`(?is)^(?:you are|as an? (?:ai|assistant)|i am an? (?:ai|assistant))[^.\n]*[.\n]\s*`)
	reContextBlock    = regexp.MustCompile(`(?is)(?:context|retrieved documents?|knowledge base)\s*:\s*(?:.*?)(?:\n\s*\n|answer\s*:|$)`)
	reRoleLabel       = regexp.MustCompile(`(?im)^\s*(?:assistant|ai|bot|answer)\s*:\s*`)
	reBracketMarker   = regexp.MustCompile(`\[(?:ANSWER|RESPONSE|TEMPLATE|CONTEXT|END)\]`)
	reInstructionTail = regexp.MustCompile(`(?is)\n\s*(?:please ask the guest for this instead of guessing\.?|do not (?:invent|fabricate)[^\n]*)\s*$`)
	reBlankRuns       = regexp.MustCompile(`\n{3,}`)
)

// NewAnswerCleaner builds the fixed rule pipeline
func NewAnswerCleaner() *AnswerCleaner {
	return &AnswerCleaner{
		rules: []CleaningRule{
			{
				Name: "strip_system_preamble",
				Apply: func(s string) string {
					return reSystemPreamble.ReplaceAllString(s, "")
				},
			},
			{
				Name: "strip_context_block",
				Apply: func(s string) string {
					// only strip when a context block leaked verbatim
					if !strings.Contains(strings.ToLower(s), "context:") {
						return s
					}
					return reContextBlock.ReplaceAllString(s, "")
				},
			},
			{
				Name: "strip_role_labels",
				Apply: func(s string) string {
					return reRoleLabel.ReplaceAllString(s, "")
				},
			},
			{
				Name: "strip_bracket_markers",
				Apply: func(s string) string {
					return reBracketMarker.ReplaceAllString(s, "")
				},
			},
			{
				Name: "strip_instruction_tail",
				Apply: func(s string) string {
					return reInstructionTail.ReplaceAllString(s, "")
				},
			},
			{
				Name: "collapse_whitespace",
				Apply: func(s string) string {
					s = reBlankRuns.ReplaceAllString(s, "\n\n")
					return strings.TrimSpace(s)
				},
			},
		},
	}
}

// Clean applies every rule in order
func (c *AnswerCleaner) Clean(answer string) string {
	for _, rule := range c.rules {
		answer = rule.Apply(answer)
	}
	return answer
}

// Rules exposes the pipeline for per-rule tests
func (c *AnswerCleaner) Rules() []CleaningRule {
	return c.rules
}

// RuleByName returns a single rule, or nil when absent
func (c *AnswerCleaner) RuleByName(name string) *CleaningRule {
	for i := range c.rules {
		if c.rules[i].Name == name {
			return &c.rules[i]
		}
	}
	return nil
}
