package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"assistant/internal/model"
	"assistant/internal/utils"
)

// IntentRouter classifies an utterance into one of a closed set of
// intents. Fast pattern rules run first; short ambiguous inputs fall
// back to a constrained completion-service call. The guiding rule
// throughout: an ambiguous utterance is treated as an information
// request, never silently dropped.
type IntentRouter struct {
	completer CompletionClient // may be nil
	fallback  model.Intent
}

// NewIntentRouter creates an intent router. completer may be nil, in
// which case the rule pipeline is the whole classifier.
func NewIntentRouter(completer CompletionClient, fallbackIntent string) *IntentRouter {
	fallback := model.ParseIntent(fallbackIntent)
	if fallback == model.IntentUnknown {
		fallback = model.IntentFAQQuestion
	}
	return &IntentRouter{
		completer: completer,
		fallback:  fallback,
	}
}

var greetingWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "hiya": true, "yo": true,
	"namaste": true, "greetings": true, "howdy": true,
}

var greetingPhrases = []string{
	"good morning", "good afternoon", "good evening",
}

var questionWords = map[string]bool{
	"what": true, "where": true, "when": true, "how": true, "why": true,
	"who": true, "which": true, "can": true, "could": true, "do": true,
	"does": true, "is": true, "are": true, "will": true, "would": true,
	"should": true, "tell": true, "show": true, "any": true,
}

var continuationWords = map[string]bool{
	"and": true, "but": true, "if": true, "also": true, "or": true,
}

var negativeExact = map[string]bool{
	"no": true, "nope": true, "nah": true, "no thanks": true,
	"not really": true, "no thank you": true,
}

var affirmativeExact = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true,
	"okay": true, "fine": true, "yes please": true,
}

var acknowledgments = map[string]bool{
	"thanks": true, "thank you": true, "thx": true, "ty": true,
	"great": true, "cool": true, "awesome": true, "perfect": true,
	"nice": true, "got it": true,
}

var helpPatterns = []string{
	"help", "what can you do", "how can you help", "what do you know",
	"what can you tell me", "what are you",
}

var confirmationStarts = []string{
	"so it", "so the", "so there", "i see", "i understand", "oh ok", "oh okay",
	"that makes sense", "understood",
}

var statementStarts = []string{
	"i think", "i guess", "i was", "we were", "just saying", "never mind",
}

var actionVerbs = map[string]bool{
	"book": true, "reserve": true, "check": true, "find": true,
	"need": true, "want": true, "looking": true, "plan": true,
	"visit": true, "stay": true, "come": true, "bring": true,
}

// Classify runs the rule pipeline and, when nothing decisive matches
// a short utterance, a constrained completion fallback.
func (r *IntentRouter) Classify(ctx context.Context, query string, history []model.ChatMessage) model.Intent {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return model.IntentClarificationNeeded
	}
	lower := strings.ToLower(trimmed)
	lower = strings.TrimRight(lower, "?!. ")
	tokens := utils.Tokenize(lower)

	// 1. Greeting, unless a question rides along with it
	if rest, ok := stripGreeting(lower, tokens); ok {
		if rest == "" || !looksLikeQuestion(rest) {
			return model.IntentGreeting
		}
		// greeting-plus-question falls through as a real question
	}

	// 2. Conjunction-led continuations are questions, not acknowledgments
	if len(tokens) >= 3 && continuationWords[tokens[0]] {
		return r.topicOrFAQ(lower)
	}

	// 3. "how to X" is an information request, never a help request
	if strings.HasPrefix(lower, "how to ") || strings.HasPrefix(lower, "how do i ") {
		return r.topicOrFAQ(lower)
	}

	// 4. Help, but only when nothing follows that the user is asking *for*
	if matchesHelp(lower) && !utils.HasAnyTopic(lower) && !hasForAboutPhrase(lower) {
		return model.IntentHelp
	}

	// 5. Very short exact yes/no
	if len(tokens) <= 3 && negativeExact[lower] {
		return model.IntentNegative
	}
	if len(tokens) <= 2 && affirmativeExact[lower] {
		return model.IntentAffirmative
	}

	// 6. Confirmation phrases with no question word are statements
	if startsWithAny(lower, confirmationStarts) && !containsQuestionWord(tokens) {
		return model.IntentStatement
	}

	// 7. Topic keywords force an information intent, unless the
	// utterance is a bare acknowledgment
	if acknowledgments[lower] {
		return model.IntentStatement
	}
	if topic := utils.TopicFor(lower); topic != "" {
		return intentForTopic(topic)
	}

	// 8. Residual statement matching, intentionally conservative:
	// ambiguous short matches default to a question
	if startsWithAny(lower, statementStarts) && !containsQuestionWord(tokens) && len(tokens) <= 6 {
		return model.IntentStatement
	}

	// 9. Generic "is this asking for information" heuristic
	if r.looksLikeInformationRequest(lower, tokens) {
		return model.IntentFAQQuestion
	}

	// 10. Completion fallback for short ambiguous inputs
	if len(tokens) <= 8 && r.completer != nil && r.completer.IsEnabled() {
		if intent, err := r.classifyWithCompletion(ctx, trimmed); err == nil {
			return intent
		} else {
			log.Printf("Warning: completion classification failed: %v, using fallback intent", err)
		}
	}

	return r.fallback
}

// stripGreeting reports whether the utterance opens with a greeting
// and returns the remainder after it
func stripGreeting(lower string, tokens []string) (string, bool) {
	for _, phrase := range greetingPhrases {
		if strings.HasPrefix(lower, phrase) {
			return strings.TrimSpace(strings.TrimPrefix(lower, phrase)), true
		}
	}
	if len(tokens) > 0 && greetingWords[tokens[0]] {
		idx := strings.Index(lower, tokens[0])
		return strings.TrimSpace(lower[idx+len(tokens[0]):]), true
	}
	return "", false
}

func looksLikeQuestion(text string) bool {
	toks := utils.Tokenize(text)
	return containsQuestionWord(toks) || utils.HasAnyTopic(text)
}

func containsQuestionWord(tokens []string) bool {
	for _, tok := range tokens {
		if questionWords[tok] {
			return true
		}
	}
	return false
}

func matchesHelp(lower string) bool {
	for _, p := range helpPatterns {
		if lower == p || strings.HasPrefix(lower, p+" ") {
			return true
		}
	}
	return false
}

// hasForAboutPhrase detects "for X" / "about X" with real content
// after the preposition, which means the user is asking for
// something, not asking what the bot can do
func hasForAboutPhrase(lower string) bool {
	for _, prep := range []string{" for ", " about "} {
		if idx := strings.Index(lower, prep); idx >= 0 {
			rest := utils.Tokenize(lower[idx+len(prep):])
			if len(rest) >= 1 {
				return true
			}
		}
	}
	return false
}

func startsWithAny(lower string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// looksLikeInformationRequest is the broad step-9 heuristic: question
// words, action verbs, for/about phrases, digits, or simply enough
// words that silence would be worse than answering
func (r *IntentRouter) looksLikeInformationRequest(lower string, tokens []string) bool {
	if containsQuestionWord(tokens) {
		return true
	}
	for _, tok := range tokens {
		if actionVerbs[tok] {
			return true
		}
	}
	if hasForAboutPhrase(lower) {
		return true
	}
	if strings.ContainsAny(lower, "0123456789") {
		return true
	}
	if len(tokens) > 2 && !matchesHelp(lower) {
		return true
	}
	return false
}

// topicOrFAQ maps the utterance's topic to its intent, defaulting to
// a generic FAQ question
func (r *IntentRouter) topicOrFAQ(lower string) model.Intent {
	if topic := utils.TopicFor(lower); topic != "" {
		return intentForTopic(topic)
	}
	return model.IntentFAQQuestion
}

func intentForTopic(topic string) model.Intent {
	switch topic {
	case "pricing":
		return model.IntentPricing
	case "booking":
		return model.IntentBooking
	case "safety":
		return model.IntentSafety
	case "facilities":
		return model.IntentFacilities
	case "location":
		return model.IntentLocation
	case "rooms":
		return model.IntentRooms
	}
	return model.IntentFAQQuestion
}

const classifyPromptTemplate = `You classify a single chat message from a guest talking to a cottage rental assistant.
Respond with exactly one word from this list and nothing else: greeting, help, question, statement.

Message: %q
Classification:`

// classifyWithCompletion issues a constrained classification prompt.
// Anything unexpected in the output degrades to the safe fallback.
func (r *IntentRouter) classifyWithCompletion(ctx context.Context, query string) (model.Intent, error) {
	out, err := r.completer.Generate(ctx, fmt.Sprintf(classifyPromptTemplate, query), 8)
	if err != nil {
		return r.fallback, err
	}
	switch strings.ToLower(strings.TrimSpace(out)) {
	case "greeting":
		return model.IntentGreeting, nil
	case "help":
		return model.IntentHelp, nil
	case "statement":
		return model.IntentStatement, nil
	case "question":
		return model.IntentFAQQuestion, nil
	}
	return r.fallback, nil
}
