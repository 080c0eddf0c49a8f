package service

import (
	"sort"

	"assistant/internal/model"
	"assistant/internal/utils"
)

// Suggestion tiers: informational, exploratory, transactional
const (
	TierInformational = 1
	TierExploratory   = 2
	TierTransactional = 3
)

// suggestion pairs a follow-up prompt with the topic it covers, so
// suggestions already discussed can be suppressed
type suggestion struct {
	Text  string
	Topic string
	Tier  int
}

var suggestionCatalog = []suggestion{
	// Tier 1: informational
	{Text: "What attractions are nearby?", Topic: "attraction", Tier: TierInformational},
	{Text: "Is the property safe for families?", Topic: "safety", Tier: TierInformational},
	{Text: "What facilities do the cottages have?", Topic: "facilities", Tier: TierInformational},
	{Text: "How do I reach the property?", Topic: "location", Tier: TierInformational},
	// Tier 2: exploratory
	{Text: "Can I see photos of the cottages?", Topic: "photos", Tier: TierExploratory},
	{Text: "Which cottage fits my group size?", Topic: "rooms", Tier: TierExploratory},
	{Text: "What makes each cottage different?", Topic: "cottages", Tier: TierExploratory},
	// Tier 3: transactional
	{Text: "What are the nightly rates?", Topic: "pricing", Tier: TierTransactional},
	{Text: "How do I book a cottage?", Topic: "booking", Tier: TierTransactional},
	{Text: "Is my preferred date available?", Topic: "booking", Tier: TierTransactional},
}

// tierPriority orders tiers per conversation state: early browsers
// get informational nudges first, guests ready to book get
// transactional ones
var tierPriority = map[ConversationState][]int{
	StateBrowsing:    {TierInformational, TierExploratory, TierTransactional},
	StateComparing:   {TierExploratory, TierInformational, TierTransactional},
	StateInquiring:   {TierExploratory, TierTransactional, TierInformational},
	StateReadyToBook: {TierTransactional, TierExploratory, TierInformational},
}

// RecommendationEngine generates tiered follow-up suggestions driven
// by the tracker's state and the topics already covered in history
type RecommendationEngine struct {
	maxSuggestions int
}

// NewRecommendationEngine creates an engine capped at maxSuggestions
func NewRecommendationEngine(maxSuggestions int) *RecommendationEngine {
	if maxSuggestions <= 0 {
		maxSuggestions = 5
	}
	return &RecommendationEngine{maxSuggestions: maxSuggestions}
}

// GenerateContextualSuggestions returns follow-up prompts ordered by
// the state's tier priority. Suggestions whose topic already appears
// in recent history are suppressed to avoid repetition.
func (e *RecommendationEngine) GenerateContextualSuggestions(state ConversationState, history []model.ChatMessage) []string {
	priority, ok := tierPriority[state]
	if !ok {
		priority = tierPriority[StateBrowsing]
	}
	rank := make(map[int]int, len(priority))
	for i, tier := range priority {
		rank[tier] = i
	}

	covered := coveredTopics(history)

	candidates := make([]suggestion, 0, len(suggestionCatalog))
	for _, s := range suggestionCatalog {
		if covered[s.Topic] {
			continue
		}
		candidates = append(candidates, s)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rank[candidates[i].Tier] < rank[candidates[j].Tier]
	})

	out := make([]string, 0, e.maxSuggestions)
	for _, s := range candidates {
		if len(out) >= e.maxSuggestions {
			break
		}
		out = append(out, s.Text)
	}
	return out
}

// coveredTopics collects topics already touched in the recent chat,
// matched by topic keyword vocabularies
func coveredTopics(history []model.ChatMessage) map[string]bool {
	covered := make(map[string]bool)
	for _, msg := range history {
		for _, topic := range []string{"pricing", "booking", "safety", "facilities", "location", "rooms", "attraction"} {
			if utils.HasTopic(msg.Content, topic) {
				covered[topic] = true
			}
		}
	}
	return covered
}
