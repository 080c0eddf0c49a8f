package service

import "assistant/internal/model"

// ConversationState is the coarse stage of the conversation, used to
// prioritize recommendations
type ConversationState string

const (
	StateBrowsing    ConversationState = "browsing"
	StateComparing   ConversationState = "comparing"
	StateInquiring   ConversationState = "inquiring"
	StateReadyToBook ConversationState = "ready_to_book"
)

const trackerWindowSize = 8

// ContextTracker follows an ordered window of recent intents and the
// cottages mentioned along the way, and derives the conversation
// state from them. One instance per session, guarded by the session
// lock.
type ContextTracker struct {
	recentIntents  []model.Intent
	cottagesSeen   map[int]bool
	questionsAsked int
}

// NewContextTracker creates an empty tracker
func NewContextTracker() *ContextTracker {
	return &ContextTracker{
		cottagesSeen: make(map[int]bool),
	}
}

// Record appends this turn's intent to the window
func (t *ContextTracker) Record(intent model.Intent) {
	t.recentIntents = append(t.recentIntents, intent)
	if len(t.recentIntents) > trackerWindowSize {
		t.recentIntents = t.recentIntents[len(t.recentIntents)-trackerWindowSize:]
	}
	switch intent {
	case model.IntentFAQQuestion, model.IntentPricing, model.IntentRooms,
		model.IntentSafety, model.IntentFacilities, model.IntentLocation,
		model.IntentAvailability:
		t.questionsAsked++
	}
}

// RecordCottage notes an explicitly mentioned cottage
func (t *ContextTracker) RecordCottage(number int) {
	if number > 0 {
		t.cottagesSeen[number] = true
	}
}

// RecentIntents returns the ordered window of recent intents
func (t *ContextTracker) RecentIntents() []model.Intent {
	out := make([]model.Intent, len(t.recentIntents))
	copy(out, t.recentIntents)
	return out
}

// State derives the coarse conversation stage. Booking signals win
// over comparison, comparison over inquiry, inquiry over browsing.
func (t *ContextTracker) State() ConversationState {
	for _, intent := range t.recentIntents {
		if intent == model.IntentBooking || intent == model.IntentAvailability {
			return StateReadyToBook
		}
	}
	if len(t.cottagesSeen) >= 2 {
		return StateComparing
	}
	if t.questionsAsked >= 2 {
		return StateInquiring
	}
	return StateBrowsing
}

// Reset clears the tracker
func (t *ContextTracker) Reset() {
	t.recentIntents = nil
	t.cottagesSeen = make(map[int]bool)
	t.questionsAsked = 0
}
