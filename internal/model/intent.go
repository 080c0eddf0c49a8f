package model

// Intent is the classified purpose of a single user utterance
type Intent string

const (
	IntentGreeting           Intent = "greeting"
	IntentHelp               Intent = "help"
	IntentFAQQuestion        Intent = "faq_question"
	IntentStatement          Intent = "statement"
	IntentAffirmative        Intent = "affirmative"
	IntentNegative           Intent = "negative"
	IntentClarificationNeeded Intent = "clarification_needed"
	IntentPricing            Intent = "pricing"
	IntentAvailability       Intent = "availability"
	IntentBooking            Intent = "booking"
	IntentRooms              Intent = "rooms"
	IntentSafety             Intent = "safety"
	IntentFacilities         Intent = "facilities"
	IntentLocation           Intent = "location"
	IntentUnknown            Intent = "unknown"
)

// ParseIntent maps a string to a known intent, defaulting to unknown
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentGreeting, IntentHelp, IntentFAQQuestion, IntentStatement,
		IntentAffirmative, IntentNegative, IntentClarificationNeeded,
		IntentPricing, IntentAvailability, IntentBooking, IntentRooms,
		IntentSafety, IntentFacilities, IntentLocation:
		return Intent(s)
	}
	return IntentUnknown
}

// IsSpecificCalculation reports whether the intent resolves to a
// deterministic computation (pricing/capacity) rather than retrieval
func (i Intent) IsSpecificCalculation() bool {
	switch i {
	case IntentPricing, IntentBooking, IntentAvailability, IntentRooms:
		return true
	}
	return false
}

// IsGeneralInfo reports whether the intent is a general information
// question that must not inherit sticky cottage context
func (i Intent) IsGeneralInfo() bool {
	switch i {
	case IntentSafety, IntentFacilities, IntentLocation, IntentFAQQuestion:
		return true
	}
	return false
}
