package utils

import "strings"

// Topic vocabularies used by the intent router, the relevance filter
// and the recommendation engine. Aliases cover the colloquial forms
// seen in guest questions.
var topicAliases = map[string][]string{
	"pricing":    {"price", "prices", "pricing", "cost", "costs", "rate", "rates", "tariff", "charge", "charges", "fee", "fees", "expensive", "cheap", "budget", "per night", "how much"},
	"booking":    {"book", "booking", "reserve", "reservation", "availability", "available", "check in", "check-in", "checkin", "check out", "check-out", "checkout", "stay", "night", "nights"},
	"safety":     {"safe", "safety", "secure", "security", "guard", "guards", "guarded", "gated", "cctv", "emergency", "first aid", "theft"},
	"facilities": {"facility", "facilities", "amenity", "amenities", "pool", "swimming", "kitchen", "wifi", "wi-fi", "parking", "bonfire", "barbecue", "bbq", "ac", "air conditioning", "geyser", "heater"},
	"location":   {"location", "located", "where", "address", "directions", "distance", "reach", "route", "map", "nearby", "how far"},
	"rooms":      {"room", "rooms", "bedroom", "bedrooms", "bed", "beds", "capacity", "accommodate", "fit", "sleep", "occupancy", "people", "guests", "group"},
	"attraction": {"attraction", "attractions", "visit", "sightseeing", "trek", "trekking", "waterfall", "lake", "activities", "things to do"},
}

// TopicFor returns the first topic whose vocabulary appears in the
// text, or "" when none matches. Safety outranks booking so "is it
// safe at night" is not pulled in by the "night" alias.
func TopicFor(text string) string {
	lower := strings.ToLower(text)
	for _, topic := range []string{"pricing", "safety", "booking", "facilities", "location", "rooms", "attraction"} {
		if containsAny(lower, topicAliases[topic]) {
			return topic
		}
	}
	return ""
}

// HasTopic reports whether the text mentions the given topic
func HasTopic(text, topic string) bool {
	aliases, ok := topicAliases[topic]
	if !ok {
		return false
	}
	return containsAny(strings.ToLower(text), aliases)
}

// HasAnyTopic reports whether any known topic vocabulary appears
func HasAnyTopic(text string) bool {
	return TopicFor(text) != ""
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if containsWord(lower, term) {
			return true
		}
	}
	return false
}

// containsWord matches a term on word boundaries so "rate" does not
// match "separate" and "ac" does not match "beach"
func containsWord(lower, term string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isWordChar(lower[start-1])
		afterOK := end == len(lower) || !isWordChar(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(lower) {
			return false
		}
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Tokenize splits text into lowercase word tokens
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}
