package service

import (
	"regexp"
	"strconv"
	"strings"

	"assistant/internal/utils"
)

// NumberExtractor pulls group size and cottage identifier out of raw
// text. The two extractions are independent: a bare number counts as
// a group size only when adjacent to a guest word, and as a cottage
// identifier only when the word "cottage" appears in a small token
// window before it. Neither extractor may borrow the other's number.
type NumberExtractor struct {
	maxGuests  int
	maxCottage int
}

// NewNumberExtractor creates a number extractor with sanity bounds
func NewNumberExtractor(maxCottage int) *NumberExtractor {
	if maxCottage <= 0 {
		maxCottage = 20
	}
	return &NumberExtractor{
		maxGuests:  50,
		maxCottage: maxCottage,
	}
}

var (
	// "4 people", "6 guests", "2 members", "3 persons", "5 pax"
	reGuestAfter = regexp.MustCompile(`\b(\d{1,2})\s*(?:people|persons?|guests?|members?|pax|adults?|ppl)\b`)
	// "group of 4", "we are 6", "party of 8"
	reGuestBefore = regexp.MustCompile(`\b(?:group of|party of|we are|we're|there are|family of)\s+(\d{1,2})\b`)
	reDigits      = regexp.MustCompile(`^\d{1,2}$`)
)

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "fifteen": 15, "twenty": 20,
}

var guestWords = map[string]bool{
	"people": true, "person": true, "persons": true,
	"guest": true, "guests": true,
	"member": true, "members": true,
	"pax": true, "adults": true, "adult": true, "ppl": true,
}

// ExtractGuestCount returns the group size mentioned in the text.
// The boolean reports whether one was found.
func (e *NumberExtractor) ExtractGuestCount(text string) (int, bool) {
	lower := strings.ToLower(text)

	if m := reGuestAfter.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && e.validGuests(n) {
			return n, true
		}
	}
	if m := reGuestBefore.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && e.validGuests(n) {
			return n, true
		}
	}

	// "four people" style: a word number directly before a guest word
	tokens := utils.Tokenize(lower)
	for i, tok := range tokens {
		if n, ok := wordNumbers[tok]; ok && i+1 < len(tokens) && guestWords[tokens[i+1]] {
			if e.validGuests(n) {
				return n, true
			}
		}
	}

	return 0, false
}

// ExtractCottageNumber returns the cottage identifier mentioned in
// the text. A number qualifies only when "cottage" appears within two
// tokens before it, so "cottage 9 for 4 people" resolves to 9 and the
// 4 stays with the guest extractor.
func (e *NumberExtractor) ExtractCottageNumber(text string) (int, bool) {
	lower := strings.ToLower(text)
	tokens := utils.Tokenize(lower)

	for i, tok := range tokens {
		if tok != "cottage" && tok != "cottages" && tok != "villa" {
			continue
		}
		// look at the next two tokens, skipping filler like "no"/"number"
		for j := i + 1; j < len(tokens) && j <= i+2; j++ {
			next := tokens[j]
			if next == "no" || next == "number" {
				continue
			}
			if reDigits.MatchString(next) {
				n, _ := strconv.Atoi(next)
				if e.validCottage(n) {
					return n, true
				}
			}
			if n, ok := wordNumbers[next]; ok && e.validCottage(n) {
				return n, true
			}
			break
		}
	}

	return 0, false
}

func (e *NumberExtractor) validGuests(n int) bool {
	return n >= 1 && n <= e.maxGuests
}

func (e *NumberExtractor) validCottage(n int) bool {
	return n >= 1 && n <= e.maxCottage
}

// ExtractNights returns an explicit night count ("for 3 nights")
func (e *NumberExtractor) ExtractNights(text string) (int, bool) {
	lower := strings.ToLower(text)
	m := reNights.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 30 {
		return 0, false
	}
	return n, true
}

var reNights = regexp.MustCompile(`\b(\d{1,2})\s*(?:nights?|days?)\b`)
