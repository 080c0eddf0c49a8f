package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"assistant/internal/model"
	"assistant/internal/utils"
)

// SlotType is the semantic type of a slot value
type SlotType int

const (
	SlotInt SlotType = iota
	SlotEnum
	SlotDateRange
)

// Slot names
const (
	SlotCottageNumber = "cottage_number"
	SlotGuestCount    = "guest_count"
	SlotDates         = "date_range"
	SlotNights        = "nights"
	SlotSeason        = "season"

	// legacy key rewritten at session load, never on the live path
	legacySlotCottageNo = "cottage_no"
)

// dateRangeValueLayout is the stored wire form of a date_range slot
const dateRangeValueLayout = "2006-01-02"

// Slot describes a named, typed piece of information extracted from
// conversation: which intents require it, in which order missing
// slots are asked for, and how candidate values are validated.
type Slot struct {
	Name        string
	Type        SlotType
	RequiredFor map[model.Intent]bool
	Priority    int // lower = asked first
	Validate    func(value string) bool
}

func slotDefinitions(maxCottage int) []Slot {
	intSlotValid := func(min, max int) func(string) bool {
		return func(v string) bool {
			n, err := strconv.Atoi(v)
			return err == nil && n >= min && n <= max
		}
	}
	return []Slot{
		{
			Name: SlotCottageNumber,
			Type: SlotEnum,
			RequiredFor: map[model.Intent]bool{
				model.IntentPricing: true,
				model.IntentBooking: true,
			},
			Priority: 1,
			Validate: intSlotValid(1, maxCottage),
		},
		{
			Name: SlotDates,
			Type: SlotDateRange,
			RequiredFor: map[model.Intent]bool{
				model.IntentPricing:      true,
				model.IntentBooking:      true,
				model.IntentAvailability: true,
			},
			Priority: 2,
			Validate: func(v string) bool {
				_, err := parseDateRangeValue(v)
				return err == nil
			},
		},
		{
			Name: SlotGuestCount,
			Type: SlotInt,
			RequiredFor: map[model.Intent]bool{
				model.IntentRooms:   true,
				model.IntentBooking: true,
			},
			Priority: 3,
			Validate: intSlotValid(1, 50),
		},
		{
			Name:        SlotNights,
			Type:        SlotInt,
			RequiredFor: map[model.Intent]bool{},
			Priority:    4,
			Validate:    intSlotValid(1, 30),
		},
		{
			Name:        SlotSeason,
			Type:        SlotEnum,
			RequiredFor: map[model.Intent]bool{},
			Priority:    5,
			Validate: func(v string) bool {
				switch v {
				case "summer", "winter", "monsoon":
					return true
				}
				return false
			},
		},
	}
}

// SlotView is the resolved, typed snapshot handed to the pricing and
// capacity handlers
type SlotView struct {
	CottageNumber int
	Guests        int
	Nights        int
	DateRange     *model.DateRange
	Season        string
}

// SlotManager owns per-session slot state: extraction, validation and
// persistence across turns, plus the sticky-cottage contamination
// guard. One instance per session; not safe for unsynchronized
// concurrent use (the session lock covers it).
type SlotManager struct {
	defs   []Slot
	byName map[string]*Slot
	values map[string]string

	dateRange *model.DateRange

	// weak "last mentioned cottage" pointer, a hint rather than a slot
	currentCottage int

	numbers   *NumberExtractor
	dates     *DateExtractor
	completer CompletionClient // may be nil
}

// NewSlotManager creates per-session slot state
func NewSlotManager(numbers *NumberExtractor, dates *DateExtractor, completer CompletionClient) *SlotManager {
	defs := slotDefinitions(numbers.maxCottage)
	byName := make(map[string]*Slot, len(defs))
	for i := range defs {
		byName[defs[i].Name] = &defs[i]
	}
	return &SlotManager{
		defs:      defs,
		byName:    byName,
		values:    make(map[string]string),
		numbers:   numbers,
		dates:     dates,
		completer: completer,
	}
}

// MigrateLegacySlotKeys rewrites deprecated slot names to their
// current form. Runs once when a session is restored, keeping the
// live read/write path free of legacy branching.
func MigrateLegacySlotKeys(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	if v, ok := values[legacySlotCottageNo]; ok {
		if _, exists := values[SlotCottageNumber]; !exists {
			values[SlotCottageNumber] = v
		}
		delete(values, legacySlotCottageNo)
	}
	return values
}

// Restore seeds the manager with persisted values, applying the
// one-time legacy key migration and validator checks
func (m *SlotManager) Restore(values map[string]string) {
	m.UpdateSlots(MigrateLegacySlotKeys(values))
}

// ExtractSlots pulls candidate slot values from the query. Extraction
// is additive: it never replaces an already-stored cottage with a
// different one unless the query is a specific calculation that
// explicitly names the new cottage.
func (m *SlotManager) ExtractSlots(ctx context.Context, query string, intent model.Intent) map[string]string {
	extracted := make(map[string]string)

	if n, ok := m.numbers.ExtractCottageNumber(query); ok {
		current := m.CottageNumber()
		if current == 0 || current == n || isSpecificCalculationQuery(query) {
			extracted[SlotCottageNumber] = strconv.Itoa(n)
		}
		// every explicit mention refreshes the sticky hint
		m.currentCottage = n
	} else if m.ShouldUseCurrentCottage(query, intent) && m.currentCottage > 0 {
		extracted[SlotCottageNumber] = strconv.Itoa(m.currentCottage)
	}

	if n, ok := m.numbers.ExtractGuestCount(query); ok {
		extracted[SlotGuestCount] = strconv.Itoa(n)
	}
	if n, ok := m.numbers.ExtractNights(query); ok {
		extracted[SlotNights] = strconv.Itoa(n)
	}
	if r := m.dates.ExtractDateRange(query); r != nil {
		if err := m.dates.ValidateDateRange(r); err == nil {
			extracted[SlotDates] = formatDateRangeValue(r)
		} else {
			log.Printf("Warning: discarding extracted date range: %v", err)
		}
	}
	if season := extractSeason(query); season != "" {
		extracted[SlotSeason] = season
	}

	// Completion fallback for complex phrasing, only when a specific
	// calculation still lacks required slots after pattern extraction
	if intent.IsSpecificCalculation() && m.completer != nil && m.completer.IsEnabled() {
		if missing := m.missingAfter(intent, extracted); len(missing) > 0 {
			m.extractWithCompletion(ctx, query, missing, extracted)
		}
	}

	return extracted
}

// UpdateSlots validates each candidate against its slot's validator
// before committing. Invalid values are logged and discarded; the
// turn continues.
func (m *SlotManager) UpdateSlots(extracted map[string]string) {
	for name, value := range extracted {
		def, ok := m.byName[name]
		if !ok {
			log.Printf("Warning: unknown slot %q discarded", name)
			continue
		}
		if !def.Validate(value) {
			log.Printf("Warning: invalid value %q for slot %q discarded", value, name)
			continue
		}
		m.values[name] = value

		switch name {
		case SlotCottageNumber:
			if n, err := strconv.Atoi(value); err == nil {
				m.currentCottage = n
			}
		case SlotDates:
			if r, err := parseDateRangeValue(value); err == nil {
				m.dateRange = r
			}
		}
	}
}

// GetMissingSlots returns the slots required for the intent that have
// no stored value yet, sorted by ask priority
func (m *SlotManager) GetMissingSlots(intent model.Intent) []string {
	var missing []string
	// defs are already in priority order
	for _, def := range m.defs {
		if def.RequiredFor[intent] && m.values[def.Name] == "" {
			missing = append(missing, def.Name)
		}
	}
	return missing
}

// missingAfter is GetMissingSlots with this turn's extraction overlaid
func (m *SlotManager) missingAfter(intent model.Intent, extracted map[string]string) []string {
	var missing []string
	for _, def := range m.defs {
		if !def.RequiredFor[intent] {
			continue
		}
		if m.values[def.Name] == "" && extracted[def.Name] == "" {
			missing = append(missing, def.Name)
		}
	}
	return missing
}

// ShouldUseCurrentCottage decides whether the sticky cottage hint may
// populate the cottage slot for this query. Only specific
// calculations referencing "this/that" cottage qualify; general
// informational questions never inherit it, so a cottage mentioned
// three turns ago cannot leak into an unrelated safety or facilities
// question.
func (m *SlotManager) ShouldUseCurrentCottage(query string, intent model.Intent) bool {
	if _, ok := m.numbers.ExtractCottageNumber(query); ok {
		return true
	}
	def, ok := m.byName[SlotCottageNumber]
	if !ok || !def.RequiredFor[intent] {
		return false
	}
	if !isSpecificCalculationQuery(query) {
		return false
	}
	if isGeneralInfoQuery(query) {
		return false
	}
	return true
}

var generalInfoStarts = []string{
	"what is", "what are", "tell me about", "is there", "are there",
	"do you have", "does it have", "where is", "where are",
}

func isGeneralInfoQuery(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	for _, p := range generalInfoStarts {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// isSpecificCalculationQuery detects booking/pricing/date/guest-count
// cues that mark the query as a concrete computation
func isSpecificCalculationQuery(query string) bool {
	lower := strings.ToLower(query)
	if utils.HasTopic(lower, "pricing") || utils.HasTopic(lower, "booking") {
		return true
	}
	if strings.ContainsAny(lower, "0123456789") {
		return true
	}
	for _, cue := range []string{"this cottage", "that cottage", "per night", "nights", "guests", "people"} {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

func extractSeason(query string) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "summer"):
		return "summer"
	case strings.Contains(lower, "winter"):
		return "winter"
	case strings.Contains(lower, "monsoon") || strings.Contains(lower, "rainy season"):
		return "monsoon"
	}
	return ""
}

// Value returns the stored value for a slot ("" when unset)
func (m *SlotManager) Value(name string) string {
	return m.values[name]
}

// Values returns a copy of all stored slot values
func (m *SlotManager) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// CottageNumber returns the stored cottage slot (0 when unset)
func (m *SlotManager) CottageNumber() int {
	n, _ := strconv.Atoi(m.values[SlotCottageNumber])
	return n
}

// CurrentCottage returns the sticky last-mentioned cottage hint
func (m *SlotManager) CurrentCottage() int {
	return m.currentCottage
}

// View returns the typed snapshot used by the calculators
func (m *SlotManager) View() SlotView {
	guests, _ := strconv.Atoi(m.values[SlotGuestCount])
	nights, _ := strconv.Atoi(m.values[SlotNights])
	return SlotView{
		CottageNumber: m.CottageNumber(),
		Guests:        guests,
		Nights:        nights,
		DateRange:     m.dateRange,
		Season:        m.values[SlotSeason],
	}
}

// Clear resets all slot state including the sticky cottage hint
func (m *SlotManager) Clear() {
	m.values = make(map[string]string)
	m.dateRange = nil
	m.currentCottage = 0
}

func formatDateRangeValue(r *model.DateRange) string {
	return r.Start.Format(dateRangeValueLayout) + ".." + r.End.Format(dateRangeValueLayout)
}

func parseDateRangeValue(v string) (*model.DateRange, error) {
	parts := strings.SplitN(v, "..", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed date range value %q", v)
	}
	start, err := time.ParseInLocation(dateRangeValueLayout, parts[0], time.Local)
	if err != nil {
		return nil, fmt.Errorf("bad start date: %w", err)
	}
	end, err := time.ParseInLocation(dateRangeValueLayout, parts[1], time.Local)
	if err != nil {
		return nil, fmt.Errorf("bad end date: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end %s not after start %s", parts[1], parts[0])
	}
	return model.NewDateRange(start, end), nil
}

const slotExtractionPrompt = `Extract booking details from this cottage rental chat message.
Respond ONLY with a JSON object. Omit fields that are not explicitly mentioned.

Fields:
- cottage_number: integer, the cottage the guest refers to
- guest_count: integer, how many people are staying
- nights: integer, explicit number of nights
- date_start: "YYYY-MM-DD"
- date_end: "YYYY-MM-DD"
- season: one of "summer", "winter", "monsoon"

Message: %q
JSON:`

// aiSlotGuess is the coarse structured guess returned by the
// completion service. It is re-validated and re-parsed, never trusted
// verbatim.
type aiSlotGuess struct {
	CottageNumber *int    `json:"cottage_number,omitempty"`
	GuestCount    *int    `json:"guest_count,omitempty"`
	Nights        *int    `json:"nights,omitempty"`
	DateStart     *string `json:"date_start,omitempty"`
	DateEnd       *string `json:"date_end,omitempty"`
	Season        *string `json:"season,omitempty"`
}

// extractWithCompletion asks the completion service for the slots the
// patterns could not resolve, re-validating everything it returns
// through the deterministic extractors
func (m *SlotManager) extractWithCompletion(ctx context.Context, query string, missing []string, extracted map[string]string) {
	out, err := m.completer.Generate(ctx, fmt.Sprintf(slotExtractionPrompt, query), 128)
	if err != nil {
		log.Printf("Warning: completion slot extraction failed: %v, keeping pattern-only slots", err)
		return
	}

	var guess aiSlotGuess
	if err := utils.ParseAIJSON(out, &guess); err != nil {
		log.Printf("Warning: unparseable slot extraction output: %v", err)
		return
	}

	wanted := make(map[string]bool, len(missing))
	for _, name := range missing {
		wanted[name] = true
	}

	if wanted[SlotCottageNumber] && guess.CottageNumber != nil {
		// re-check through the same bounds as the pattern extractor
		if m.numbers.validCottage(*guess.CottageNumber) {
			extracted[SlotCottageNumber] = strconv.Itoa(*guess.CottageNumber)
		}
	}
	if wanted[SlotGuestCount] && guess.GuestCount != nil && m.numbers.validGuests(*guess.GuestCount) {
		extracted[SlotGuestCount] = strconv.Itoa(*guess.GuestCount)
	}
	if guess.Nights != nil && *guess.Nights >= 1 && *guess.Nights <= 30 && extracted[SlotNights] == "" {
		extracted[SlotNights] = strconv.Itoa(*guess.Nights)
	}
	if wanted[SlotDates] && guess.DateStart != nil && guess.DateEnd != nil {
		start, errS := time.ParseInLocation(dateRangeValueLayout, *guess.DateStart, time.Local)
		end, errE := time.ParseInLocation(dateRangeValueLayout, *guess.DateEnd, time.Local)
		if errS == nil && errE == nil {
			r := model.NewDateRange(start, end)
			if err := m.dates.ValidateDateRange(r); err == nil {
				extracted[SlotDates] = formatDateRangeValue(r)
			} else {
				log.Printf("Warning: discarding AI date range: %v", err)
			}
		}
	}
	if guess.Season != nil && extracted[SlotSeason] == "" {
		if s := extractSeason(*guess.Season); s != "" {
			extracted[SlotSeason] = s
		}
	}
}
