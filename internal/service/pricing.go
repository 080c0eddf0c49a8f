package service

import (
	"fmt"
	"strings"
	"time"

	"assistant/internal/model"
)

// PricingQueryHandler computes deterministic price answers from a
// cottage and a stay window. It has two terminal outcomes: a
// missing-information result naming the unresolved slots, or a fully
// computed breakdown. It never fabricates a date range the user did
// not supply; the only permitted synthesis is a working range for an
// explicit night count.
type PricingQueryHandler struct {
	rates         map[int]model.CottageRate
	baseOccupancy int
	now           func() time.Time
}

// NewPricingQueryHandler creates a pricing handler over a rate table
func NewPricingQueryHandler(rates []model.CottageRate, baseOccupancy int) *PricingQueryHandler {
	if baseOccupancy <= 0 {
		baseOccupancy = 6
	}
	table := make(map[int]model.CottageRate, len(rates))
	for _, r := range rates {
		table[r.CottageNumber] = r
	}
	return &PricingQueryHandler{
		rates:         table,
		baseOccupancy: baseOccupancy,
		now:           time.Now,
	}
}

// ProcessPricingQuery resolves a pricing question against the current
// slots. documents are passed through untouched; the caller prepends
// the rendered template as a synthetic document when computation
// succeeds.
func (h *PricingQueryHandler) ProcessPricingQuery(question string, slots SlotView, documents []model.RetrievedDocument) *model.PricingResult {
	missing := h.missingSlots(slots)
	if len(missing) > 0 {
		return &model.PricingResult{
			HasAllInfo:   false,
			MissingSlots: missing,
			Template:     missingInfoTemplate(missing),
		}
	}

	rate, ok := h.rates[slots.CottageNumber]
	if !ok {
		return &model.PricingResult{
			HasAllInfo:   false,
			MissingSlots: []string{SlotCottageNumber},
			Error:        fmt.Sprintf("no rate card for cottage %d", slots.CottageNumber),
			Template:     missingInfoTemplate([]string{SlotCottageNumber}),
		}
	}

	stay := slots.DateRange
	if stay == nil {
		// Nights supplied without dates: the one case where a working
		// range may be synthesized, because the user gave the duration
		start := h.synthesisStart(question, slots.Nights)
		stay = model.NewDateRange(start, start.AddDate(0, 0, slots.Nights))
	}

	guests := slots.Guests
	if guests == 0 {
		guests = h.baseOccupancy
	}

	result := &model.PricingResult{
		HasAllInfo:    true,
		CottageNumber: slots.CottageNumber,
		Guests:        guests,
		WeekdayNights: stay.WeekdayNights,
		WeekendNights: stay.WeekendNights,
		WeekdayRate:   rate.WeekdayRate,
		WeekendRate:   rate.WeekendRate,
		TotalPrice: float64(stay.WeekdayNights)*rate.WeekdayRate +
			float64(stay.WeekendNights)*rate.WeekendRate,
	}

	result.Breakdown = make([]model.PriceSegment, 0, len(stay.Days))
	for _, day := range stay.Days {
		nightly := rate.WeekdayRate
		if day.IsWeekend {
			nightly = rate.WeekendRate
		}
		result.Breakdown = append(result.Breakdown, model.PriceSegment{
			Date:      day.Date,
			IsWeekend: day.IsWeekend,
			Rate:      nightly,
		})
	}

	if guests > h.baseOccupancy {
		result.Note = fmt.Sprintf(
			"Groups larger than %d guests need confirmation with the property; pricing above base occupancy may be adjusted.",
			h.baseOccupancy)
	}

	result.Template = renderPricingTemplate(result, stay)
	return result
}

// missingSlots gathers every unresolved input so the caller can ask
// for all of them at once
func (h *PricingQueryHandler) missingSlots(slots SlotView) []string {
	var missing []string
	if slots.CottageNumber == 0 {
		missing = append(missing, SlotCottageNumber)
	}
	if slots.DateRange == nil && slots.Nights == 0 {
		missing = append(missing, SlotDates)
	}
	return missing
}

// synthesisStart picks the working start date for a nights-only
// query: today, next Monday when the user says "next week", or the
// nearest start that keeps every night on Mon-Fri when the user asks
// for weekdays only
func (h *PricingQueryHandler) synthesisStart(question string, nights int) time.Time {
	now := h.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	q := strings.ToLower(question)
	if strings.Contains(q, "weekday") {
		if fitsWeekdays(start, nights) {
			return start
		}
		return nextMonday(start)
	}
	if strings.Contains(q, "next week") {
		return nextMonday(start)
	}
	return start
}

// fitsWeekdays reports whether nights consecutive nights starting at
// start all fall on Mon-Fri. More than five nights never fit.
func fitsWeekdays(start time.Time, nights int) bool {
	w := int(start.Weekday())
	return w >= int(time.Monday) && w <= int(time.Friday) &&
		w+nights-1 <= int(time.Friday)
}

func nextMonday(from time.Time) time.Time {
	days := (int(time.Monday) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

// missingInfoTemplate renders the ask-the-user instruction. The
// answer step must request these fields, not invent them.
func missingInfoTemplate(missing []string) string {
	labels := make([]string, 0, len(missing))
	for _, name := range missing {
		labels = append(labels, slotQuestionLabel(name))
	}
	return "To quote an exact price I still need: " + strings.Join(labels, ", ") +
		". Please ask the guest for this instead of guessing."
}

func slotQuestionLabel(name string) string {
	switch name {
	case SlotCottageNumber:
		return "which cottage"
	case SlotDates:
		return "the stay dates (or number of nights)"
	case SlotGuestCount:
		return "how many guests"
	}
	return name
}

// renderPricingTemplate produces the structured template surfaced as
// a synthetic document: the answer step presents it, never recomputes
func renderPricingTemplate(r *model.PricingResult, stay *model.DateRange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Price for cottage %d, %s to %s (%d nights, %d guests):\n",
		r.CottageNumber,
		stay.Start.Format("Mon 2 Jan 2006"),
		stay.End.Format("Mon 2 Jan 2006"),
		stay.Nights,
		r.Guests)
	for _, seg := range r.Breakdown {
		kind := "weekday"
		if seg.IsWeekend {
			kind = "weekend"
		}
		fmt.Fprintf(&b, "  %s (%s): %.0f\n", seg.Date.Format("Mon 2 Jan"), kind, seg.Rate)
	}
	fmt.Fprintf(&b, "Total: %.0f (%d weekday nights x %.0f + %d weekend nights x %.0f)",
		r.TotalPrice, r.WeekdayNights, r.WeekdayRate, r.WeekendNights, r.WeekendRate)
	if r.Note != "" {
		b.WriteString("\nNote: " + r.Note)
	}
	return b.String()
}
