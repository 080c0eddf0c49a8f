package service

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"assistant/internal/model"
)

var testRates = []model.CottageRate{
	{CottageNumber: 7, WeekdayRate: 4000, WeekendRate: 6000, Capacity: 8, Bedrooms: 3},
	{CottageNumber: 9, WeekdayRate: 5000, WeekendRate: 7500, Capacity: 12, Bedrooms: 4},
	{CottageNumber: 12, WeekdayRate: 3000, WeekendRate: 4500, Capacity: 4, Bedrooms: 2},
}

func newTestPricingHandler() *PricingQueryHandler {
	h := NewPricingQueryHandler(testRates, 6)
	// 2026-02-04 is a Wednesday
	h.now = func() time.Time {
		return time.Date(2026, time.February, 4, 12, 0, 0, 0, time.Local)
	}
	return h
}

func TestPricingMissingInfo(t *testing.T) {
	h := newTestPricingHandler()

	tests := []struct {
		name        string
		slots       SlotView
		wantMissing []string
	}{
		{"nothing known", SlotView{}, []string{SlotCottageNumber, SlotDates}},
		{"cottage only", SlotView{CottageNumber: 7}, []string{SlotDates}},
		{"dates only", SlotView{DateRange: mustRange(t, "2026-02-03", "2026-02-05")}, []string{SlotCottageNumber}},
		{"guests do not satisfy dates", SlotView{CottageNumber: 7, Guests: 4}, []string{SlotDates}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.ProcessPricingQuery("how much", tt.slots, nil)
			if result.HasAllInfo {
				t.Fatalf("HasAllInfo = true, want missing-info result")
			}
			if !reflect.DeepEqual(result.MissingSlots, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", result.MissingSlots, tt.wantMissing)
			}
			if result.TotalPrice != 0 {
				t.Errorf("total = %.0f, want no price without complete inputs", result.TotalPrice)
			}
			if !strings.Contains(result.Template, "Please ask the guest") {
				t.Errorf("template must instruct to ask, got %q", result.Template)
			}
		})
	}
}

func TestPricingWeekdayWeekendSplit(t *testing.T) {
	h := newTestPricingHandler()

	// Fri 6 Mar to Mon 9 Mar 2026: nights Fri, Sat, Sun
	slots := SlotView{
		CottageNumber: 7,
		DateRange:     mustRange(t, "2026-03-06", "2026-03-09"),
	}
	result := h.ProcessPricingQuery("price for that weekend", slots, nil)

	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	if result.WeekdayNights != 1 || result.WeekendNights != 2 {
		t.Errorf("split = %d weekday / %d weekend, want 1/2", result.WeekdayNights, result.WeekendNights)
	}
	want := 1*4000.0 + 2*6000.0
	if result.TotalPrice != want {
		t.Errorf("total = %.0f, want %.0f", result.TotalPrice, want)
	}
	if len(result.Breakdown) != 3 {
		t.Fatalf("breakdown length = %d, want 3", len(result.Breakdown))
	}
	if result.Breakdown[0].IsWeekend || !result.Breakdown[1].IsWeekend || !result.Breakdown[2].IsWeekend {
		t.Errorf("breakdown weekend flags wrong: %+v", result.Breakdown)
	}
}

// An explicit night count without dates synthesizes a range starting
// today; starting Wednesday, 3 nights are all weekdays except none.
func TestPricingNightsOnlySynthesis(t *testing.T) {
	h := newTestPricingHandler()

	slots := SlotView{CottageNumber: 7, Nights: 3}
	result := h.ProcessPricingQuery("cottage 7 for 3 nights", slots, nil)

	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	// Wed 4, Thu 5, Fri 6 Feb 2026: all weekday nights
	if result.WeekdayNights != 3 || result.WeekendNights != 0 {
		t.Errorf("split = %d/%d, want 3 weekday, 0 weekend", result.WeekdayNights, result.WeekendNights)
	}
	if want := 3 * 4000.0; result.TotalPrice != want {
		t.Errorf("total = %.0f, want %.0f", result.TotalPrice, want)
	}
}

func TestPricingNextWeekStartsMonday(t *testing.T) {
	h := newTestPricingHandler()

	slots := SlotView{CottageNumber: 7, Nights: 2}
	result := h.ProcessPricingQuery("cottage 7 next week for 2 nights", slots, nil)

	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	if len(result.Breakdown) != 2 {
		t.Fatalf("breakdown length = %d, want 2", len(result.Breakdown))
	}
	// next Monday from Wed 4 Feb 2026 is Mon 9 Feb
	if got := result.Breakdown[0].Date.Format("2006-01-02"); got != "2026-02-09" {
		t.Errorf("synthesized start = %s, want 2026-02-09", got)
	}
	if result.WeekdayNights != 2 || result.WeekendNights != 0 {
		t.Errorf("split = %d/%d, want 2/0", result.WeekdayNights, result.WeekendNights)
	}
}

// A weekdays-only quote must never bill weekend rates, even when the
// question arrives late in the week and "today" would spill into the
// weekend.
func TestPricingWeekdaysOnlyAvoidsWeekend(t *testing.T) {
	h := newTestPricingHandler()
	// 2026-02-06 is a Friday
	h.now = func() time.Time {
		return time.Date(2026, time.February, 6, 12, 0, 0, 0, time.Local)
	}

	slots := SlotView{CottageNumber: 7, Nights: 3}
	result := h.ProcessPricingQuery("cottage 7 for 3 nights, weekdays only", slots, nil)

	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	if result.WeekdayNights != 3 || result.WeekendNights != 0 {
		t.Errorf("split = %d/%d, want 3 weekday, 0 weekend", result.WeekdayNights, result.WeekendNights)
	}
	if want := 3 * 4000.0; result.TotalPrice != want {
		t.Errorf("total = %.0f, want %.0f", result.TotalPrice, want)
	}
	// anchored to the Monday after the Friday the question was asked
	if got := result.Breakdown[0].Date.Format("2006-01-02"); got != "2026-02-09" {
		t.Errorf("synthesized start = %s, want 2026-02-09", got)
	}
	for _, seg := range result.Breakdown {
		if seg.IsWeekend {
			t.Errorf("weekend night %s in a weekdays-only quote", seg.Date.Format("2006-01-02"))
		}
	}
}

// When the stay already fits before the weekend, a weekdays-only
// quote keeps today as the start instead of jumping a week out.
func TestPricingWeekdaysOnlyKeepsTodayWhenItFits(t *testing.T) {
	h := newTestPricingHandler() // pinned to Wed 4 Feb 2026

	slots := SlotView{CottageNumber: 7, Nights: 3}
	result := h.ProcessPricingQuery("cottage 7 for 3 nights on weekdays", slots, nil)

	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	if got := result.Breakdown[0].Date.Format("2006-01-02"); got != "2026-02-04" {
		t.Errorf("synthesized start = %s, want 2026-02-04", got)
	}
	if result.WeekdayNights != 3 || result.WeekendNights != 0 {
		t.Errorf("split = %d/%d, want 3/0", result.WeekdayNights, result.WeekendNights)
	}
}

func TestPricingUnknownCottage(t *testing.T) {
	h := newTestPricingHandler()

	slots := SlotView{CottageNumber: 15, Nights: 2}
	result := h.ProcessPricingQuery("cottage 15 for 2 nights", slots, nil)

	if result.HasAllInfo {
		t.Fatal("HasAllInfo = true for a cottage with no rate card")
	}
	if result.Error == "" {
		t.Error("want an error naming the missing rate card")
	}
}

func TestPricingLargeGroupNote(t *testing.T) {
	h := newTestPricingHandler()

	slots := SlotView{
		CottageNumber: 9,
		Guests:        10,
		DateRange:     mustRange(t, "2026-02-03", "2026-02-05"),
	}
	result := h.ProcessPricingQuery("price for 10 people", slots, nil)

	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	if result.Note == "" || !strings.Contains(result.Template, "Note:") {
		t.Errorf("large group must carry a confirmation note, got %+v", result)
	}

	// at or below base occupancy there is no note
	slots.Guests = 4
	if result := h.ProcessPricingQuery("price for 4 people", slots, nil); result.Note != "" {
		t.Errorf("unexpected note for small group: %q", result.Note)
	}
}

func TestPricingDefaultsToBaseOccupancy(t *testing.T) {
	h := newTestPricingHandler()

	slots := SlotView{CottageNumber: 7, DateRange: mustRange(t, "2026-02-03", "2026-02-05")}
	result := h.ProcessPricingQuery("price please", slots, nil)

	if result.Guests != 6 {
		t.Errorf("guests = %d, want base occupancy 6", result.Guests)
	}
}

func mustRange(t *testing.T, start, end string) *model.DateRange {
	t.Helper()
	s, err := time.ParseInLocation("2006-01-02", start, time.Local)
	if err != nil {
		t.Fatalf("bad start %q: %v", start, err)
	}
	e, err := time.ParseInLocation("2006-01-02", end, time.Local)
	if err != nil {
		t.Fatalf("bad end %q: %v", end, err)
	}
	return model.NewDateRange(s, e)
}
