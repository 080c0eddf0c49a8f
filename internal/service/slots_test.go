package service

import (
	"context"
	"reflect"
	"testing"

	"assistant/internal/model"
)

func newTestSlotManager() *SlotManager {
	return NewSlotManager(NewNumberExtractor(20), fixedExtractor(), nil)
}

func TestGetMissingSlotsPriorityOrder(t *testing.T) {
	m := newTestSlotManager()

	got := m.GetMissingSlots(model.IntentPricing)
	want := []string{SlotCottageNumber, SlotDates}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("missing for pricing = %v, want %v", got, want)
	}

	got = m.GetMissingSlots(model.IntentBooking)
	want = []string{SlotCottageNumber, SlotDates, SlotGuestCount}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("missing for booking = %v, want %v", got, want)
	}

	if missing := m.GetMissingSlots(model.IntentSafety); missing != nil {
		t.Errorf("missing for safety = %v, want none", missing)
	}
}

func TestExtractAndUpdateSlots(t *testing.T) {
	m := newTestSlotManager()
	ctx := context.Background()

	extracted := m.ExtractSlots(ctx, "price for cottage 9 from feb 3 to feb 5 for 4 people", model.IntentPricing)
	m.UpdateSlots(extracted)

	if got := m.Value(SlotCottageNumber); got != "9" {
		t.Errorf("cottage slot = %q, want 9", got)
	}
	if got := m.Value(SlotGuestCount); got != "4" {
		t.Errorf("guest slot = %q, want 4", got)
	}
	if got := m.Value(SlotDates); got != "2026-02-03..2026-02-05" {
		t.Errorf("date slot = %q, want 2026-02-03..2026-02-05", got)
	}
	if missing := m.GetMissingSlots(model.IntentPricing); missing != nil {
		t.Errorf("missing after extraction = %v, want none", missing)
	}

	view := m.View()
	if view.CottageNumber != 9 || view.Guests != 4 {
		t.Errorf("view = %+v, want cottage 9 guests 4", view)
	}
	if view.DateRange == nil || view.DateRange.Nights != 2 {
		t.Errorf("view date range = %+v, want 2 nights", view.DateRange)
	}
}

func TestUpdateSlotsRejectsInvalidValues(t *testing.T) {
	m := newTestSlotManager()

	m.UpdateSlots(map[string]string{
		SlotCottageNumber: "99",        // out of service range
		SlotGuestCount:    "abc",       // not a number
		SlotDates:         "not-a-date",
		SlotSeason:        "spring",    // not a known season
		"made_up_slot":    "x",
	})

	if got := m.Values(); len(got) != 0 {
		t.Errorf("stored values = %v, want none committed", got)
	}
}

func TestUpdateSlotsIsIdempotent(t *testing.T) {
	m := newTestSlotManager()
	update := map[string]string{SlotCottageNumber: "7", SlotGuestCount: "4"}

	m.UpdateSlots(update)
	first := m.Values()
	m.UpdateSlots(update)
	second := m.Values()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated update changed state: %v vs %v", first, second)
	}
}

// A cottage mentioned in passing must not leak into an unrelated
// informational question, but must still serve a later calculation.
func TestStickyCottageContaminationGuard(t *testing.T) {
	m := newTestSlotManager()
	ctx := context.Background()

	m.UpdateSlots(m.ExtractSlots(ctx, "tell me about cottage 9", model.IntentFAQQuestion))
	if got := m.CottageNumber(); got != 9 {
		t.Fatalf("cottage slot = %d, want 9", got)
	}

	// general info question: no cottage may be injected
	extracted := m.ExtractSlots(ctx, "is it safe for kids", model.IntentSafety)
	if _, ok := extracted[SlotCottageNumber]; ok {
		t.Errorf("safety question inherited cottage slot: %v", extracted)
	}

	// a later calculation still uses the sticky cottage
	extracted = m.ExtractSlots(ctx, "how much for 3 nights", model.IntentPricing)
	if got := extracted[SlotCottageNumber]; got != "9" {
		t.Errorf("pricing question cottage = %q, want 9", got)
	}
}

// A different cottage named without any calculation cue refreshes the
// hint but does not overwrite the committed slot.
func TestStickyCottageDoesNotSwitchOnCasualMention(t *testing.T) {
	m := newTestSlotManager()
	ctx := context.Background()

	m.UpdateSlots(m.ExtractSlots(ctx, "book cottage 9 please", model.IntentBooking))

	extracted := m.ExtractSlots(ctx, "cottage two looks nice", model.IntentFAQQuestion)
	if _, ok := extracted[SlotCottageNumber]; ok {
		t.Errorf("casual mention extracted cottage slot: %v", extracted)
	}
	if got := m.CottageNumber(); got != 9 {
		t.Errorf("stored cottage = %d, want 9", got)
	}
	if got := m.CurrentCottage(); got != 2 {
		t.Errorf("sticky hint = %d, want 2", got)
	}

	// an explicit calculation naming the new cottage does switch
	m.UpdateSlots(m.ExtractSlots(ctx, "how much is cottage 12 per night", model.IntentPricing))
	if got := m.CottageNumber(); got != 12 {
		t.Errorf("stored cottage after explicit calculation = %d, want 12", got)
	}
}

func TestMigrateLegacySlotKeys(t *testing.T) {
	got := MigrateLegacySlotKeys(map[string]string{"cottage_no": "7", SlotGuestCount: "4"})
	want := map[string]string{SlotCottageNumber: "7", SlotGuestCount: "4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("migrated = %v, want %v", got, want)
	}

	// the new key wins when both are present
	got = MigrateLegacySlotKeys(map[string]string{"cottage_no": "7", SlotCottageNumber: "9"})
	want = map[string]string{SlotCottageNumber: "9"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("migrated with conflict = %v, want %v", got, want)
	}

	if MigrateLegacySlotKeys(nil) != nil {
		t.Error("migrating nil map should return nil")
	}
}

func TestRestoreValidatesPersistedValues(t *testing.T) {
	m := newTestSlotManager()
	m.Restore(map[string]string{
		"cottage_no":   "7",
		SlotGuestCount: "99", // invalid, must be dropped
		SlotDates:      "2026-02-03..2026-02-05",
	})

	if got := m.CottageNumber(); got != 7 {
		t.Errorf("restored cottage = %d, want 7", got)
	}
	if got := m.Value(SlotGuestCount); got != "" {
		t.Errorf("restored guests = %q, want dropped", got)
	}
	if view := m.View(); view.DateRange == nil || view.DateRange.Nights != 2 {
		t.Errorf("restored date range = %+v, want 2 nights", m.View().DateRange)
	}
}

func TestClearResetsEverything(t *testing.T) {
	m := newTestSlotManager()
	m.UpdateSlots(map[string]string{SlotCottageNumber: "7", SlotDates: "2026-02-03..2026-02-05"})

	m.Clear()

	if len(m.Values()) != 0 || m.CurrentCottage() != 0 || m.View().DateRange != nil {
		t.Errorf("clear left state behind: values=%v hint=%d range=%+v", m.Values(), m.CurrentCottage(), m.View().DateRange)
	}
}
