package service

import (
	"fmt"
	"sort"
	"strings"

	"assistant/internal/model"
)

// CapacityHandler answers suitability-by-group-size queries. It
// shares the missing-slot/compute contract with the pricing handler:
// either a needs-info result naming the unresolved slots, or a
// computed answer, never a guess.
type CapacityHandler struct {
	rates         map[int]model.CottageRate
	baseOccupancy int
}

// NewCapacityHandler creates a capacity handler over the rate table
// (capacity per cottage rides on the same rows as the rates)
func NewCapacityHandler(rates []model.CottageRate, baseOccupancy int) *CapacityHandler {
	if baseOccupancy <= 0 {
		baseOccupancy = 6
	}
	table := make(map[int]model.CottageRate, len(rates))
	for _, r := range rates {
		table[r.CottageNumber] = r
	}
	return &CapacityHandler{
		rates:         table,
		baseOccupancy: baseOccupancy,
	}
}

// ProcessCapacityQuery resolves whether the group fits a cottage, or
// which cottages fit the group when none is named
func (h *CapacityHandler) ProcessCapacityQuery(question string, slots SlotView) *model.CapacityResult {
	if slots.Guests == 0 {
		return &model.CapacityResult{
			HasAllInfo:   false,
			MissingSlots: []string{SlotGuestCount},
			Template: "To check capacity I still need: how many guests. " +
				"Please ask the guest for this instead of guessing.",
		}
	}

	if slots.CottageNumber > 0 {
		rate, ok := h.rates[slots.CottageNumber]
		if !ok {
			return &model.CapacityResult{
				HasAllInfo: false,
				Guests:     slots.Guests,
				Error:      fmt.Sprintf("no capacity data for cottage %d", slots.CottageNumber),
			}
		}
		result := &model.CapacityResult{
			HasAllInfo:    true,
			Guests:        slots.Guests,
			CottageNumber: slots.CottageNumber,
			Suitable:      slots.Guests <= rate.Capacity,
		}
		if result.Suitable {
			result.Template = fmt.Sprintf(
				"Cottage %d (%d bedrooms) sleeps up to %d guests, so a group of %d fits.",
				rate.CottageNumber, rate.Bedrooms, rate.Capacity, slots.Guests)
		} else {
			result.Template = fmt.Sprintf(
				"Cottage %d sleeps up to %d guests; a group of %d will not fit there.",
				rate.CottageNumber, rate.Capacity, slots.Guests)
		}
		if slots.Guests > h.baseOccupancy {
			result.Note = fmt.Sprintf(
				"Groups larger than %d guests need confirmation with the property.",
				h.baseOccupancy)
			result.Template += "\nNote: " + result.Note
		}
		return result
	}

	// No cottage named: list everything the group fits into
	var fits []int
	for num, rate := range h.rates {
		if slots.Guests <= rate.Capacity {
			fits = append(fits, num)
		}
	}
	sort.Ints(fits)

	result := &model.CapacityResult{
		HasAllInfo:   true,
		Guests:       slots.Guests,
		Suitable:     len(fits) > 0,
		SuitableList: fits,
	}
	if len(fits) == 0 {
		result.Template = fmt.Sprintf(
			"No single cottage sleeps %d guests; the group would need to split across cottages.",
			slots.Guests)
	} else {
		parts := make([]string, len(fits))
		for i, n := range fits {
			parts[i] = fmt.Sprintf("%d", n)
		}
		result.Template = fmt.Sprintf(
			"For %d guests, cottages %s are suitable.",
			slots.Guests, strings.Join(parts, ", "))
	}
	return result
}
