package service

import (
	"reflect"
	"testing"
)

func TestCapacityMissingGuests(t *testing.T) {
	h := NewCapacityHandler(testRates, 6)

	result := h.ProcessCapacityQuery("will we fit?", SlotView{})
	if result.HasAllInfo {
		t.Fatal("HasAllInfo = true without a guest count")
	}
	if !reflect.DeepEqual(result.MissingSlots, []string{SlotGuestCount}) {
		t.Errorf("missing = %v, want [%s]", result.MissingSlots, SlotGuestCount)
	}
}

func TestCapacityNamedCottage(t *testing.T) {
	h := NewCapacityHandler(testRates, 6)

	tests := []struct {
		name     string
		slots    SlotView
		suitable bool
	}{
		{"fits", SlotView{CottageNumber: 9, Guests: 10}, true},
		{"does not fit", SlotView{CottageNumber: 12, Guests: 6}, false},
		{"exactly at capacity", SlotView{CottageNumber: 7, Guests: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.ProcessCapacityQuery("can we fit", tt.slots)
			if !result.HasAllInfo {
				t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
			}
			if result.Suitable != tt.suitable {
				t.Errorf("Suitable = %v, want %v", result.Suitable, tt.suitable)
			}
		})
	}
}

func TestCapacityUnknownCottage(t *testing.T) {
	h := NewCapacityHandler(testRates, 6)
	result := h.ProcessCapacityQuery("can we fit", SlotView{CottageNumber: 15, Guests: 4})
	if result.HasAllInfo || result.Error == "" {
		t.Errorf("want error result for unknown cottage, got %+v", result)
	}
}

func TestCapacityListsSuitableCottages(t *testing.T) {
	h := NewCapacityHandler(testRates, 6)

	result := h.ProcessCapacityQuery("which cottage for 6 people", SlotView{Guests: 6})
	if !result.HasAllInfo {
		t.Fatalf("HasAllInfo = false, missing %v", result.MissingSlots)
	}
	if !reflect.DeepEqual(result.SuitableList, []int{7, 9}) {
		t.Errorf("suitable = %v, want [7 9]", result.SuitableList)
	}

	// a group too large for any single cottage
	result = h.ProcessCapacityQuery("which cottage for 20 people", SlotView{Guests: 20})
	if result.Suitable || len(result.SuitableList) != 0 {
		t.Errorf("want no suitable cottages for 20 guests, got %+v", result)
	}
}

func TestCapacityLargeGroupNote(t *testing.T) {
	h := NewCapacityHandler(testRates, 6)
	result := h.ProcessCapacityQuery("10 of us in cottage 9", SlotView{CottageNumber: 9, Guests: 10})
	if result.Note == "" {
		t.Error("groups above base occupancy must carry a confirmation note")
	}
}
