package service

import "testing"

func TestExtractGuestCount(t *testing.T) {
	e := NewNumberExtractor(20)

	tests := []struct {
		text  string
		want  int
		found bool
	}{
		{"we are 4 people", 4, true},
		{"6 guests total", 6, true},
		{"group of 8", 8, true},
		{"party of 12", 12, true},
		{"four people coming", 4, true},
		{"2 adults and kids", 2, true},
		{"5 pax", 5, true},
		{"cottage 9 for 4 guests", 4, true},
		{"cottage 9 please", 0, false},
		{"book for 3 nights", 0, false},
		{"how much is it", 0, false},
		{"99 people", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := e.ExtractGuestCount(tt.text)
			if found != tt.found || got != tt.want {
				t.Errorf("ExtractGuestCount(%q) = (%d, %v), want (%d, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestExtractCottageNumber(t *testing.T) {
	e := NewNumberExtractor(20)

	tests := []struct {
		text  string
		want  int
		found bool
	}{
		{"how much is cottage 9", 9, true},
		{"cottage no 7", 7, true},
		{"cottage number 12", 12, true},
		{"villa 3 for the weekend", 3, true},
		{"cottage two", 2, true},
		// the guest number must never be mistaken for a cottage
		{"4 people this weekend", 0, false},
		{"we are 6 guests", 0, false},
		{"cottage for 4 people", 0, false},
		// out of service range
		{"cottage 99", 0, false},
		{"is it safe there", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := e.ExtractCottageNumber(tt.text)
			if found != tt.found || got != tt.want {
				t.Errorf("ExtractCottageNumber(%q) = (%d, %v), want (%d, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}

// The same sentence must route each number to its own extractor.
func TestGuestAndCottageNumbersStayIndependent(t *testing.T) {
	e := NewNumberExtractor(20)
	text := "price for cottage 9 for 4 guests"

	cottage, ok := e.ExtractCottageNumber(text)
	if !ok || cottage != 9 {
		t.Errorf("cottage = (%d, %v), want (9, true)", cottage, ok)
	}
	guests, ok := e.ExtractGuestCount(text)
	if !ok || guests != 4 {
		t.Errorf("guests = (%d, %v), want (4, true)", guests, ok)
	}
}

func TestExtractNights(t *testing.T) {
	e := NewNumberExtractor(20)

	tests := []struct {
		text  string
		want  int
		found bool
	}{
		{"staying for 3 nights", 3, true},
		{"just 1 night", 1, true},
		{"5 days in march", 5, true},
		{"how much per night", 0, false},
		{"99 nights", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, found := e.ExtractNights(tt.text)
			if found != tt.found || got != tt.want {
				t.Errorf("ExtractNights(%q) = (%d, %v), want (%d, %v)", tt.text, got, found, tt.want, tt.found)
			}
		})
	}
}
