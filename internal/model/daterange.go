package model

import "time"

// StayNight is one night of a stay, tagged with its calendar weekday
// classification
type StayNight struct {
	Date      time.Time `json:"date"`
	IsWeekend bool      `json:"is_weekend"`
	Rate      float64   `json:"rate,omitempty"`
}

// DateRange is a resolved stay window. Nights are the nights slept,
// i.e. the days [Start, End); invariant: WeekdayNights+WeekendNights
// equals Nights and Nights >= 1.
type DateRange struct {
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	Nights        int         `json:"nights"`
	WeekdayNights int         `json:"weekday_nights"`
	WeekendNights int         `json:"weekend_nights"`
	Days          []StayNight `json:"days,omitempty"`
}

// NewDateRange builds a DateRange from start/end, normalizing a
// zero-or-negative span to a single night and walking the real
// calendar to split weekday vs weekend nights (Sat/Sun = weekend).
func NewDateRange(start, end time.Time) *DateRange {
	start = truncateDay(start)
	end = truncateDay(end)

	nights := int(end.Sub(start).Hours() / 24)
	if nights <= 0 {
		nights = 1
		end = start.AddDate(0, 0, 1)
	}

	r := &DateRange{
		Start:  start,
		End:    end,
		Nights: nights,
		Days:   make([]StayNight, 0, nights),
	}

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		if weekend {
			r.WeekendNights++
		} else {
			r.WeekdayNights++
		}
		r.Days = append(r.Days, StayNight{Date: d, IsWeekend: weekend})
	}

	return r
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PriceSegment is one line of a pricing breakdown
type PriceSegment struct {
	Date      time.Time `json:"date"`
	IsWeekend bool      `json:"is_weekend"`
	Rate      float64   `json:"rate"`
}

// PricingResult is the terminal outcome of a pricing query. Exactly
// one of the computed fields or MissingSlots is populated; a computed
// total never coexists with a missing-slot flag.
type PricingResult struct {
	HasAllInfo    bool           `json:"has_all_info"`
	MissingSlots  []string       `json:"missing_slots,omitempty"`
	CottageNumber int            `json:"cottage_number,omitempty"`
	Guests        int            `json:"guests,omitempty"`
	TotalPrice    float64        `json:"total_price,omitempty"`
	WeekdayNights int            `json:"weekday_nights,omitempty"`
	WeekendNights int            `json:"weekend_nights,omitempty"`
	WeekdayRate   float64        `json:"weekday_rate,omitempty"`
	WeekendRate   float64        `json:"weekend_rate,omitempty"`
	Breakdown     []PriceSegment `json:"breakdown,omitempty"`
	Template      string         `json:"template,omitempty"`
	Note          string         `json:"note,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// CapacityResult is the terminal outcome of a suitability-by-group-size
// query, sharing the missing-slot/compute contract with pricing
type CapacityResult struct {
	HasAllInfo     bool     `json:"has_all_info"`
	MissingSlots   []string `json:"missing_slots,omitempty"`
	Guests         int      `json:"guests,omitempty"`
	CottageNumber  int      `json:"cottage_number,omitempty"`
	Suitable       bool     `json:"suitable"`
	SuitableList   []int    `json:"suitable_cottages,omitempty"`
	Template       string   `json:"template,omitempty"`
	Note           string   `json:"note,omitempty"`
	Error          string   `json:"error,omitempty"`
}
