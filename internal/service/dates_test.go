package service

import (
	"testing"
	"time"

	"assistant/internal/model"
)

// fixedExtractor pins the clock so year resolution is deterministic.
// 2026-01-15 is a Thursday.
func fixedExtractor() *DateExtractor {
	return &DateExtractor{now: func() time.Time {
		return time.Date(2026, time.January, 15, 10, 0, 0, 0, time.Local)
	}}
}

func TestExtractDateRange(t *testing.T) {
	e := fixedExtractor()

	tests := []struct {
		name          string
		text          string
		wantStart     string
		wantEnd       string
		wantNights    int
		wantWeekday   int
		wantWeekend   int
	}{
		{
			name:       "month day to month day",
			text:       "what is the price from feb 3 to feb 5",
			wantStart:  "2026-02-03",
			wantEnd:    "2026-02-05",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
		{
			name:       "day month to day month",
			text:       "we want to stay 3 feb to 5 feb",
			wantStart:  "2026-02-03",
			wantEnd:    "2026-02-05",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
		{
			name:       "day to day month",
			text:       "available 12 to 14 march?",
			wantStart:  "2026-03-12",
			wantEnd:    "2026-03-14",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
		{
			name:       "range spanning a weekend",
			text:       "march 6 to march 9",
			wantStart:  "2026-03-06",
			wantEnd:    "2026-03-09",
			wantNights: 3, wantWeekday: 1, wantWeekend: 2,
		},
		{
			name:       "numeric day first",
			text:       "booking for 3/2 to 5/2",
			wantStart:  "2026-02-03",
			wantEnd:    "2026-02-05",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
		{
			name:       "ordinal suffixes",
			text:       "february 3rd till 5th",
			wantStart:  "2026-02-03",
			wantEnd:    "2026-02-05",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
		{
			name:       "single date is a one night stay",
			text:       "can we come on 5 march",
			wantStart:  "2026-03-05",
			wantEnd:    "2026-03-06",
			wantNights: 1, wantWeekday: 1, wantWeekend: 0,
		},
		{
			name:       "year wrap when end precedes start",
			text:       "dec 30 to jan 2",
			wantStart:  "2026-12-30",
			wantEnd:    "2027-01-02",
			wantNights: 3, wantWeekday: 3, wantWeekend: 0,
		},
		{
			name:       "month typo",
			text:       "3 febuary to 5 febuary",
			wantStart:  "2026-02-03",
			wantEnd:    "2026-02-05",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
		{
			name:       "explicit year",
			text:       "feb 3, 2027 to feb 5, 2027",
			wantStart:  "2027-02-03",
			wantEnd:    "2027-02-05",
			wantNights: 2, wantWeekday: 2, wantWeekend: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.ExtractDateRange(tt.text)
			if r == nil {
				t.Fatalf("ExtractDateRange(%q) = nil, want a range", tt.text)
			}
			if got := r.Start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := r.End.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if r.Nights != tt.wantNights {
				t.Errorf("nights = %d, want %d", r.Nights, tt.wantNights)
			}
			if r.WeekdayNights != tt.wantWeekday {
				t.Errorf("weekday nights = %d, want %d", r.WeekdayNights, tt.wantWeekday)
			}
			if r.WeekendNights != tt.wantWeekend {
				t.Errorf("weekend nights = %d, want %d", r.WeekendNights, tt.wantWeekend)
			}
			if r.WeekdayNights+r.WeekendNights != r.Nights {
				t.Errorf("weekday+weekend = %d, want nights %d", r.WeekdayNights+r.WeekendNights, r.Nights)
			}
		})
	}
}

func TestExtractDateRangeNoMatch(t *testing.T) {
	e := fixedExtractor()

	for _, text := range []string{
		"how much is cottage 7",
		"is the property safe for kids",
		"we are 4 people",
		"",
	} {
		if r := e.ExtractDateRange(text); r != nil {
			t.Errorf("ExtractDateRange(%q) = %+v, want nil", text, r)
		}
	}
}

func TestValidateDateRange(t *testing.T) {
	e := fixedExtractor()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	tests := []struct {
		name    string
		r       *model.DateRange
		wantErr bool
	}{
		{"nil range", nil, true},
		{"valid short stay", model.NewDateRange(day(2026, time.February, 3), day(2026, time.February, 5)), false},
		{"too far in the past", model.NewDateRange(day(2024, time.June, 1), day(2024, time.June, 3)), true},
		{"too far in the future", model.NewDateRange(day(2029, time.June, 1), day(2029, time.June, 3)), true},
		{"stay too long", model.NewDateRange(day(2026, time.February, 1), day(2026, time.March, 10)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateDateRange(tt.r)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDateRangeNormalizesZeroNights(t *testing.T) {
	start := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.Local)
	r := model.NewDateRange(start, start)
	if r.Nights != 1 {
		t.Fatalf("nights = %d, want 1", r.Nights)
	}
	if !r.End.After(r.Start) {
		t.Errorf("end %v not after start %v", r.End, r.Start)
	}
}
