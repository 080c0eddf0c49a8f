package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"assistant/internal/model"
)

// DateExtractor parses natural-language date ranges out of guest
// questions. Patterns are tried in priority order; the first match
// wins. Weekday/weekend classification always walks the real calendar.
type DateExtractor struct {
	now func() time.Time
}

// NewDateExtractor creates a date extractor using the wall clock
func NewDateExtractor() *DateExtractor {
	return &DateExtractor{now: time.Now}
}

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Common month-name typos seen in real chat logs
var monthTypos = map[string]string{
	"janaury":  "january",
	"januray":  "january",
	"febuary":  "february",
	"feburary": "february",
	"febrary":  "february",
	"marhc":    "march",
	"aprill":   "april",
	"agust":    "august",
	"septmber": "september",
	"octber":   "october",
	"novembr":  "november",
	"decmber":  "december",
	"decemeber": "december",
}

var (
	// "feb 3 to feb 5", "february 3rd to 5th", "feb 3, 2026 to feb 5, 2026"
	reMonthDayToMonthDay = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\s*(?:to|till|until|through|-|–)\s*(?:([a-z]+)\s+)?(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\b`)
	// "3 feb to 5 feb", "3rd february till 5th february"
	reDayMonthToDayMonth = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\s*(?:to|till|until|through|-|–)\s*(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\b`)
	// "12 to 14 march", "12-14 march"
	reDayToDayMonth = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s*(?:to|till|until|-|–)\s*(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\b`)
	// "3/2 to 5/2", "03/02/2026 - 05/02/2026" (day first)
	reNumericRange = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})(?:[/.](\d{2,4}))?\s*(?:to|till|until|-|–)\s*(\d{1,2})[/.](\d{1,2})(?:[/.](\d{2,4}))?\b`)
	// "on 5 march", "march 5" (single date, 1-night stay)
	reSingleDayMonth = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\b`)
	reSingleMonthDay = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

// ExtractDateRange parses a date range from free text. Returns nil
// when no date expression is found.
func (e *DateExtractor) ExtractDateRange(text string) *model.DateRange {
	lower := e.normalize(text)

	if r := e.matchMonthDayToMonthDay(lower); r != nil {
		return r
	}
	if r := e.matchDayMonthToDayMonth(lower); r != nil {
		return r
	}
	if r := e.matchDayToDayMonth(lower); r != nil {
		return r
	}
	if r := e.matchNumericRange(lower); r != nil {
		return r
	}
	if r := e.matchSingleDate(lower); r != nil {
		return r
	}
	return nil
}

// normalize lowercases and repairs common month typos before matching
func (e *DateExtractor) normalize(text string) string {
	lower := strings.ToLower(text)
	for typo, fixed := range monthTypos {
		lower = strings.ReplaceAll(lower, typo, fixed)
	}
	return lower
}

func (e *DateExtractor) matchMonthDayToMonthDay(lower string) *model.DateRange {
	for _, m := range reMonthDayToMonthDay.FindAllStringSubmatch(lower, -1) {
		startMonth, ok := monthsByName[m[1]]
		if !ok {
			continue
		}
		endMonth := startMonth
		if m[4] != "" {
			if endMonth, ok = monthsByName[m[4]]; !ok {
				continue
			}
		}
		startDay, _ := strconv.Atoi(m[2])
		endDay, _ := strconv.Atoi(m[5])
		startYear := e.resolveYear(m[3])
		endYear := e.resolveYear(m[6])
		if r := e.buildRange(startYear, startMonth, startDay, endYear, endMonth, endDay); r != nil {
			return r
		}
	}
	return nil
}

func (e *DateExtractor) matchDayMonthToDayMonth(lower string) *model.DateRange {
	for _, m := range reDayMonthToDayMonth.FindAllStringSubmatch(lower, -1) {
		startMonth, ok := monthsByName[m[2]]
		if !ok {
			continue
		}
		endMonth, ok := monthsByName[m[4]]
		if !ok {
			continue
		}
		startDay, _ := strconv.Atoi(m[1])
		endDay, _ := strconv.Atoi(m[3])
		year := e.now().Year()
		if r := e.buildRange(year, startMonth, startDay, year, endMonth, endDay); r != nil {
			return r
		}
	}
	return nil
}

func (e *DateExtractor) matchDayToDayMonth(lower string) *model.DateRange {
	for _, m := range reDayToDayMonth.FindAllStringSubmatch(lower, -1) {
		month, ok := monthsByName[m[3]]
		if !ok {
			continue
		}
		startDay, _ := strconv.Atoi(m[1])
		endDay, _ := strconv.Atoi(m[2])
		year := e.now().Year()
		if r := e.buildRange(year, month, startDay, year, month, endDay); r != nil {
			return r
		}
	}
	return nil
}

func (e *DateExtractor) matchNumericRange(lower string) *model.DateRange {
	m := reNumericRange.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	startDay, _ := strconv.Atoi(m[1])
	startMonth, _ := strconv.Atoi(m[2])
	endDay, _ := strconv.Atoi(m[4])
	endMonth, _ := strconv.Atoi(m[5])
	if startMonth < 1 || startMonth > 12 || endMonth < 1 || endMonth > 12 {
		return nil
	}
	startYear := e.resolveNumericYear(m[3])
	endYear := e.resolveNumericYear(m[6])
	return e.buildRange(startYear, time.Month(startMonth), startDay, endYear, time.Month(endMonth), endDay)
}

func (e *DateExtractor) matchSingleDate(lower string) *model.DateRange {
	year := e.now().Year()
	for _, m := range reSingleDayMonth.FindAllStringSubmatch(lower, -1) {
		if month, ok := monthsByName[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			return e.buildRange(year, month, day, year, month, day)
		}
	}
	for _, m := range reSingleMonthDay.FindAllStringSubmatch(lower, -1) {
		if month, ok := monthsByName[m[1]]; ok {
			day, _ := strconv.Atoi(m[2])
			return e.buildRange(year, month, day, year, month, day)
		}
	}
	return nil
}

// resolveYear parses an explicit 4-digit year, defaulting to the
// current year
func (e *DateExtractor) resolveYear(s string) int {
	if s == "" {
		return e.now().Year()
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return e.now().Year()
	}
	return y
}

func (e *DateExtractor) resolveNumericYear(s string) int {
	if s == "" {
		return e.now().Year()
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return e.now().Year()
	}
	if y < 100 {
		y += 2000
	}
	return y
}

// buildRange assembles a DateRange, bumping the end (or both ends)
// into the next year when the computed end precedes the start, e.g.
// "dec 30 to jan 2" asked in December.
func (e *DateExtractor) buildRange(startYear int, startMonth time.Month, startDay int, endYear int, endMonth time.Month, endDay int) *model.DateRange {
	if !validDay(startDay) || !validDay(endDay) {
		return nil
	}
	start := time.Date(startYear, startMonth, startDay, 0, 0, 0, 0, time.Local)
	end := time.Date(endYear, endMonth, endDay, 0, 0, 0, 0, time.Local)
	if end.Before(start) {
		end = end.AddDate(1, 0, 0)
	}
	return model.NewDateRange(start, end)
}

func validDay(day int) bool {
	return day >= 1 && day <= 31
}

// Validation limits for stay windows
const (
	maxPastDays   = 365
	maxFutureDays = 730
	maxStayNights = 30
)

// ValidateDateRange rejects ranges that cannot be a real stay: end not
// after start, a start too far in the past or future, or an
// implausibly long stay.
func (e *DateExtractor) ValidateDateRange(r *model.DateRange) error {
	if r == nil {
		return fmt.Errorf("no date range")
	}
	if !r.End.After(r.Start) {
		return fmt.Errorf("end date must be after start date")
	}
	now := e.now()
	if r.Start.Before(now.AddDate(0, 0, -maxPastDays)) {
		return fmt.Errorf("start date is more than %d days in the past", maxPastDays)
	}
	if r.Start.After(now.AddDate(0, 0, maxFutureDays)) {
		return fmt.Errorf("start date is more than %d days in the future", maxFutureDays)
	}
	if r.Nights > maxStayNights {
		return fmt.Errorf("stay exceeds %d nights", maxStayNights)
	}
	return nil
}
