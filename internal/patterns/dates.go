// Package patterns provides shared regex patterns and helper functions for
// itinerary extraction. This file contains date and time handling.
package patterns

import (
	"fmt"
	"regexp"
	"time"
)

// ISODatePattern validates normalized YYYY-MM-DD dates. No record is ever
// emitted with a date that fails this pattern.
var ISODatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// BeaconDatePattern matches the MM/DD/YYYY dates carried by analytics
// beacon parameters.
var BeaconDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// LongDateTimePattern matches "Mar 31, 2026 11:50 PM" style timestamps in
// uppercased text. The year is optional; some airlines omit it on leg lines.
var LongDateTimePattern = regexp.MustCompile(`\b(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Z]*\.?\s+(\d{1,2})(?:,)?(?:\s+(\d{4}))?[\s,]+(\d{1,2}):(\d{2})\s*(AM|PM)\b`)

var monthNum = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// MonthNumber returns the month for a 3-letter uppercase abbreviation.
func MonthNumber(abbr string) (time.Month, bool) {
	m, ok := monthNum[abbr]
	return m, ok
}

// To24Hour converts a 12-hour clock reading to a 24-hour one.
// 12 AM maps to hour 0, 12 PM stays 12, any other PM hour gains 12.
func To24Hour(hour int, meridiem string) int {
	switch meridiem {
	case "AM":
		if hour == 12 {
			return 0
		}
		return hour
	case "PM":
		if hour == 12 {
			return 12
		}
		return hour + 12
	}
	return hour
}

// ParseBeaconDate converts an MM/DD/YYYY beacon parameter value to ISO
// YYYY-MM-DD. Malformed values are dropped rather than coerced.
func ParseBeaconDate(s string) (string, bool) {
	if !BeaconDatePattern.MatchString(s) {
		return "", false
	}
	for _, layout := range []string{"01/02/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseLongDateTime converts a LongDateTimePattern submatch into a concrete
// timestamp. When the match carries no year, fallbackYear is used; a zero
// fallbackYear means the timestamp is undiscoverable and (zero, false) is
// returned.
func ParseLongDateTime(m []string, fallbackYear int) (time.Time, bool) {
	if len(m) < 7 {
		return time.Time{}, false
	}
	month, ok := MonthNumber(m[1])
	if !ok {
		return time.Time{}, false
	}
	day := atoi(m[2])
	year := fallbackYear
	if m[3] != "" {
		year = atoi(m[3])
	}
	if year == 0 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	hour := To24Hour(atoi(m[4]), m[6])
	minute := atoi(m[5])
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), true
}

// isoDateScanRe finds ISO date candidates embedded in running text;
// ISODatePattern is anchored and only validates whole values.
var isoDateScanRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

// FindISODates returns the calendar-valid ISO dates in text, in order.
func FindISODates(text string) []string {
	var dates []string
	for _, cand := range isoDateScanRe.FindAllString(text, -1) {
		if _, err := time.Parse("2006-01-02", cand); err != nil {
			continue
		}
		dates = append(dates, cand)
	}
	return dates
}

// ISODate formats a timestamp as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// ValidateISODate returns an error when a date string is present but not in
// normalized ISO form.
func ValidateISODate(s string) error {
	if s == "" {
		return nil
	}
	if !ISODatePattern.MatchString(s) {
		return fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	return nil
}
