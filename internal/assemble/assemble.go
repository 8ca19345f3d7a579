// Package assemble pairs leg matches with nearby date/time text to build
// ordered flight segments.
package assemble

import (
	"strings"
	"time"

	"faredrop/internal/extract"
	"faredrop/internal/patterns"
	"faredrop/internal/trip"
)

// windowLines is how far past the matched line the assembler looks for the
// leg's timestamps.
const windowLines = 3

// Segments builds flight segments from leg matches, in document order.
//
// For each leg the matched line plus the next three lines are searched for
// "Mar 31, 2026 11:50 PM" style timestamps: the first becomes the
// departure, a second becomes the arrival. Legs with no timestamp in the
// window are still emitted with nil times; downstream confidence scoring
// penalises them, it does not discard them.
//
// dateContext supplies the year for timestamps written without one
// (a trip-level date from a beacon or date extractor). A zero dateContext
// leaves yearless timestamps undiscoverable.
//
// Ordering is document order, not chronological order: index 0 is the
// first leg on the page. Whether the tail of the list is a connection or a
// return leg is the caller's domain knowledge.
func Segments(lines []string, legs []extract.LegMatch, dateContext time.Time) []trip.Segment {
	fallbackYear := 0
	if !dateContext.IsZero() {
		fallbackYear = dateContext.Year()
	}

	segments := make([]trip.Segment, 0, len(legs))
	for i, leg := range legs {
		seg := trip.Segment{
			Index:         i,
			Carrier:       leg.Carrier,
			FlightNumber:  leg.FlightNumber,
			DepartAirport: leg.DepartAirport,
			ArriveAirport: leg.ArriveAirport,
		}

		// The window never crosses into the next leg's line, so a later
		// leg's timestamp cannot be mistaken for this leg's arrival. When
		// two legs share a line the window still covers that line.
		limit := len(lines)
		if i+1 < len(legs) && legs[i+1].LineIndex < limit {
			limit = legs[i+1].LineIndex
		}
		if limit <= leg.LineIndex {
			limit = leg.LineIndex + 1
		}
		depart, arrive := windowTimes(lines, leg.LineIndex, limit, fallbackYear)
		if depart != nil {
			seg.DepartureTime = depart
			if arrive != nil {
				// Overnight rollover: an arrival at or before its
				// departure crossed midnight.
				if !arrive.After(*depart) {
					rolled := arrive.AddDate(0, 0, 1)
					arrive = &rolled
				}
				seg.ArrivalTime = arrive
			}
		}

		segments = append(segments, seg)
	}
	return segments
}

// windowTimes finds up to two timestamps in the leg's forward window,
// which ends at the earlier of start+windowLines and limit-1.
func windowTimes(lines []string, start, limit, fallbackYear int) (depart, arrive *time.Time) {
	end := start + windowLines
	if end >= limit {
		end = limit - 1
	}

	for li := start; li <= end; li++ {
		upper := strings.ToUpper(lines[li])
		for _, m := range patterns.LongDateTimePattern.FindAllStringSubmatch(upper, -1) {
			t, ok := patterns.ParseLongDateTime(m, fallbackYear)
			if !ok {
				continue
			}
			if depart == nil {
				tt := t
				depart = &tt
				continue
			}
			if arrive == nil {
				tt := t
				arrive = &tt
				return depart, arrive
			}
		}
	}
	return depart, arrive
}
