// Package beacon reads analytics tracking beacons embedded in airline
// pages. Beacon query parameters leak structured trip data (route, dates,
// record locator) more reliably than the visible markup, so they are
// treated as a first-class, higher-trust source.
package beacon

import (
	"net/url"
	"strings"

	"faredrop/internal/airlines"
	"faredrop/internal/htmldoc"
	"faredrop/internal/patterns"
)

// Params holds the trip fields recovered from one document's beacons.
// Dates are already normalized to ISO; malformed beacon dates are dropped,
// never carried through.
type Params struct {
	Airline       string // carrier whose tracking host matched.
	Origin        string
	Destination   string
	DepartDate    string // YYYY-MM-DD.
	ReturnDate    string // YYYY-MM-DD.
	RecordLocator string
}

func (p Params) empty() bool {
	return p.Origin == "" && p.Destination == "" && p.DepartDate == "" &&
		p.ReturnDate == "" && p.RecordLocator == ""
}

// Read scans a document for tracking beacons using the process-wide
// finder. With an airline hint only that carrier's tracking host is
// considered; otherwise the host itself identifies the carrier.
func Read(body, airlineHint string) (Params, bool) {
	return ReadWith(htmldoc.Active(), body, airlineHint)
}

// ReadWith is Read with an explicit finder, so the degraded regex mode can
// be exercised directly. Multiple beacons in one document are merged in
// document order with later values overwriting earlier ones per key;
// airlines emit a fresh beacon after content hydration and the last one
// reflects the settled page.
func ReadWith(f htmldoc.Finder, body, airlineHint string) (Params, bool) {
	hinted, hintKnown := airlines.Lookup(airlineHint)

	var out Params
	for _, src := range f.ScriptSources(body) {
		u, err := url.Parse(strings.ReplaceAll(src, "&amp;", "&"))
		if err != nil {
			continue
		}

		var cfg airlines.Config
		if hintKnown {
			if !strings.Contains(strings.ToLower(u.Host), hinted.BeaconHost) {
				continue
			}
			cfg = hinted
		} else {
			matched, ok := airlines.ByBeaconHost(u.Host)
			if !ok {
				continue
			}
			cfg = matched
		}

		q, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			continue
		}
		out.Airline = cfg.Code
		mergeBeacon(&out, cfg.BeaconKeys, q)
	}

	if out.empty() {
		return Params{}, false
	}
	return out, true
}

// mergeBeacon overlays one beacon's values onto the accumulated params,
// validating each field and dropping anything malformed.
func mergeBeacon(out *Params, keys airlines.BeaconKeys, q url.Values) {
	if v := strings.ToUpper(q.Get(keys.Origin)); v != "" && patterns.IsLikelyIATA(v) {
		out.Origin = v
	}
	if v := strings.ToUpper(q.Get(keys.Destination)); v != "" && patterns.IsLikelyIATA(v) {
		out.Destination = v
	}
	if v := q.Get(keys.DepartDate); v != "" {
		if iso, ok := patterns.ParseBeaconDate(v); ok {
			out.DepartDate = iso
		}
	}
	if v := q.Get(keys.ReturnDate); v != "" {
		if iso, ok := patterns.ParseBeaconDate(v); ok {
			out.ReturnDate = iso
		}
	}
	if v := strings.ToUpper(q.Get(keys.RecordLocator)); v != "" {
		if patterns.PNRPattern.MatchString(v) && len(v) == 6 {
			out.RecordLocator = v
		}
	}
}
