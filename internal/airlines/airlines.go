// Package airlines holds the per-airline heuristic tables: ticket-number
// prefixes, analytics beacon hosts and parameter keys, and leg-line
// formats. Extractor logic stays uniform; everything airline-specific
// lives in this table.
package airlines

import (
	"strings"
	"sync"

	"faredrop/internal/patterns"
)

// BeaconKeys names the analytics query parameters that carry trip data for
// one airline's tracking beacon.
type BeaconKeys struct {
	Origin        string
	Destination   string
	DepartDate    string // MM/DD/YYYY in the beacon, normalized downstream.
	ReturnDate    string
	RecordLocator string
}

// Config describes one supported carrier.
type Config struct {
	Code         string // 2-letter IATA code.
	Name         string
	TicketPrefix string // 3-digit ticket-stock prefix, e.g. "006" for Delta.
	BeaconHost   string // analytics tracking host embedded in its pages.
	BeaconKeys   BeaconKeys
	// LegPattern is a grok-style format for this airline's leg lines.
	// {CARRIER} is overridden with the airline's own code at compile time.
	LegPattern string
}

// defaultLegPattern covers the common "XX 1234 AAA-BBB" leg line shape.
const defaultLegPattern = `(?P<carrier>{CARRIER})\s?(?P<num>{FLIGHTNUM})\b.*?(?P<dep>{IATA}){ARROW}(?P<arr>{IATA})`

// adobeKeys is the eVar layout shared by the Adobe-instrumented carriers.
var adobeKeys = BeaconKeys{
	Origin:        "v20",
	Destination:   "v21",
	DepartDate:    "v22",
	ReturnDate:    "v23",
	RecordLocator: "v24",
}

// table is the closed set of supported carriers.
var table = map[string]Config{
	"DL": {
		Code:         "DL",
		Name:         "Delta Air Lines",
		TicketPrefix: "006",
		BeaconHost:   "smetrics.delta.com",
		BeaconKeys:   adobeKeys,
		LegPattern:   defaultLegPattern,
	},
	"AA": {
		Code:         "AA",
		Name:         "American Airlines",
		TicketPrefix: "001",
		BeaconHost:   "metrics.aa.com",
		BeaconKeys:   adobeKeys,
		LegPattern:   defaultLegPattern,
	},
	"UA": {
		Code:         "UA",
		Name:         "United Airlines",
		TicketPrefix: "016",
		BeaconHost:   "smetrics.united.com",
		BeaconKeys:   adobeKeys,
		LegPattern:   defaultLegPattern,
	},
	"AS": {
		Code:         "AS",
		Name:         "Alaska Airlines",
		TicketPrefix: "027",
		BeaconHost:   "smetrics.alaskaair.com",
		BeaconKeys:   adobeKeys,
		LegPattern:   defaultLegPattern,
	},
	"B6": {
		Code:         "B6",
		Name:         "JetBlue Airways",
		TicketPrefix: "279",
		BeaconHost:   "smetrics.jetblue.com",
		BeaconKeys:   adobeKeys,
		LegPattern:   defaultLegPattern,
	},
	"WN": {
		Code:         "WN",
		Name:         "Southwest Airlines",
		TicketPrefix: "526",
		BeaconHost:   "luv.metrics.southwest.com",
		// Southwest's beacon uses prop slots instead of eVars.
		BeaconKeys: BeaconKeys{
			Origin:        "c8",
			Destination:   "c9",
			DepartDate:    "c10",
			ReturnDate:    "c11",
			RecordLocator: "c12",
		},
		LegPattern: defaultLegPattern,
	},
}

// Lookup returns the config for a carrier code. Unknown or empty codes
// return ok=false; airline-specific extractors treat that as "extractor
// does not apply", not an error.
func Lookup(code string) (Config, bool) {
	cfg, ok := table[strings.ToUpper(code)]
	return cfg, ok
}

// All returns every supported carrier config, in no particular order.
func All() []Config {
	out := make([]Config, 0, len(table))
	for _, cfg := range table {
		out = append(out, cfg)
	}
	return out
}

// ByBeaconHost finds the carrier whose tracking host appears in the given
// URL host. Used to infer the airline when no hint was supplied.
func ByBeaconHost(host string) (Config, bool) {
	host = strings.ToLower(host)
	for _, cfg := range table {
		if cfg.BeaconHost != "" && strings.Contains(host, cfg.BeaconHost) {
			return cfg, true
		}
	}
	return Config{}, false
}

// Leg-line compilers, one per carrier, compiled once and reused.
var (
	legOnce      sync.Once
	legCompilers map[string]*patterns.Compiler
)

// LegCompiler returns the compiled leg-line matcher for a carrier, or nil
// for unknown carriers.
func LegCompiler(code string) *patterns.Compiler {
	legOnce.Do(func() {
		legCompilers = make(map[string]*patterns.Compiler, len(table))
		for c, cfg := range table {
			comp := patterns.NewCompiler(
				[]patterns.Format{{Name: "leg", Pattern: cfg.LegPattern}},
				map[string]string{"CARRIER": cfg.Code},
			)
			if err := comp.Compile(); err != nil {
				continue
			}
			legCompilers[c] = comp
		}
	})
	return legCompilers[strings.ToUpper(code)]
}
