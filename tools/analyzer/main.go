// Package main provides a corpus analyzer for captured trip documents.
// It analyzes sample distribution, extraction coverage, and format patterns
// over a review database written by faredrop-worker.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

func main() {
	dbPath := flag.String("db", "review.db", "Review database file")
	outputFormat := flag.String("format", "text", "Output format: text, json")
	showTemplates := flag.Bool("templates", false, "Include template analysis (slower)")
	topN := flag.Int("top", 20, "Show top N items in each category")
	kind := flag.String("kind", "", "Analyze specific document kind only (html or text)")
	suggest := flag.Bool("suggest", false, "Generate pattern suggestions for a kind (requires -kind)")
	minCluster := flag.Int("min-cluster", 3, "Minimum cluster size for suggestions")
	testPattern := flag.String("test", "", "Test a regex pattern against the corpus")

	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Pattern testing mode.
	if *testPattern != "" {
		if *kind == "" {
			fmt.Fprintf(os.Stderr, "Error: -test requires -kind\n")
			os.Exit(1)
		}
		matches, total, matchIDs, nonMatchIDs := TestPattern(db, *testPattern, *kind)
		fmt.Printf("Pattern: %s\n", *testPattern)
		fmt.Printf("Kind: %s\n", *kind)
		fmt.Printf("Result: %d/%d match (%.1f%%)\n\n", matches, total, float64(matches)/float64(total)*100)

		if len(matchIDs) > 0 {
			fmt.Printf("Sample matches: %v\n", matchIDs)
		}
		if len(nonMatchIDs) > 0 {
			fmt.Printf("Sample non-matches: %v\n", nonMatchIDs)
		}
		return
	}

	// Suggestion mode.
	if *suggest {
		if *kind == "" {
			fmt.Fprintf(os.Stderr, "Error: -suggest requires -kind\n")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Generating pattern suggestions for kind %s...\n", *kind)
		suggestions := SuggestPatterns(db, *kind, *minCluster, *topN)

		if *outputFormat == "json" {
			data, _ := json.MarshalIndent(suggestions, "", "  ")
			fmt.Println(string(data))
		} else {
			PrintSuggestions(suggestions, db, *kind)
		}
		return
	}

	report := &AnalysisReport{}

	// Run all analyses.
	fmt.Fprintf(os.Stderr, "Analyzing corpus...\n")

	report.Summary = analyzeSummary(db)
	fmt.Fprintf(os.Stderr, "  - Summary complete\n")

	report.KindDistribution = analyzeKindDistribution(db)
	fmt.Fprintf(os.Stderr, "  - Kind distribution complete\n")

	report.ConfidenceCoverage = analyzeConfidenceCoverage(db, *topN)
	fmt.Fprintf(os.Stderr, "  - Confidence coverage complete\n")

	report.AirlineRecovery = analyzeAirlineRecovery(db, *kind)
	fmt.Fprintf(os.Stderr, "  - Airline recovery complete\n")

	report.ContentPatterns = analyzeContentPatterns(db, *kind, *topN)
	fmt.Fprintf(os.Stderr, "  - Content patterns complete\n")

	report.FieldCoverage = analyzeFieldCoverage(db)
	fmt.Fprintf(os.Stderr, "  - Field coverage complete\n")

	if *showTemplates {
		report.TemplateAnalysis = analyzeTemplates(db, *kind, *topN)
		fmt.Fprintf(os.Stderr, "  - Template analysis complete\n")
	}

	// Output.
	if *outputFormat == "json" {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
	} else {
		printTextReport(report)
	}
}

// AnalysisReport contains all analysis results.
type AnalysisReport struct {
	Summary            SummaryStats          `json:"summary"`
	KindDistribution   []KindCount           `json:"kind_distribution"`
	ConfidenceCoverage []ConfidenceCount     `json:"confidence_coverage"`
	AirlineRecovery    []AirlineRecovery     `json:"airline_recovery"`
	ContentPatterns    []KindContentPatterns `json:"content_patterns"`
	FieldCoverage      []FieldCoverageStats  `json:"field_coverage"`
	TemplateAnalysis   []KindTemplates       `json:"template_analysis,omitempty"`
}

type SummaryStats struct {
	TotalSamples       int     `json:"total_samples"`
	RecoveredSamples   int     `json:"recovered_samples"`
	UnrecoveredSamples int     `json:"unrecovered_samples"`
	RecoveryRate       float64 `json:"recovery_rate"`
	UniqueAirlines     int     `json:"unique_airlines"`
	GoldenSamples      int     `json:"golden_samples"`
	FlaggedSamples     int     `json:"flagged_samples"`
}

type KindCount struct {
	Kind  string  `json:"kind"`
	Count int     `json:"count"`
	Pct   float64 `json:"percentage"`
}

type ConfidenceCount struct {
	Confidence string  `json:"confidence"`
	Count      int     `json:"count"`
	Pct        float64 `json:"percentage"`
}

type AirlineRecovery struct {
	Airline       string   `json:"airline"`
	Total         int      `json:"total"`
	Recovered     int      `json:"recovered"`
	Unrecovered   int      `json:"unrecovered"`
	RecoveryRate  float64  `json:"recovery_rate"`
	TopConfidence []string `json:"top_confidence"`
}

type KindContentPatterns struct {
	Kind     string         `json:"kind"`
	Keywords []KeywordCount `json:"keywords"`
}

type KeywordCount struct {
	Keyword string  `json:"keyword"`
	Count   int     `json:"count"`
	Pct     float64 `json:"percentage"`
}

type FieldCoverageStats struct {
	Kind   string       `json:"kind"`
	Fields []FieldCount `json:"fields"`
}

type FieldCount struct {
	Field   string  `json:"field"`
	Present int     `json:"present"`
	Missing int     `json:"missing"`
	Pct     float64 `json:"percentage"`
}

type KindTemplates struct {
	Kind            string          `json:"kind"`
	TotalSamples    int             `json:"total_samples"`
	UniqueTemplates int             `json:"unique_templates"`
	TopTemplates    []TemplateCount `json:"top_templates"`
}

type TemplateCount struct {
	Template string `json:"template"`
	Count    int    `json:"count"`
	Example  string `json:"example"`
}

func analyzeSummary(db *sql.DB) SummaryStats {
	var stats SummaryStats

	db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&stats.TotalSamples)
	db.QueryRow("SELECT COUNT(*) FROM samples WHERE confidence NOT IN ('unknown', 'low')").Scan(&stats.RecoveredSamples)
	stats.UnrecoveredSamples = stats.TotalSamples - stats.RecoveredSamples
	if stats.TotalSamples > 0 {
		stats.RecoveryRate = float64(stats.RecoveredSamples) / float64(stats.TotalSamples) * 100
	}
	db.QueryRow("SELECT COUNT(DISTINCT airline) FROM samples WHERE airline != ''").Scan(&stats.UniqueAirlines)
	db.QueryRow("SELECT COUNT(*) FROM samples WHERE is_golden = 1").Scan(&stats.GoldenSamples)
	db.QueryRow("SELECT COUNT(*) FROM samples WHERE annotation IS NOT NULL AND annotation != ''").Scan(&stats.FlaggedSamples)

	return stats
}

func analyzeKindDistribution(db *sql.DB) []KindCount {
	rows, err := db.Query(`
		SELECT doc_kind, COUNT(*) as cnt
		FROM samples
		GROUP BY doc_kind
		ORDER BY cnt DESC`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var total int
	db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&total)

	var results []KindCount
	for rows.Next() {
		var kc KindCount
		rows.Scan(&kc.Kind, &kc.Count)
		if total > 0 {
			kc.Pct = float64(kc.Count) / float64(total) * 100
		}
		results = append(results, kc)
	}
	return results
}

func analyzeConfidenceCoverage(db *sql.DB, topN int) []ConfidenceCount {
	rows, err := db.Query(`
		SELECT COALESCE(NULLIF(confidence, ''), 'unknown') as conf, COUNT(*) as cnt
		FROM samples
		GROUP BY conf
		ORDER BY cnt DESC
		LIMIT ?`, topN)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var total int
	db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&total)

	var results []ConfidenceCount
	for rows.Next() {
		var cc ConfidenceCount
		rows.Scan(&cc.Confidence, &cc.Count)
		if total > 0 {
			cc.Pct = float64(cc.Count) / float64(total) * 100
		}
		results = append(results, cc)
	}
	return results
}

func analyzeAirlineRecovery(db *sql.DB, filterKind string) []AirlineRecovery {
	query := `
		SELECT
			airline,
			COUNT(*) as total,
			SUM(CASE WHEN confidence NOT IN ('unknown', 'low') THEN 1 ELSE 0 END) as recovered
		FROM samples
	`
	if filterKind != "" {
		query += " WHERE doc_kind = ?"
	}
	query += " GROUP BY airline ORDER BY total DESC LIMIT 30"

	var rows *sql.Rows
	var err error
	if filterKind != "" {
		rows, err = db.Query(query, filterKind)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		return nil
	}
	defer rows.Close()

	var results []AirlineRecovery
	for rows.Next() {
		var ar AirlineRecovery
		rows.Scan(&ar.Airline, &ar.Total, &ar.Recovered)
		ar.Unrecovered = ar.Total - ar.Recovered
		if ar.Total > 0 {
			ar.RecoveryRate = float64(ar.Recovered) / float64(ar.Total) * 100
		}

		// Get top confidence tiers for this airline.
		crows, _ := db.Query(`
			SELECT confidence, COUNT(*) as cnt
			FROM samples
			WHERE airline = ? AND confidence != ''
			GROUP BY confidence
			ORDER BY cnt DESC
			LIMIT 3`, ar.Airline)
		if crows != nil {
			for crows.Next() {
				var conf string
				var cnt int
				crows.Scan(&conf, &cnt)
				ar.TopConfidence = append(ar.TopConfidence, fmt.Sprintf("%s(%d)", conf, cnt))
			}
			crows.Close()
		}

		results = append(results, ar)
	}
	return results
}

// Keywords to look for in documents - these indicate potential data value.
var interestingKeywords = []string{
	// Booking identity.
	"CONFIRMATION", "BOOKING", "REFERENCE", "RECORD LOCATOR", "PNR",
	// Passenger.
	"PASSENGER", "TRAVELER", "NAME",
	// Fare.
	"FARE", "CABIN", "BASIC", "ECONOMY", "FIRST", "BUSINESS",
	// Ticket.
	"TICKET", "E-TICKET", "ETICKET", "RECEIPT",
	// Itinerary.
	"FLIGHT", "DEPARTS", "ARRIVES", "DEPARTURE", "ARRIVAL",
	"NONSTOP", "CONNECTION", "LAYOVER", "ITINERARY",
	// Route.
	"TO", "FROM", "ROUND TRIP", "ONE WAY",
	// Extras.
	"SEAT", "BAG", "GATE", "TERMINAL",
}

func analyzeContentPatterns(db *sql.DB, filterKind string, topN int) []KindContentPatterns {
	// Get kinds to analyze.
	query := "SELECT DISTINCT doc_kind FROM samples"
	if filterKind != "" {
		query += " WHERE doc_kind = '" + filterKind + "'"
	}
	query += " ORDER BY doc_kind"

	kindRows, err := db.Query(query)
	if err != nil {
		return nil
	}
	defer kindRows.Close()

	var kinds []string
	for kindRows.Next() {
		var k string
		kindRows.Scan(&k)
		kinds = append(kinds, k)
	}

	var results []KindContentPatterns
	for _, kind := range kinds {
		// Get sample of documents for this kind.
		rows, err := db.Query(`
			SELECT raw_body FROM samples
			WHERE doc_kind = ?
			LIMIT 1000`, kind)
		if err != nil {
			continue
		}

		keywordCounts := make(map[string]int)
		var total int

		for rows.Next() {
			var body string
			rows.Scan(&body)
			total++
			upper := strings.ToUpper(body)

			for _, kw := range interestingKeywords {
				if strings.Contains(upper, kw) {
					keywordCounts[kw]++
				}
			}
		}
		rows.Close()

		if total == 0 {
			continue
		}

		// Sort keywords by count.
		var keywords []KeywordCount
		for kw, cnt := range keywordCounts {
			if cnt > 0 {
				keywords = append(keywords, KeywordCount{
					Keyword: kw,
					Count:   cnt,
					Pct:     float64(cnt) / float64(total) * 100,
				})
			}
		}
		sort.Slice(keywords, func(i, j int) bool {
			return keywords[i].Count > keywords[j].Count
		})
		if len(keywords) > topN {
			keywords = keywords[:topN]
		}

		if len(keywords) > 0 {
			results = append(results, KindContentPatterns{
				Kind:     kind,
				Keywords: keywords,
			})
		}
	}

	return results
}

func analyzeFieldCoverage(db *sql.DB) []FieldCoverageStats {
	// Get kinds with record_json.
	rows, err := db.Query(`
		SELECT DISTINCT doc_kind
		FROM samples
		WHERE record_json != ''
		ORDER BY doc_kind`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var k string
		rows.Scan(&k)
		kinds = append(kinds, k)
	}

	var results []FieldCoverageStats
	for _, kind := range kinds {
		// Sample record_json for this kind.
		jrows, err := db.Query(`
			SELECT record_json FROM samples
			WHERE doc_kind = ? AND record_json != ''
			LIMIT 500`, kind)
		if err != nil {
			continue
		}

		fieldPresent := make(map[string]int)
		fieldMissing := make(map[string]int)
		var total int

		for jrows.Next() {
			var jsonStr string
			jrows.Scan(&jsonStr)
			total++

			var data map[string]interface{}
			if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
				continue
			}

			// Track all fields seen.
			for k, v := range data {
				// Skip metadata fields.
				if k == "trip_id" || k == "confidence" || k == "note" {
					continue
				}

				isEmpty := false
				switch val := v.(type) {
				case string:
					isEmpty = val == ""
				case float64:
					isEmpty = val == 0
				case []interface{}:
					isEmpty = len(val) == 0
				case nil:
					isEmpty = true
				}

				if isEmpty {
					fieldMissing[k]++
				} else {
					fieldPresent[k]++
				}
			}
		}
		jrows.Close()

		if total == 0 {
			continue
		}

		// Combine present and missing for all fields.
		allFields := make(map[string]bool)
		for f := range fieldPresent {
			allFields[f] = true
		}
		for f := range fieldMissing {
			allFields[f] = true
		}

		var fields []FieldCount
		for f := range allFields {
			present := fieldPresent[f]
			missing := fieldMissing[f]
			fields = append(fields, FieldCount{
				Field:   f,
				Present: present,
				Missing: missing,
				Pct:     float64(present) / float64(total) * 100,
			})
		}
		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Present > fields[j].Present
		})

		results = append(results, FieldCoverageStats{
			Kind:   kind,
			Fields: fields,
		})
	}

	return results
}

// Template analysis - collapses sample bodies into format skeletons.
var tokenPatterns = []struct {
	Name    string
	Pattern *regexp.Regexp
}{
	{"<DATE>", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
	{"<TIME>", regexp.MustCompile(`^\d{1,2}:\d{2}$`)},
	{"<AMPM>", regexp.MustCompile(`^[AP]M$`)},
	{"<TICKET>", regexp.MustCompile(`^\d{13}$`)},
	{"<MONEY>", regexp.MustCompile(`^\$\d+(\.\d{2})?$`)},
	{"<IATA>", regexp.MustCompile(`^[A-Z]{3}$`)},
	{"<CARRIER>", regexp.MustCompile(`^[A-Z]{2}$`)},
	{"<FLTNUM>", regexp.MustCompile(`^\d{1,4}[A-Z]?$`)},
	{"<NUM>", regexp.MustCompile(`^\d+$`)},
	{"<ALNUM>", regexp.MustCompile(`^[A-Z0-9]{6,}$`)},
}

var literalKeywords = map[string]bool{
	"CONFIRMATION": true, "BOOKING": true, "REFERENCE": true, "CODE": true,
	"PASSENGER": true, "NAME": true, "FARE": true, "CABIN": true,
	"TICKET": true, "FLIGHT": true, "DEPARTS": true, "ARRIVES": true,
	"NONSTOP": true, "TO": true, "FROM": true, "AT": true, "ON": true,
	"ROUND": true, "TRIP": true, "ONE": true, "WAY": true,
	"SEAT": true, "GATE": true, "TERMINAL": true,
}

func analyzeTemplates(db *sql.DB, filterKind string, topN int) []KindTemplates {
	// Get kinds to analyze.
	query := `SELECT doc_kind, COUNT(*) as cnt FROM samples GROUP BY doc_kind HAVING cnt >= 10 ORDER BY cnt DESC`
	if filterKind != "" {
		query = `SELECT doc_kind, COUNT(*) as cnt FROM samples WHERE doc_kind = '` + filterKind + `' GROUP BY doc_kind`
	}

	kindRows, err := db.Query(query)
	if err != nil {
		return nil
	}
	defer kindRows.Close()

	var kinds []string
	for kindRows.Next() {
		var k string
		var cnt int
		kindRows.Scan(&k, &cnt)
		kinds = append(kinds, k)
	}

	var results []KindTemplates
	for _, kind := range kinds {
		rows, err := db.Query(`SELECT raw_body FROM samples WHERE doc_kind = ? LIMIT 5000`, kind)
		if err != nil {
			continue
		}

		templateCounts := make(map[string]int)
		templateExamples := make(map[string]string)
		var total int

		for rows.Next() {
			var body string
			rows.Scan(&body)
			total++

			tmpl := normaliseToTemplate(body)
			templateCounts[tmpl]++
			if _, ok := templateExamples[tmpl]; !ok {
				templateExamples[tmpl] = body
			}
		}
		rows.Close()

		var topTemplates []TemplateCount
		for tmpl, cnt := range templateCounts {
			topTemplates = append(topTemplates, TemplateCount{
				Template: truncate(tmpl, 100),
				Count:    cnt,
				Example:  truncate(templateExamples[tmpl], 200),
			})
		}
		sort.Slice(topTemplates, func(i, j int) bool {
			return topTemplates[i].Count > topTemplates[j].Count
		})
		if len(topTemplates) > topN {
			topTemplates = topTemplates[:topN]
		}

		results = append(results, KindTemplates{
			Kind:            kind,
			TotalSamples:    total,
			UniqueTemplates: len(templateCounts),
			TopTemplates:    topTemplates,
		})
	}

	return results
}

func normaliseToTemplate(text string) string {
	text = strings.ToUpper(text)
	lines := strings.Split(text, "\n")

	var normalisedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		var normalisedTokens []string

		for _, tok := range tokens {
			norm := classifyToken(tok)
			normalisedTokens = append(normalisedTokens, norm)
		}

		if len(normalisedTokens) > 0 {
			normalisedLines = append(normalisedLines, strings.Join(normalisedTokens, " "))
		}
	}

	return strings.Join(normalisedLines, " | ")
}

var wordRe = regexp.MustCompile(`^[A-Z]{3,10}:?$`)

func classifyToken(tok string) string {
	tok = strings.TrimRight(tok, ".,;")

	if literalKeywords[strings.TrimSuffix(tok, ":")] {
		return tok
	}

	if isLocatorToken(tok) {
		return "<LOCATOR>"
	}

	for _, tp := range tokenPatterns {
		if tp.Pattern.MatchString(tok) {
			return tp.Name
		}
	}

	if len(tok) <= 2 {
		return tok
	}

	if wordRe.MatchString(tok) {
		return tok
	}

	return "<OTHER>"
}

// isLocatorToken reports whether a token looks like a record locator:
// exactly 6 alphanumerics mixing at least one letter and one digit.
func isLocatorToken(tok string) bool {
	if len(tok) != 6 {
		return false
	}
	var letters, digits int
	for _, c := range tok {
		switch {
		case c >= 'A' && c <= 'Z':
			letters++
		case c >= '0' && c <= '9':
			digits++
		default:
			return false
		}
	}
	return letters > 0 && digits > 0
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func printTextReport(report *AnalysisReport) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                    CAPTURE CORPUS ANALYSIS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	// Summary.
	fmt.Println("SUMMARY")
	fmt.Println("───────")
	s := report.Summary
	fmt.Printf("Total Samples:      %d\n", s.TotalSamples)
	fmt.Printf("Recovered:          %d (%.1f%%)\n", s.RecoveredSamples, s.RecoveryRate)
	fmt.Printf("Unrecovered:        %d (%.1f%%)\n", s.UnrecoveredSamples, 100-s.RecoveryRate)
	fmt.Printf("Unique Airlines:    %d\n", s.UniqueAirlines)
	fmt.Printf("Golden Samples:     %d\n", s.GoldenSamples)
	fmt.Printf("Flagged Samples:    %d\n", s.FlaggedSamples)
	fmt.Println()

	// Kind distribution.
	fmt.Println("KIND DISTRIBUTION (Samples by document kind)")
	fmt.Println("─────────────────")
	fmt.Printf("%-10s %10s %8s\n", "Kind", "Count", "Pct")
	for _, kc := range report.KindDistribution {
		kind := kc.Kind
		if kind == "" {
			kind = "(empty)"
		}
		fmt.Printf("%-10s %10d %7.1f%%\n", kind, kc.Count, kc.Pct)
	}
	fmt.Println()

	// Confidence coverage.
	fmt.Println("CONFIDENCE COVERAGE (Samples by confidence tier)")
	fmt.Println("───────────────────")
	fmt.Printf("%-20s %10s %8s\n", "Confidence", "Count", "Pct")
	for _, cc := range report.ConfidenceCoverage {
		fmt.Printf("%-20s %10d %7.1f%%\n", cc.Confidence, cc.Count, cc.Pct)
	}
	fmt.Println()

	// Airline recovery stats.
	fmt.Println("RECOVERY BY AIRLINE (Coverage per carrier)")
	fmt.Println("───────────────────")
	fmt.Printf("%-10s %8s %10s %12s %8s  %s\n", "Airline", "Total", "Recovered", "Unrecovered", "Rate", "Top Tiers")
	for _, ar := range report.AirlineRecovery {
		airline := ar.Airline
		if airline == "" {
			airline = "(unknown)"
		}
		tiers := strings.Join(ar.TopConfidence, ", ")
		fmt.Printf("%-10s %8d %10d %12d %7.1f%%  %s\n", airline, ar.Total, ar.Recovered, ar.Unrecovered, ar.RecoveryRate, tiers)
	}
	fmt.Println()

	// Content patterns.
	fmt.Println("CONTENT PATTERNS (Keywords found per kind)")
	fmt.Println("────────────────")
	for _, cp := range report.ContentPatterns {
		if len(cp.Keywords) == 0 {
			continue
		}
		var kwStrs []string
		for _, kw := range cp.Keywords {
			if len(kwStrs) >= 8 {
				break
			}
			kwStrs = append(kwStrs, fmt.Sprintf("%s(%.0f%%)", kw.Keyword, kw.Pct))
		}
		fmt.Printf("%-10s: %s\n", cp.Kind, strings.Join(kwStrs, ", "))
	}
	fmt.Println()

	// Field coverage.
	fmt.Println("FIELD COVERAGE (Extraction rate per kind)")
	fmt.Println("──────────────")
	for _, fc := range report.FieldCoverage {
		fmt.Printf("\n%s:\n", fc.Kind)
		for _, f := range fc.Fields {
			bar := strings.Repeat("█", int(f.Pct/5))
			fmt.Printf("  %-20s %5.1f%% %s\n", f.Field, f.Pct, bar)
		}
	}
	fmt.Println()

	// Template analysis.
	if len(report.TemplateAnalysis) > 0 {
		fmt.Println("TEMPLATE ANALYSIS (Format patterns per kind)")
		fmt.Println("─────────────────")
		for _, kt := range report.TemplateAnalysis {
			fmt.Printf("\n%s: %d samples, %d unique templates\n", kt.Kind, kt.TotalSamples, kt.UniqueTemplates)
			for i, t := range kt.TopTemplates {
				if i >= 5 {
					break
				}
				fmt.Printf("  [%d] %s\n", t.Count, t.Template)
			}
		}
	}
}
