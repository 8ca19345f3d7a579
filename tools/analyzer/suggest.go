// Pattern suggestion logic for generating regex candidates from sample clusters.
package main

import (
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PatternSuggestion represents a suggested regex pattern for a sample cluster.
type PatternSuggestion struct {
	ClusterID       int      `json:"cluster_id"`
	SampleCount     int      `json:"sample_count"`
	Kind            string   `json:"kind"`
	SuggestedRegex  string   `json:"suggested_regex"`
	NamedGroups     []string `json:"named_groups"`
	Examples        []string `json:"examples"`
	ExampleIDs      []int64  `json:"example_ids"`
	TemplatePattern string   `json:"template_pattern"`
}

// sampleInfo holds sample ID and body for clustering.
type sampleInfo struct {
	id   int64
	body string
}

// SuggestPatterns analyzes unrecovered samples and suggests regex patterns
// for clusters that share a format skeleton.
func SuggestPatterns(db *sql.DB, kind string, minClusterSize int, maxSuggestions int) []PatternSuggestion {
	// Focus on samples the extractor did poorly on.
	rows, err := db.Query(`
		SELECT id, raw_body FROM samples
		WHERE doc_kind = ? AND confidence IN ('unknown', 'low')
		LIMIT 5000`, kind)
	if err != nil {
		return nil
	}
	defer rows.Close()

	// Group by template.
	clusters := make(map[string][]sampleInfo)

	for rows.Next() {
		var id int64
		var body string
		_ = rows.Scan(&id, &body)

		template := normaliseToTemplate(body)
		clusters[template] = append(clusters[template], sampleInfo{id, body})
	}

	// Sort clusters by size.
	type clusterInfo struct {
		template string
		samples  []sampleInfo
	}
	var sortedClusters []clusterInfo
	for tmpl, group := range clusters {
		if len(group) >= minClusterSize {
			sortedClusters = append(sortedClusters, clusterInfo{tmpl, group})
		}
	}
	sort.Slice(sortedClusters, func(i, j int) bool {
		return len(sortedClusters[i].samples) > len(sortedClusters[j].samples)
	})

	if len(sortedClusters) > maxSuggestions {
		sortedClusters = sortedClusters[:maxSuggestions]
	}

	// Generate suggestions for each cluster.
	var suggestions []PatternSuggestion
	for i, cluster := range sortedClusters {
		suggestion := generatePatternSuggestion(cluster.samples, cluster.template, kind, i+1)
		suggestions = append(suggestions, suggestion)
	}

	return suggestions
}

func generatePatternSuggestion(samples []sampleInfo, template, kind string, clusterID int) PatternSuggestion {
	suggestion := PatternSuggestion{
		ClusterID:       clusterID,
		SampleCount:     len(samples),
		Kind:            kind,
		TemplatePattern: template,
	}

	// Get examples (up to 3).
	for i, s := range samples {
		if i >= 3 {
			break
		}
		suggestion.Examples = append(suggestion.Examples, s.body)
		suggestion.ExampleIDs = append(suggestion.ExampleIDs, s.id)
	}

	// Generate regex from the template.
	if len(samples) > 0 {
		regex, groups := generateRegexFromTemplate(template)
		suggestion.SuggestedRegex = regex
		suggestion.NamedGroups = groups
	}

	return suggestion
}

// generateRegexFromTemplate creates a regex pattern from a format skeleton.
func generateRegexFromTemplate(template string) (string, []string) {
	// Split template into tokens.
	templateTokens := strings.Fields(strings.ReplaceAll(template, "|", " | "))

	// Build regex by processing template tokens.
	var regexParts []string
	var namedGroups []string
	groupCounts := make(map[string]int)

	for _, tok := range templateTokens {
		if tok == "|" {
			regexParts = append(regexParts, `\s*`)
			continue
		}

		// Get unique group name.
		baseName := tokenToGroupName(tok)
		if baseName != "" {
			groupCounts[baseName]++
			if groupCounts[baseName] > 1 {
				baseName = fmt.Sprintf("%s%d", baseName, groupCounts[baseName])
			}
		}

		switch tok {
		case "<IATA>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>[A-Z]{3})`, baseName))
		case "<CARRIER>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>[A-Z]{2})`, baseName))
		case "<FLTNUM>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>\d{1,4}[A-Z]?)`, baseName))
		case "<LOCATOR>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>[A-Z0-9]{6})`, baseName))
		case "<DATE>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>\d{4}-\d{2}-\d{2})`, baseName))
		case "<TIME>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>\d{1,2}:\d{2})`, baseName))
		case "<AMPM>":
			regexParts = append(regexParts, `[AP]M`)
		case "<TICKET>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>\d{13})`, baseName))
		case "<MONEY>":
			namedGroups = append(namedGroups, baseName)
			regexParts = append(regexParts, fmt.Sprintf(`(?P<%s>\$\d+(?:\.\d{2})?)`, baseName))
		case "<NUM>":
			regexParts = append(regexParts, `\d+`)
		case "<ALNUM>":
			regexParts = append(regexParts, `[A-Z0-9]+`)
		case "<OTHER>":
			regexParts = append(regexParts, `\S+`)
		default:
			// Literal token - escape regex special characters.
			escaped := regexp.QuoteMeta(tok)
			regexParts = append(regexParts, escaped)
		}

		regexParts = append(regexParts, `\s*`)
	}

	// Join and clean up the regex.
	regex := strings.Join(regexParts, "")
	// Remove trailing \s*
	regex = strings.TrimSuffix(regex, `\s*`)
	// Collapse multiple \s* into one
	regex = regexp.MustCompile(`(\\s\*)+`).ReplaceAllString(regex, `\s+`)
	// Make whitespace more flexible
	regex = strings.ReplaceAll(regex, `\s+`, `[\s\t]+`)
	// Add multiline flag but no end anchor (documents may have trailing content)
	regex = `(?s)` + regex

	return regex, namedGroups
}

func tokenToGroupName(token string) string {
	switch token {
	case "<IATA>":
		return "airport"
	case "<CARRIER>":
		return "carrier"
	case "<FLTNUM>":
		return "flight_number"
	case "<LOCATOR>":
		return "locator"
	case "<DATE>":
		return "date"
	case "<TIME>":
		return "time"
	case "<TICKET>":
		return "ticket"
	case "<MONEY>":
		return "fare"
	default:
		return ""
	}
}

// TestPattern tests a regex pattern against the corpus and returns match statistics.
func TestPattern(db *sql.DB, pattern string, kind string) (matches int, total int, sampleMatches []int64, sampleNonMatches []int64) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, 0, nil, nil
	}

	rows, err := db.Query(`SELECT id, raw_body FROM samples WHERE doc_kind = ? LIMIT 2000`, kind)
	if err != nil {
		return 0, 0, nil, nil
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var body string
		_ = rows.Scan(&id, &body)
		total++

		if re.MatchString(strings.ToUpper(body)) {
			matches++
			if len(sampleMatches) < 5 {
				sampleMatches = append(sampleMatches, id)
			}
		} else {
			if len(sampleNonMatches) < 5 {
				sampleNonMatches = append(sampleNonMatches, id)
			}
		}
	}

	return matches, total, sampleMatches, sampleNonMatches
}

// PrintSuggestions outputs pattern suggestions in a readable format.
func PrintSuggestions(suggestions []PatternSuggestion, db *sql.DB, kind string) {
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                    PATTERN SUGGESTIONS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	for _, s := range suggestions {
		fmt.Printf("───────────────────────────────────────────────────────────────\n")
		fmt.Printf("CLUSTER %d: %d samples (Kind: %s)\n", s.ClusterID, s.SampleCount, s.Kind)
		fmt.Printf("───────────────────────────────────────────────────────────────\n")
		fmt.Println()

		fmt.Println("Template:")
		fmt.Printf("  %s\n", s.TemplatePattern)
		fmt.Println()

		fmt.Println("Suggested Regex:")
		printFormattedRegex(s.SuggestedRegex)
		fmt.Println()

		if len(s.NamedGroups) > 0 {
			fmt.Printf("Capture Groups: %s\n", strings.Join(s.NamedGroups, ", "))
			fmt.Println()
		}

		fmt.Println("Examples:")
		for i, ex := range s.Examples {
			fmt.Printf("  [ID %d]\n", s.ExampleIDs[i])
			printIndentedTrunc(ex, "    ", 300)
			fmt.Println()
		}

		// Test the pattern.
		if db != nil && s.SuggestedRegex != "" {
			matches, total, _, _ := TestPattern(db, s.SuggestedRegex, kind)
			if total > 0 {
				fmt.Printf("Test Results: %d/%d samples match (%.1f%%)\n", matches, total, float64(matches)/float64(total)*100)
			}
		}

		fmt.Println()
	}
}

func printFormattedRegex(regex string) {
	// Break long regex into readable chunks.
	if len(regex) <= 80 {
		fmt.Printf("  %s\n", regex)
		return
	}

	// Try to break at logical points.
	parts := strings.Split(regex, `[\s\t]+`)
	var line strings.Builder
	line.WriteString("  ")

	for i, part := range parts {
		if i > 0 {
			if line.Len()+len(part)+10 > 80 {
				fmt.Println(line.String() + `[\s\t]+`)
				line.Reset()
				line.WriteString("    ")
			} else {
				line.WriteString(`[\s\t]+`)
			}
		}
		line.WriteString(part)
	}
	if line.Len() > 2 {
		fmt.Println(line.String())
	}
}

func printIndentedTrunc(text, indent string, maxLen int) {
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		fmt.Printf("%s%s\n", indent, line)
	}
}
