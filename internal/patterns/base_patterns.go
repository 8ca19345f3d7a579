// Package patterns provides shared regex patterns and helper functions for
// itinerary extraction. This file contains grok-style base patterns for use
// with the Compiler.
package patterns

// BasePatterns defines reusable regex components for grok-style pattern
// composition. These are referenced in format patterns using {PATTERN_NAME}
// syntax; airline leg-line formats are built from them so the per-airline
// tables stay data, not code.
var BasePatterns = map[string]string{
	// Airport and carrier codes.
	"IATA":    `[A-Z]{3}`,
	"CARRIER": `[A-Z]{2}`,

	// Flight numbers: 1-4 digits plus an optional operational suffix letter.
	"FLIGHTNUM": `\d{1,4}[A-Z]?`,

	// Record locators.
	"PNR": `[A-Z0-9]{6}`,

	// Ticket numbers: 3-digit airline prefix + 10-digit serial.
	"TICKETSERIAL": `\d{10}`,

	// Route separators: dash, en dash, or arrow, with optional spacing.
	"ARROW": `\s*[-–>→]+\s*`,

	// Times and dates.
	"TIME12": `\d{1,2}:\d{2}\s*[AP]M`,
	"MONTH":  `JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC`,
	"MDY":    `\d{1,2}/\d{1,2}/\d{4}`,

	// Fare amounts, e.g. "$341.60".
	"AMOUNT": `\$\d{1,5}(?:\.\d{2})?`,
}
