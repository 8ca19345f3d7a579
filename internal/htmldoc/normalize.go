package htmldoc

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	// blockTagRe covers tags that imply a line break in the text projection.
	blockTagRe = regexp.MustCompile(`(?i)</?(?:p|div|br|tr|td|th|li|table|h[1-6]|ul|ol|section|article|header|footer)\b[^>]*>`)
	anyTagRe   = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRunRe = regexp.MustCompile(`[ \t\r\f\v]+`)
	wsRunRe    = regexp.MustCompile(`\s+`)
)

// Normalize produces the plain-text projection of a document: script and
// style payloads removed entirely, remaining tags stripped, whitespace runs
// (including newlines) collapsed to single spaces, trimmed. Plain-text
// input passes through with only whitespace collapsing. Never fails; the
// worst case is an empty string.
func Normalize(body string) string {
	text := stripMarkup(body)
	text = wsRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Lines produces the line-oriented projection used by the line-scanning
// extractors: block-level tags become line breaks, inline whitespace is
// collapsed within each line, and blank lines are dropped.
func Lines(body string) []string {
	text := stripMarkupKeepBreaks(body)
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(spaceRunRe.ReplaceAllString(l, " "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func stripMarkup(body string) string {
	text := stripMarkupKeepBreaks(body)
	return text
}

func stripMarkupKeepBreaks(body string) string {
	// Script/style payloads never leak into the text projection; beacon
	// URLs inside them are handled by the beacon reader instead.
	text := scriptBlockRe.ReplaceAllString(body, " ")
	text = styleBlockRe.ReplaceAllString(text, " ")
	text = commentRe.ReplaceAllString(text, " ")
	text = blockTagRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, " ")
	return html.UnescapeString(text)
}
