package htmldoc

import (
	"regexp"
	"strings"
)

// regexFinder implements Finder without a structured parser, using generic
// markup scans. It is the degraded mode for constrained environments and
// must keep producing the same values as the tree finder for well-formed
// input.
type regexFinder struct{}

func (f *regexFinder) Name() string { return "regex" }

var scriptSrcRe = regexp.MustCompile(`(?is)<script\b[^>]*\bsrc\s*=\s*["']([^"']+)["'][^>]*>`)

func (f *regexFinder) ScriptSources(body string) []string {
	var srcs []string
	for _, m := range scriptSrcRe.FindAllStringSubmatch(body, -1) {
		srcs = append(srcs, m[1])
	}
	return srcs
}

func (f *regexFinder) SelectText(body, selector string) []string {
	class, ok := strings.CutPrefix(selector, ".")
	if !ok || class == "" {
		// Only class selectors are supported in degraded mode.
		return nil
	}

	// Match an opening tag carrying the class, then take the element text
	// up to the next closing tag. Good enough for the leaf display nodes
	// this is used on.
	re, err := regexp.Compile(`(?is)<[a-z][a-z0-9]*\b[^>]*\bclass\s*=\s*["'][^"']*\b` + regexp.QuoteMeta(class) + `\b[^"']*["'][^>]*>(.*?)</`)
	if err != nil {
		return nil
	}

	var out []string
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		text := Normalize(m[1])
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}
