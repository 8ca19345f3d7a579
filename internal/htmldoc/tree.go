package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// treeFinder implements Finder on top of a parsed HTML tree.
type treeFinder struct{}

func (f *treeFinder) Name() string { return "tree" }

// probe checks the tree parser actually works in this environment. A false
// result switches the process to the regex finder.
func (f *treeFinder) probe() bool {
	got := f.SelectText(`<html><body><p class="probe">ok</p></body></html>`, ".probe")
	return len(got) == 1 && got[0] == "ok"
}

func (f *treeFinder) ScriptSources(body string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var srcs []string
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			srcs = append(srcs, src)
		}
	})
	return srcs
}

func (f *treeFinder) SelectText(body, selector string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(wsRunRe.ReplaceAllString(s.Text(), " "))
		if text != "" {
			out = append(out, text)
		}
	})
	return out
}
