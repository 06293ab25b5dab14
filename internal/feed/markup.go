package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// StripMarkup turns an HTML fragment into plain text with collapsed whitespace.
func StripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			// block elements would otherwise glue neighbouring words together
			doc.Find("p, br, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
				sel.AppendHtml(" ")
			})
			text = doc.Text()
		} else {
			text = tagRe.ReplaceAllString(s, " ")
		}
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
