package jobsearch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripHTML flattens any markup some boards embed in descriptions down to its
// text content. Plain-text input passes through unchanged.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
