package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// firstText returns the cleaned text of the first node matching selector
// under root, or "" when nothing matches.
func firstText(root *goquery.Selection, selector string) string {
	return clean(root.Find(selector).First().Text())
}

// clean collapses all runs of whitespace (the rendered markup is full of
// newlines and indentation) and NFC-normalizes the result so that visually
// identical strings compare equal across harvest runs.
func clean(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
