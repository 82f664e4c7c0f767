package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-opportunity-hunter/internal/models"
)

// Detail parses a rendered detail page. Any section the page doesn't have
// yields its zero value; only an unparseable document is an error.
func Detail(html string) (models.DetailInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.DetailInfo{}, fmt.Errorf("parse detail page: %w", err)
	}

	main := doc.Find(`div[class*='chakra-stack']`).First()

	info := models.DetailInfo{
		Description:  firstText(main, `div[class*='listing-description']`),
		Requirements: firstText(main, `div[class*='requirements-section']`),
		Eligibility:  firstText(main, `div[class*='eligibility-section']`),
		Skills:       skills(doc),
		Links: models.ProjectLinks{
			Website: attrHref(doc, `a[aria-label='Website']`),
			Twitter: attrHref(doc, `a[aria-label='Twitter']`),
			Discord: attrHref(doc, `a[aria-label='Discord']`),
		},
		ApplicationSteps: applicationSteps(doc),
		ContactInfo:      attrHref(doc, `a[class*='chakra-link']`),
	}

	//Posted/Due lines share the deadline section and are labeled in text
	doc.Find(`div[class*='deadline-section'] p`).Each(func(_ int, p *goquery.Selection) {
		text := clean(p.Text())
		switch {
		case strings.HasPrefix(text, "Posted"):
			info.PostedDate = stripLabel(text, "Posted")
		case strings.HasPrefix(text, "Due"):
			info.Deadline = stripLabel(text, "Due")
		}
	})

	doc.Find(`div[class*='reward-section'] p`).Each(func(_ int, p *goquery.Selection) {
		text := clean(p.Text())
		switch {
		case strings.Contains(text, "Time") && info.EstimatedTime == "":
			info.EstimatedTime = text
		case strings.Contains(text, "Experience") && info.ExperienceLevel == "":
			info.ExperienceLevel = text
		}
	})

	return info, nil
}

func skills(doc *goquery.Document) []string {
	var out []string
	doc.Find(`div[class*='chakra-stack'] span[class*='tag']`).Each(func(_ int, tag *goquery.Selection) {
		if s := clean(tag.Text()); s != "" {
			out = append(out, s)
		}
	})
	return out
}

func applicationSteps(doc *goquery.Document) []string {
	var out []string
	doc.Find(`div[class*='submission-section'] li`).Each(func(_ int, li *goquery.Selection) {
		if s := clean(li.Text()); s != "" {
			out = append(out, s)
		}
	})
	return out
}

func attrHref(doc *goquery.Document, selector string) string {
	href, _ := doc.Find(selector).First().Attr("href")
	return strings.TrimSpace(href)
}

// stripLabel drops the "Posted:" / "Due:" prefix from a labeled line
func stripLabel(text, label string) string {
	text = strings.TrimPrefix(text, label)
	text = strings.TrimPrefix(text, ":")
	return strings.TrimSpace(text)
}
