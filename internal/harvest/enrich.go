package harvest

import (
	"time"

	"go-opportunity-hunter/internal/browser"
	"go-opportunity-hunter/internal/extract"
	"go-opportunity-hunter/internal/models"
)

// enrichOne navigates the shared session to the listing's detail page and
// extracts the secondary fields. Navigation and timeout failures come back
// as *DetailFetchError so the orchestrator can isolate them per item.
// Missing page sections are not failures; they just stay empty.
func enrichOne(s browser.Session, detailURL string, navTimeout time.Duration) (models.DetailInfo, error) {
	if err := s.Navigate(detailURL, navTimeout); err != nil {
		return models.DetailInfo{}, &DetailFetchError{URL: detailURL, Cause: err}
	}

	html, err := s.HTML()
	if err != nil {
		return models.DetailInfo{}, &DetailFetchError{URL: detailURL, Cause: err}
	}

	info, err := extract.Detail(html)
	if err != nil {
		return models.DetailInfo{}, &DetailFetchError{URL: detailURL, Cause: err}
	}
	return info, nil
}
