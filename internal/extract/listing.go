// Structural extraction of listing cards from the rendered page HTML.
// The target site has no stable IDs, so matching is done on class-substring
// patterns. All rules live here so a markup change only touches this package.

package extract

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-opportunity-hunter/internal/models"
)

// CardSelector matches one listing card anchor on the listing page.
const CardSelector = `a[class*='block w-full rounded-md']`

// Listings parses the rendered listing page and returns one RawListing per
// card, in document order. Cards without a title or a resolvable detail URL
// are dropped. Never navigates; pure over the HTML snapshot.
func Listings(html, baseURL string) ([]models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var listings []models.RawListing
	doc.Find(CardSelector).Each(func(_ int, card *goquery.Selection) {
		if l, ok := listingFromCard(card, base); ok {
			listings = append(listings, l)
		}
	})
	return listings, nil
}

func listingFromCard(card *goquery.Selection, base *url.URL) (models.RawListing, bool) {
	title := firstText(card, `p[class*='line-clamp-1']`)
	detailURL := resolveHref(card, base)
	if title == "" || detailURL == "" {
		return models.RawListing{}, false
	}

	amount := rewardAmount(card)

	return models.RawListing{
		Title:       title,
		OrgName:     firstText(card, `p[class*='whitespace-nowrap text-xs text-slate-500']`),
		OrgVerified: card.Find(`svg[class*='path fill-rule']`).Length() > 0,
		Type:        listingType(card),
		Status:      listingStatus(card),
		IsFeatured:  card.Find(`div[class*='text-[#7C3AED]']`).Length() > 0,
		Reward: models.Reward{
			Amount:  amount,
			Token:   firstText(card, `p[class*='text-xs font-medium text-gray-400']`),
			IsRange: strings.Contains(amount, "-"),
		},
		Deadline:      firstText(card, `p[class*='text-[10px] text-gray-500']`),
		CommentsCount: commentsCount(card),
		URL:           detailURL,
	}, true
}

// rewardAmount has two source locations in the markup depending on whether
// the listing advertises a fixed amount or a range. First one wins.
func rewardAmount(card *goquery.Selection) string {
	if amount := firstText(card, `div[class*='flex whitespace-nowrap'] span`); amount != "" {
		return amount
	}
	return firstText(card, `div[class*='flex items-baseline'] div`)
}

func listingType(card *goquery.Selection) models.ListingType {
	alt, _ := card.Find(`img[alt='bounty'], img[alt='project'], img[alt='grant']`).First().Attr("alt")
	switch alt {
	case "bounty":
		return models.TypeBounty
	case "project":
		return models.TypeProject
	case "grant":
		return models.TypeGrant
	default:
		return models.TypeUnknown
	}
}

// an open listing carries a green status dot
func listingStatus(card *goquery.Selection) models.ListingStatus {
	if card.Find(`div[class*='rounded-full bg-[#16A35F]']`).Length() > 0 {
		return models.StatusOpen
	}
	return models.StatusClosed
}

func commentsCount(card *goquery.Selection) int {
	n, err := strconv.Atoi(firstText(card, `div[class*='items-center gap-0.5'] p`))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func resolveHref(card *goquery.Selection, base *url.URL) string {
	href, ok := card.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	abs, err := base.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return abs.String()
}
