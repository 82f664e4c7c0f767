package models

import "time"

type ListingType string

const (
	TypeBounty  ListingType = "bounty"
	TypeProject ListingType = "project"
	TypeGrant   ListingType = "grant"
	TypeUnknown ListingType = "unknown"
)

type ListingStatus string

const (
	StatusOpen   ListingStatus = "Open"
	StatusClosed ListingStatus = "Closed"
)

// Reward is the payout advertised on a listing card. Amount stays a raw
// string because the site renders ranges ("500-1,000") and separators that
// we don't want to lose.
type Reward struct {
	Amount  string `json:"amount,omitempty"`
	Token   string `json:"token,omitempty"`
	IsRange bool   `json:"is_range"`
}

// RawListing is one card extracted from the listing page. Title and URL are
// mandatory; cards missing either are dropped at extraction time.
type RawListing struct {
	Title         string        `json:"title"`
	OrgName       string        `json:"org_name,omitempty"`
	OrgVerified   bool          `json:"org_verified"`
	Type          ListingType   `json:"type"`
	Status        ListingStatus `json:"status"`
	IsFeatured    bool          `json:"is_featured"`
	Reward        Reward        `json:"reward"`
	Deadline      string        `json:"deadline,omitempty"`
	CommentsCount int           `json:"comments_count"`
	URL           string        `json:"url"`
}

type ProjectLinks struct {
	Website string `json:"website,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Discord string `json:"discord,omitempty"`
}

// DetailInfo is the secondary data pulled from a listing's detail page.
// Every field is optional; a detail page missing a section just leaves the
// zero value.
type DetailInfo struct {
	Description      string       `json:"description,omitempty"`
	Requirements     string       `json:"requirements,omitempty"`
	Eligibility      string       `json:"eligibility,omitempty"`
	Skills           []string     `json:"skills,omitempty"`
	EstimatedTime    string       `json:"estimated_time,omitempty"`
	ExperienceLevel  string       `json:"experience_level,omitempty"`
	PostedDate       string       `json:"posted_date,omitempty"`
	Deadline         string       `json:"deadline,omitempty"`
	Links            ProjectLinks `json:"links"`
	ApplicationSteps []string     `json:"application_steps,omitempty"`
	ContactInfo      string       `json:"contact_info,omitempty"`
}

// EnrichedListing is a RawListing plus whatever the detail page yielded.
// When enrichment fails the base fields survive and EnrichmentFailed is set.
type EnrichedListing struct {
	RawListing
	Detail           DetailInfo `json:"detail"`
	EnrichmentFailed bool       `json:"enrichment_failed"`
}

// Enrich merges detail-page data onto the listing. Detail fields are
// additive; the only base field a detail page may refine is the deadline.
func (l *EnrichedListing) Enrich(d DetailInfo) {
	l.Detail = d
	if d.Deadline != "" {
		l.Deadline = d.Deadline
	}
}

// UpsertReport summarizes one sink write.
type UpsertReport struct {
	Inserted int
	Updated  int
	Failed   int
}

type TrackStatus string

const (
	TrackInterested TrackStatus = "INTERESTED"
	TrackApplied    TrackStatus = "APPLIED"
	TrackDone       TrackStatus = "DONE"
)

// User is a Telegram user known to the bot.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Opportunity is the stored form of a listing as the bot browses it back
// out of the database.
type Opportunity struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	RewardAmount string    `json:"reward_amount"`
	RewardToken  string    `json:"reward_token"`
	Platform     string    `json:"platform"`
	URL          string    `json:"url"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// TrackedOpportunity joins a saved opportunity with its tracking status.
type TrackedOpportunity struct {
	Opportunity
	TrackStatus TrackStatus `json:"track_status"`
}
