package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-opportunity-hunter/internal/models"
)

type Repository struct {
	db       *pgxpool.Pool
	platform string
}

func ConnectDB(ctx context.Context, connString, platform string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: connection poolers (PgBouncer in Transaction mode) do not
	// support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool, platform: platform}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the tables on first run.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT,
	first_name TEXT,
	last_name TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	url TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	org_name TEXT,
	org_verified BOOLEAN NOT NULL DEFAULT false,
	listing_type TEXT,
	status TEXT,
	is_featured BOOLEAN NOT NULL DEFAULT false,
	reward_amount TEXT,
	reward_token TEXT,
	reward_is_range BOOLEAN NOT NULL DEFAULT false,
	deadline TEXT,
	comments_count INT NOT NULL DEFAULT 0,
	description TEXT,
	requirements TEXT,
	eligibility TEXT,
	skills TEXT[],
	estimated_time TEXT,
	experience_level TEXT,
	posted_date TEXT,
	website TEXT,
	twitter TEXT,
	discord TEXT,
	application_steps TEXT[],
	contact_info TEXT,
	platform TEXT,
	enrichment_failed BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS saved_opportunities (
	user_id TEXT NOT NULL REFERENCES users(id),
	opportunity_id TEXT NOT NULL REFERENCES opportunities(id),
	status TEXT NOT NULL DEFAULT 'INTERESTED',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, opportunity_id)
);`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// ---------------- USER OPERATIONS ----------------

// GetOrCreateUser upserts a Telegram user by their chat ID.
func (r *Repository) GetOrCreateUser(ctx context.Context, id, username, firstName, lastName string) (*models.User, error) {
	var user models.User
	query := `
		INSERT INTO users (id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET username = EXCLUDED.username, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
		RETURNING id, username, first_name, last_name, created_at`

	err := r.db.QueryRow(ctx, query, id, username, firstName, lastName).
		Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return &user, nil
}

// ---------------- LISTING OPERATIONS ----------------

// UpsertListings merges one harvest pass into the opportunities table. The
// upsert key is the detail URL; listings absent from the pass are never
// deleted because users may still be tracking them. A failing item is
// counted and skipped, not fatal.
func (r *Repository) UpsertListings(ctx context.Context, listings []models.EnrichedListing) (models.UpsertReport, error) {
	var report models.UpsertReport

	query := `
		INSERT INTO opportunities (
			url, title, org_name, org_verified, listing_type, status, is_featured,
			reward_amount, reward_token, reward_is_range, deadline, comments_count,
			description, requirements, eligibility, skills, estimated_time,
			experience_level, posted_date, website, twitter, discord,
			application_steps, contact_info, platform, enrichment_failed, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, now()
		)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			org_name = EXCLUDED.org_name,
			org_verified = EXCLUDED.org_verified,
			listing_type = EXCLUDED.listing_type,
			status = EXCLUDED.status,
			is_featured = EXCLUDED.is_featured,
			reward_amount = EXCLUDED.reward_amount,
			reward_token = EXCLUDED.reward_token,
			reward_is_range = EXCLUDED.reward_is_range,
			deadline = EXCLUDED.deadline,
			comments_count = EXCLUDED.comments_count,
			description = EXCLUDED.description,
			requirements = EXCLUDED.requirements,
			eligibility = EXCLUDED.eligibility,
			skills = EXCLUDED.skills,
			estimated_time = EXCLUDED.estimated_time,
			experience_level = EXCLUDED.experience_level,
			posted_date = EXCLUDED.posted_date,
			website = EXCLUDED.website,
			twitter = EXCLUDED.twitter,
			discord = EXCLUDED.discord,
			application_steps = EXCLUDED.application_steps,
			contact_info = EXCLUDED.contact_info,
			enrichment_failed = EXCLUDED.enrichment_failed,
			updated_at = now()
		RETURNING (xmax = 0)`

	for _, l := range listings {
		//xmax is 0 for freshly inserted rows, nonzero for updated ones
		var inserted bool
		err := r.db.QueryRow(ctx, query,
			l.URL, l.Title, l.OrgName, l.OrgVerified, string(l.Type), string(l.Status),
			l.IsFeatured, l.Reward.Amount, l.Reward.Token, l.Reward.IsRange,
			l.Deadline, l.CommentsCount, l.Detail.Description, l.Detail.Requirements,
			l.Detail.Eligibility, l.Detail.Skills, l.Detail.EstimatedTime,
			l.Detail.ExperienceLevel, l.Detail.PostedDate, l.Detail.Links.Website,
			l.Detail.Links.Twitter, l.Detail.Links.Discord, l.Detail.ApplicationSteps,
			l.Detail.ContactInfo, r.platform, l.EnrichmentFailed,
		).Scan(&inserted)
		if err != nil {
			report.Failed++
			continue
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	return report, nil
}

// LatestOpen returns the most recently stored open listings for browsing.
func (r *Repository) LatestOpen(ctx context.Context, limit int) ([]models.Opportunity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, COALESCE(reward_amount, ''), COALESCE(reward_token, ''),
		       COALESCE(platform, ''), url, COALESCE(status, ''), created_at
		FROM opportunities
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(models.StatusOpen), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query open opportunities: %w", err)
	}
	defer rows.Close()

	var out []models.Opportunity
	for rows.Next() {
		var o models.Opportunity
		if err := rows.Scan(&o.ID, &o.Title, &o.RewardAmount, &o.RewardToken,
			&o.Platform, &o.URL, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ---------------- TRACKING OPERATIONS ----------------

// TrackOpportunity links a user to a listing they want to follow. Tracking
// the same listing twice just refreshes the status.
func (r *Repository) TrackOpportunity(ctx context.Context, userID, opportunityID string, status models.TrackStatus) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO saved_opportunities (user_id, opportunity_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, opportunity_id)
		DO UPDATE SET status = EXCLUDED.status`,
		userID, opportunityID, string(status))
	if err != nil {
		return fmt.Errorf("failed to track opportunity: %w", err)
	}
	return nil
}

// ListTracked returns all listings the user has saved, newest first.
func (r *Repository) ListTracked(ctx context.Context, userID string) ([]models.TrackedOpportunity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.title, COALESCE(o.reward_amount, ''), COALESCE(o.reward_token, ''),
		       COALESCE(o.platform, ''), o.url, COALESCE(o.status, ''), o.created_at, s.status
		FROM saved_opportunities s
		JOIN opportunities o ON o.id = s.opportunity_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked opportunities: %w", err)
	}
	defer rows.Close()

	var out []models.TrackedOpportunity
	for rows.Next() {
		var t models.TrackedOpportunity
		var status string
		if err := rows.Scan(&t.ID, &t.Title, &t.RewardAmount, &t.RewardToken,
			&t.Platform, &t.URL, &t.Status, &t.CreatedAt, &status); err != nil {
			return nil, fmt.Errorf("failed to scan tracked opportunity: %w", err)
		}
		t.TrackStatus = models.TrackStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}
