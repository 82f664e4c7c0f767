// Harvest orchestration: one pass walks the listing page, enriches every
// listing from its detail page, hands the full set to the sink and fans the
// results out to the notifier in batches.

package harvest

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/time/rate"

	"go-opportunity-hunter/internal/browser"
	"go-opportunity-hunter/internal/config"
	"go-opportunity-hunter/internal/extract"
	"go-opportunity-hunter/internal/models"
)

type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// SessionFactory hands out fresh renderer sessions. A session is acquired at
// pass start and closed on every exit path.
type SessionFactory interface {
	NewSession() (browser.Session, error)
}

// Sink receives the complete result set of a pass and upserts it by URL.
type Sink interface {
	UpsertListings(ctx context.Context, listings []models.EnrichedListing) (models.UpsertReport, error)
}

// Notifier delivers one batch of results. start is the zero-based offset of
// the batch within the full sequence of total listings.
type Notifier interface {
	SendListingBatch(start, total int, batch []models.EnrichedListing) error
}

// SeenCache remembers which listing URLs have already been announced so
// scheduled passes only notify about new ones.
type SeenCache interface {
	IsSeen(url string) bool
	Add(urls []string)
}

// Exporter writes the pass results somewhere for offline inspection.
type Exporter interface {
	Write(listings []models.EnrichedListing) (string, error)
}

type Deps struct {
	Sessions SessionFactory
	Sink     Sink
	Notifier Notifier  //optional
	Cache    SeenCache //optional
	Exporter Exporter  //optional
}

type Harvester struct {
	cfg     *config.Config
	deps    Deps
	limiter *rate.Limiter
	mu      sync.Mutex
}

func New(cfg *config.Config, deps Deps) *Harvester {
	return &Harvester{
		cfg:  cfg,
		deps: deps,
		//burst 1 so detail fetches start at most once per item delay
		limiter: rate.NewLimiter(rate.Every(cfg.ItemDelay()), 1),
	}
}

// Run executes one harvest pass. Only one pass may drive the browser at a
// time; a trigger arriving mid-pass gets ErrPassRunning instead of racing on
// the shared session. Item-level enrichment failures are recorded on the
// item and never abort the pass; everything before enrichment is fatal.
func (h *Harvester) Run(ctx context.Context, trigger Trigger) ([]models.EnrichedListing, error) {
	if !h.mu.TryLock() {
		return nil, ErrPassRunning
	}
	defer h.mu.Unlock()

	log.Printf("🚀 Starting harvest pass (trigger: %s)...", trigger)

	session, err := h.deps.Sessions.NewSession()
	if err != nil {
		return nil, fmt.Errorf("session acquisition failed: %w", err)
	}
	defer session.Close()

	log.Printf("📱 Navigating to %s...", h.cfg.ListingURL)
	if err := session.Navigate(h.cfg.ListingURL, h.cfg.NavTimeout()); err != nil {
		return nil, fmt.Errorf("navigate listing page: %w", err)
	}

	log.Println("⌛ Waiting for listing cards to load...")
	if err := session.WaitForSelector(extract.CardSelector, h.cfg.NavTimeout()); err != nil {
		return nil, fmt.Errorf("listing cards never appeared: %w", err)
	}

	log.Println("📜 Scrolling to load all content...")
	if err := loadFullListing(ctx, session, scrollOptions{
		step:     h.cfg.ScrollStepPx,
		interval: h.cfg.ScrollInterval(),
		settle:   h.cfg.SettleDelay(),
		budget:   h.cfg.ScrollBudget(),
	}); err != nil {
		return nil, err
	}

	html, err := session.HTML()
	if err != nil {
		return nil, fmt.Errorf("read listing page: %w", err)
	}
	raw, err := extract.Listings(html, h.cfg.ListingURL)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		//a valid, usable result: the page simply has nothing right now
		log.Println("⚠️ Listing page yielded zero listings, finishing an empty pass")
	} else {
		log.Printf("📊 Found %d listings", len(raw))
	}

	results := h.enrichAll(ctx, session, raw)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if h.deps.Sink != nil {
		report, err := h.deps.Sink.UpsertListings(ctx, results)
		if err != nil {
			log.Printf("⚠️ Sink upsert failed: %v", err)
		} else {
			log.Printf("💾 Sink: %d inserted, %d updated, %d failed",
				report.Inserted, report.Updated, report.Failed)
		}
	}

	if h.deps.Exporter != nil {
		if path, err := h.deps.Exporter.Write(results); err != nil {
			log.Printf("⚠️ Export failed: %v", err)
		} else {
			log.Printf("📁 Results exported to %s", path)
		}
	}

	h.notify(ctx, trigger, results)

	log.Printf("🏁 Harvest pass finished: %d listings", len(results))
	return results, nil
}

// enrichAll folds the raw sequence into enriched results, one item at a
// time on the shared session, preserving discovery order. The inter-item
// delay is mandatory pacing against the target site.
func (h *Harvester) enrichAll(ctx context.Context, session browser.Session, raw []models.RawListing) []models.EnrichedListing {
	results := make([]models.EnrichedListing, 0, len(raw))
	for i, r := range raw {
		if err := h.limiter.Wait(ctx); err != nil {
			//cancelled mid-pass; keep what we have, Run surfaces ctx.Err
			return results
		}

		log.Printf("🔄 Processing %d/%d: %s", i+1, len(raw), r.Title)
		item := models.EnrichedListing{RawListing: r}
		detail, err := enrichOne(session, r.URL, h.cfg.NavTimeout())
		if err != nil {
			log.Printf("❌ %v", err)
			item.EnrichmentFailed = true
		} else {
			item.Enrich(detail)
		}
		results = append(results, item)
	}
	return results
}

// notify streams results to the notifier in fixed-size batches. Scheduled
// passes only announce listings the cache hasn't seen; manual passes send
// everything because the user asked for it. Whatever was announced is
// marked seen either way.
func (h *Harvester) notify(ctx context.Context, trigger Trigger, results []models.EnrichedListing) {
	if h.deps.Notifier == nil {
		return
	}

	toSend := results
	if trigger == TriggerScheduled && h.deps.Cache != nil {
		toSend = nil
		for _, l := range results {
			if !h.deps.Cache.IsSeen(l.URL) {
				toSend = append(toSend, l)
			}
		}
		log.Printf("🔍 Deduplication: %d total -> %d unseen listings", len(results), len(toSend))
	}
	if len(toSend) == 0 {
		return
	}

	size := h.cfg.BatchSize
	if size < 1 {
		//a non-positive size would stall the loop
		size = 1
	}
	for start := 0; start < len(toSend); start += size {
		end := start + size
		if end > len(toSend) {
			end = len(toSend)
		}
		if err := h.deps.Notifier.SendListingBatch(start, len(toSend), toSend[start:end]); err != nil {
			log.Printf("⚠️ Failed to send batch %d-%d: %v", start+1, end, err)
		}
		if end < len(toSend) {
			if err := pause(ctx, h.cfg.BatchDelay()); err != nil {
				return
			}
		}
	}

	if h.deps.Cache != nil {
		urls := make([]string, 0, len(toSend))
		for _, l := range toSend {
			urls = append(urls, l.URL)
		}
		h.deps.Cache.Add(urls)
	}
}
