package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-opportunity-hunter/internal/browser"
	"go-opportunity-hunter/internal/config"
	"go-opportunity-hunter/internal/models"
)

const testListingURL = "https://example.test/all/"

func testConfig() *config.Config {
	return &config.Config{
		ListingURL:       testListingURL,
		Platform:         "test",
		NavTimeoutMs:     1000,
		ScrollBudgetMs:   2000,
		ScrollStepPx:     500,
		ScrollIntervalMs: 1,
		SettleDelayMs:    1,
		ItemDelayMs:      1,
		BatchSize:        3,
		BatchDelayMs:     1,
	}
}

func detailURL(i int) string {
	return fmt.Sprintf("https://example.test/listings/item-%d/", i)
}

func cardHTML(i int) string {
	return fmt.Sprintf(
		`<a class="block w-full rounded-md" href="%s"><p class="line-clamp-1">Item %d</p></a>`,
		detailURL(i), i)
}

func detailHTML(desc string) string {
	return fmt.Sprintf(
		`<html><body><div class="chakra-stack"><div class="listing-description">%s</div></div></body></html>`,
		desc)
}

// sessionWithItems builds a fake session serving a listing page of n cards
// plus one detail page per card.
func sessionWithItems(n int) *fakeSession {
	var cards []string
	pages := make(map[string]string)
	for i := 1; i <= n; i++ {
		cards = append(cards, cardHTML(i))
		pages[detailURL(i)] = detailHTML(fmt.Sprintf("Description %d", i))
	}
	pages[testListingURL] = "<html><body>" + strings.Join(cards, "") + "</body></html>"
	return &fakeSession{pages: pages, failNav: map[string]error{}}
}

type fakeFactory struct {
	s   browser.Session
	err error
}

func (f *fakeFactory) NewSession() (browser.Session, error) {
	return f.s, f.err
}

type fakeSink struct {
	mu    sync.Mutex
	calls int
	got   []models.EnrichedListing
}

func (f *fakeSink) UpsertListings(_ context.Context, listings []models.EnrichedListing) (models.UpsertReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = listings
	return models.UpsertReport{Inserted: len(listings)}, nil
}

type sentBatch struct {
	start, total int
	titles       []string
}

type fakeNotifier struct {
	mu      sync.Mutex
	batches []sentBatch
}

func (f *fakeNotifier) SendListingBatch(start, total int, batch []models.EnrichedListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := sentBatch{start: start, total: total}
	for _, l := range batch {
		b.titles = append(b.titles, l.Title)
	}
	f.batches = append(f.batches, b)
	return nil
}

type fakeCache struct {
	mu    sync.Mutex
	seen  map[string]bool
	added []string
}

func (c *fakeCache) IsSeen(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[url]
}

func (c *fakeCache) Add(urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, urls...)
}

func TestRunPreservesOrderAndIsolatesFailures(t *testing.T) {
	s := sessionWithItems(10)
	//item 5's detail page times out
	s.failNav[detailURL(5)] = errors.New("navigation timeout of 120000ms exceeded")
	sink := &fakeSink{}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: sink})
	results, err := h.Run(context.Background(), TriggerManual)
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("Item %d", i+1), r.Title, "discovery order must survive enrichment")
		if i == 4 {
			assert.True(t, r.EnrichmentFailed)
			assert.Empty(t, r.Detail.Description)
		} else {
			assert.False(t, r.EnrichmentFailed)
			assert.Equal(t, fmt.Sprintf("Description %d", i+1), r.Detail.Description)
		}
	}

	assert.Equal(t, 1, sink.calls, "the sink receives the pass in its entirety, once")
	assert.Len(t, sink.got, 10)
	assert.True(t, s.closed, "session released after the pass")
}

func TestRunDetailDeadlineRefinesListing(t *testing.T) {
	s := sessionWithItems(1)
	s.pages[detailURL(1)] = `<html><body>
		<div class="chakra-stack"><div class="listing-description">D</div></div>
		<div class="deadline-section"><p>Due: Jan 20, 2026</p></div>
	</body></html>`

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: &fakeSink{}})
	results, err := h.Run(context.Background(), TriggerManual)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Jan 20, 2026", results[0].Deadline)
}

func TestRunEmptyListingPageIsAValidPass(t *testing.T) {
	s := &fakeSession{pages: map[string]string{
		testListingURL: "<html><body><main>no cards today</main></body></html>",
	}}
	sink := &fakeSink{}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: sink})
	results, err := h.Run(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, sink.calls)
}

func TestRunSessionAcquisitionFailure(t *testing.T) {
	h := New(testConfig(), Deps{Sessions: &fakeFactory{err: errors.New("driver not installed")}})
	_, err := h.Run(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session acquisition failed")
}

func TestRunSessionClosedOnFailure(t *testing.T) {
	s := sessionWithItems(1)
	s.waitErr = errors.New("selector never appeared")

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}})
	_, err := h.Run(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.True(t, s.closed, "session must be released on the failure path too")
}

func TestRunRejectsOverlappingPass(t *testing.T) {
	s := sessionWithItems(1)
	blocking := &blockingSession{fakeSession: s, entered: make(chan struct{}), release: make(chan struct{})}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: blocking}, Sink: &fakeSink{}})

	done := make(chan error, 1)
	go func() {
		_, err := h.Run(context.Background(), TriggerScheduled)
		done <- err
	}()

	<-blocking.entered
	_, err := h.Run(context.Background(), TriggerManual)
	assert.ErrorIs(t, err, ErrPassRunning)

	close(blocking.release)
	require.NoError(t, <-done)

	//once the first pass finished, new triggers are accepted again
	_, err = h.Run(context.Background(), TriggerManual)
	assert.NoError(t, err)
}

type blockingSession struct {
	*fakeSession
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSession) Navigate(url string, d time.Duration) error {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.fakeSession.Navigate(url, d)
}

func TestRunBatchesNotifications(t *testing.T) {
	s := sessionWithItems(7)
	n := &fakeNotifier{}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: &fakeSink{}, Notifier: n})
	_, err := h.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	require.Len(t, n.batches, 3)
	assert.Equal(t, sentBatch{start: 0, total: 7, titles: []string{"Item 1", "Item 2", "Item 3"}}, n.batches[0])
	assert.Equal(t, sentBatch{start: 3, total: 7, titles: []string{"Item 4", "Item 5", "Item 6"}}, n.batches[1])
	assert.Equal(t, sentBatch{start: 6, total: 7, titles: []string{"Item 7"}}, n.batches[2])
}

func TestRunNotifyClampsNonPositiveBatchSize(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = -1
	s := sessionWithItems(2)
	n := &fakeNotifier{}

	h := New(cfg, Deps{Sessions: &fakeFactory{s: s}, Sink: &fakeSink{}, Notifier: n})
	_, err := h.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	//clamped to batches of one instead of stalling the loop
	require.Len(t, n.batches, 2)
	assert.Equal(t, []string{"Item 1"}, n.batches[0].titles)
	assert.Equal(t, []string{"Item 2"}, n.batches[1].titles)
}

func TestRunScheduledNotifiesOnlyUnseen(t *testing.T) {
	s := sessionWithItems(4)
	n := &fakeNotifier{}
	cache := &fakeCache{seen: map[string]bool{
		detailURL(1): true,
		detailURL(3): true,
	}}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: &fakeSink{}, Notifier: n, Cache: cache})
	_, err := h.Run(context.Background(), TriggerScheduled)
	require.NoError(t, err)

	require.Len(t, n.batches, 1)
	assert.Equal(t, []string{"Item 2", "Item 4"}, n.batches[0].titles)
	assert.Equal(t, []string{detailURL(2), detailURL(4)}, cache.added)
}

func TestRunScheduledAllSeenStaysSilent(t *testing.T) {
	s := sessionWithItems(2)
	n := &fakeNotifier{}
	cache := &fakeCache{seen: map[string]bool{
		detailURL(1): true,
		detailURL(2): true,
	}}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: &fakeSink{}, Notifier: n, Cache: cache})
	_, err := h.Run(context.Background(), TriggerScheduled)
	require.NoError(t, err)

	assert.Empty(t, n.batches)
	assert.Empty(t, cache.added)
}

func TestRunManualNotifiesEverythingAndMarksSeen(t *testing.T) {
	s := sessionWithItems(2)
	n := &fakeNotifier{}
	cache := &fakeCache{seen: map[string]bool{detailURL(1): true}}

	h := New(testConfig(), Deps{Sessions: &fakeFactory{s: s}, Sink: &fakeSink{}, Notifier: n, Cache: cache})
	_, err := h.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	require.Len(t, n.batches, 1)
	assert.Equal(t, []string{"Item 1", "Item 2"}, n.batches[0].titles)
}
