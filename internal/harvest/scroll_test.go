package harvest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession implements browser.Session against canned pages. Height can be
// fixed or derived from how far we've scrolled to simulate lazy loading.
type fakeSession struct {
	mu       sync.Mutex
	pages    map[string]string //url -> html served after navigating there
	failNav  map[string]error
	html     string
	height   int
	heightFn func(scrolled int) int
	waitErr  error
	scrolled int
	navs     []string
	closed   bool
}

func (s *fakeSession) Navigate(url string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navs = append(s.navs, url)
	if err, ok := s.failNav[url]; ok {
		return err
	}
	s.html = s.pages[url]
	return nil
}

func (s *fakeSession) WaitForSelector(string, time.Duration) error {
	return s.waitErr
}

func (s *fakeSession) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html, nil
}

func (s *fakeSession) ScrollBy(px int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrolled += px
	return nil
}

func (s *fakeSession) ScrollHeight() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.heightFn != nil {
		return s.heightFn(s.scrolled), nil
	}
	return s.height, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func quickScroll() scrollOptions {
	return scrollOptions{
		step:     100,
		interval: time.Millisecond,
		settle:   time.Millisecond,
		budget:   2 * time.Second,
	}
}

func TestLoadFullListingStableHeight(t *testing.T) {
	s := &fakeSession{height: 300}

	err := loadFullListing(context.Background(), s, quickScroll())
	require.NoError(t, err)
	assert.Equal(t, 300, s.scrolled)
}

func TestLoadFullListingGrowingHeight(t *testing.T) {
	//content keeps appending until 800px, then stops growing
	s := &fakeSession{heightFn: func(scrolled int) int {
		h := 400 + scrolled
		if h > 800 {
			h = 800
		}
		return h
	}}

	err := loadFullListing(context.Background(), s, quickScroll())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.scrolled, 800)
}

func TestLoadFullListingBudgetExceeded(t *testing.T) {
	//height always stays ahead of the scroll position
	s := &fakeSession{heightFn: func(scrolled int) int {
		return scrolled + 1000
	}}

	o := quickScroll()
	o.budget = 20 * time.Millisecond
	err := loadFullListing(context.Background(), s, o)
	assert.ErrorIs(t, err, ErrRenderTimeout)
}

func TestLoadFullListingCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSession{height: 10000}
	err := loadFullListing(ctx, s, quickScroll())
	assert.True(t, errors.Is(err, context.Canceled))
}
