package dedup

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// SeenCache remembers which listing URLs have already been announced.
// Entries expire after 30 days so long-gone listings can re-alert if they
// ever reappear.
type SeenCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[string]int64
}

const thirtyDaysMs = int64(30 * 24 * 60 * 60 * 1000)

// NewSeenCache creates or loads the cache from cacheDir.
func NewSeenCache(cacheDir string) *SeenCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cache directory: %v", err)
	}
	cache := &SeenCache{
		filePath: filepath.Join(cacheDir, "seen_listings.json"),
		seen:     make(map[string]int64),
	}
	cache.load()
	return cache
}

// IsSeen checks if a listing URL has already been announced
func (c *SeenCache) IsSeen(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.seen[url]
	return exists
}

func (c *SeenCache) Add(urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	changed := false
	for _, url := range urls {
		if _, exists := c.seen[url]; !exists {
			c.seen[url] = now
			changed = true
		}
	}

	if changed {
		c.save()
	}
}

// load reads the cache from disk, dropping expired entries
func (c *SeenCache) load() {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read seen_listings.json: %v", err)
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ Failed to parse seen_listings.json: %v", err)
		return
	}

	thirtyDaysAgo := time.Now().UnixMilli() - thirtyDaysMs
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > thirtyDaysAgo {
			c.seen[e.URL] = e.Timestamp
			loaded++
		}
	}
	log.Printf("📋 Loaded %d previously seen listings (%d expired and removed)", loaded, len(entries)-loaded)
}

// save writes the current cache to disk
func (c *SeenCache) save() {
	entries := make([]seenEntry, 0, len(c.seen))
	for url, ts := range c.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal seen listings: %v", err)
		return
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write seen_listings.json: %v", err)
	}
}
