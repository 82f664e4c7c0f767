package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-opportunity-hunter/internal/models"
)

// JSONExporter dumps each harvest pass to a dated JSON file for offline
// inspection. Write failures are the caller's to log; nothing here is fatal
// to a pass.
type JSONExporter struct {
	dir string
}

func NewJSONExporter(dir string) *JSONExporter {
	return &JSONExporter{dir: dir}
}

// Write serializes the listings to opportunities-YYYY-MM-DD.json and
// returns the path written.
func (e *JSONExporter) Write(listings []models.EnrichedListing) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	filename := fmt.Sprintf("opportunities-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(e.dir, filename)

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal listings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}

	return path, nil
}
