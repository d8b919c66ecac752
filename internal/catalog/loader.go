package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"cs2-tradeup/internal/logger"
)

// Parse decodes a collections.json payload into a catalog. Collections
// without an ID are dropped; items with unrecognized rarity strings are kept
// as-is and simply never match grade queries.
func Parse(data []byte) (*Catalog, error) {
	var collections []*Collection
	if err := json.Unmarshal(data, &collections); err != nil {
		return nil, fmt.Errorf("parse collections: %w", err)
	}
	kept := collections[:0]
	for _, c := range collections {
		// A JSON null element decodes to a nil *Collection.
		if c == nil || c.ID == "" {
			continue
		}
		kept = append(kept, c)
	}
	return New(kept), nil
}

// Load reads collections.json from dataDir, downloading it from url first if
// the file does not exist yet.
func Load(dataDir, url string) (*Catalog, error) {
	path := filepath.Join(dataDir, "collections.json")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Catalog", "Downloading collections data...")
		if err := downloadFile(path, url); err != nil {
			return nil, fmt.Errorf("download catalog: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, err
	}

	items := 0
	for _, c := range cat.Collections() {
		items += len(c.Items)
	}
	logger.Section("Catalog Statistics")
	logger.Stats("Collections", cat.Len())
	logger.Stats("Items", items)
	logger.Stats("Tradeable tiers", len(cat.AvailableRarities()))
	return cat, nil
}

func downloadFile(dst, url string) error {
	os.MkdirAll(filepath.Dir(dst), 0755)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}
