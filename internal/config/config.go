package config

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	CatalogURL    string `json:"catalog_url"`
	DefaultRarity string `json:"default_rarity"`
	HistoryLimit  int    `json:"history_limit"`
	Currency      string `json:"currency"`
}

// Default returns a Config with sensible defaults. Mil-Spec is the most
// common trade-up entry point, so it is the default selected tier.
func Default() *Config {
	return &Config{
		CatalogURL:    "https://cs2tradeup.com/data/collections.json",
		DefaultRarity: "milspec",
		HistoryLimit:  50,
		Currency:      "$",
	}
}
