package db

import (
	"log"
	"strconv"

	"cs2-tradeup/internal/config"
)

// LoadConfig reads config from SQLite. If empty, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["catalog_url"]; ok {
		cfg.CatalogURL = v
	}
	if v, ok := m["default_rarity"]; ok {
		cfg.DefaultRarity = v
	}
	if v, ok := m["history_limit"]; ok {
		cfg.HistoryLimit, _ = strconv.Atoi(v)
	}
	if v, ok := m["currency"]; ok {
		cfg.Currency = v
	}
	return cfg
}

// SaveConfig writes config to SQLite as key/value pairs.
func (d *DB) SaveConfig(cfg *config.Config) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}

	set := func(k, v string) {
		tx.Exec("INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", k, v)
	}
	set("catalog_url", cfg.CatalogURL)
	set("default_rarity", cfg.DefaultRarity)
	set("history_limit", strconv.Itoa(cfg.HistoryLimit))
	set("currency", cfg.Currency)

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] SaveConfig commit: %v", err)
		return err
	}
	return nil
}
