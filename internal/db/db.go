package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cs2-tradeup/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "tradeup.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "tradeup.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	path := dbPath()
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS tradeup_history (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp     TEXT NOT NULL,
				input_rarity  TEXT NOT NULL,
				output_rarity TEXT NOT NULL,
				total_cost    REAL NOT NULL,
				total_ev      REAL NOT NULL,
				profit        REAL NOT NULL,
				roi_percent   REAL NOT NULL,
				outcome_count INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_tradeup_history_ts ON tradeup_history(timestamp);

			CREATE TABLE IF NOT EXISTS tradeup_outcomes (
				id              INTEGER PRIMARY KEY AUTOINCREMENT,
				tradeup_id      INTEGER NOT NULL REFERENCES tradeup_history(id),
				name            TEXT NOT NULL,
				collection_id   TEXT NOT NULL,
				collection_name TEXT NOT NULL,
				probability     REAL NOT NULL,
				price           REAL NOT NULL,
				ev              REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_tradeup_outcomes_parent ON tradeup_outcomes(tradeup_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}
