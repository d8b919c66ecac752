package db

import (
	"log"
	"time"

	"cs2-tradeup/internal/engine"
)

// TradeUpRecord is one saved trade-up calculation (without its outcome rows).
type TradeUpRecord struct {
	ID           int64   `json:"id"`
	Timestamp    string  `json:"timestamp"`
	InputRarity  string  `json:"input_rarity"`
	OutputRarity string  `json:"output_rarity"`
	TotalCost    float64 `json:"total_cost"`
	TotalEV      float64 `json:"total_ev"`
	Profit       float64 `json:"profit"`
	ROIPercent   float64 `json:"roi_percent"`
	OutcomeCount int     `json:"outcome_count"`
}

// InsertTradeUp persists a resolved calculation and its outcome rows.
// Returns the new record ID, or 0 on failure.
func (d *DB) InsertTradeUp(calc *engine.Calculation) int64 {
	if calc == nil {
		return 0
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertTradeUp begin tx: %v", err)
		return 0
	}

	res, err := tx.Exec(`INSERT INTO tradeup_history (
		timestamp, input_rarity, output_rarity,
		total_cost, total_ev, profit, roi_percent, outcome_count
	) VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339),
		string(calc.InputRarity), string(calc.OutputRarity),
		calc.Summary.TotalCost, calc.Summary.TotalEV,
		calc.Summary.Profit, calc.Summary.ROIPercent,
		len(calc.Candidates),
	)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertTradeUp insert: %v", err)
		return 0
	}
	id, _ := res.LastInsertId()

	stmt, err := tx.Prepare(`INSERT INTO tradeup_outcomes (
		tradeup_id, name, collection_id, collection_name, probability, price, ev
	) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertTradeUp prepare: %v", err)
		return 0
	}
	defer stmt.Close()

	for _, c := range calc.Candidates {
		stmt.Exec(id, c.Name, c.CollectionID, c.CollectionName, c.Probability, c.Price, c.EV)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertTradeUp commit: %v", err)
		return 0
	}
	return id
}

// GetHistory returns the most recent saved trade-ups, newest first.
func (d *DB) GetHistory(limit int) []TradeUpRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(`
		SELECT id, timestamp, input_rarity, output_rarity,
			total_cost, total_ev, profit, roi_percent, outcome_count
		FROM tradeup_history ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var records []TradeUpRecord
	for rows.Next() {
		var r TradeUpRecord
		rows.Scan(&r.ID, &r.Timestamp, &r.InputRarity, &r.OutputRarity,
			&r.TotalCost, &r.TotalEV, &r.Profit, &r.ROIPercent, &r.OutcomeCount)
		records = append(records, r)
	}
	return records
}

// GetTradeUp returns a single saved trade-up, or nil if not found.
func (d *DB) GetTradeUp(id int64) *TradeUpRecord {
	var r TradeUpRecord
	err := d.sql.QueryRow(`
		SELECT id, timestamp, input_rarity, output_rarity,
			total_cost, total_ev, profit, roi_percent, outcome_count
		FROM tradeup_history WHERE id = ?
	`, id).Scan(&r.ID, &r.Timestamp, &r.InputRarity, &r.OutputRarity,
		&r.TotalCost, &r.TotalEV, &r.Profit, &r.ROIPercent, &r.OutcomeCount)
	if err != nil {
		return nil
	}
	return &r
}

// GetTradeUpOutcomes returns the outcome rows for a saved trade-up.
func (d *DB) GetTradeUpOutcomes(id int64) []engine.OutcomeCandidate {
	rows, err := d.sql.Query(`
		SELECT name, collection_id, collection_name, probability, price, ev
		FROM tradeup_outcomes WHERE tradeup_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var outcomes []engine.OutcomeCandidate
	for rows.Next() {
		var c engine.OutcomeCandidate
		rows.Scan(&c.Name, &c.CollectionID, &c.CollectionName, &c.Probability, &c.Price, &c.EV)
		outcomes = append(outcomes, c)
	}
	return outcomes
}

// DeleteTradeUp removes one saved trade-up and its outcome rows.
func (d *DB) DeleteTradeUp(id int64) {
	d.sql.Exec("DELETE FROM tradeup_outcomes WHERE tradeup_id = ?", id)
	d.sql.Exec("DELETE FROM tradeup_history WHERE id = ?", id)
}

// ClearHistory removes all saved trade-ups.
func (d *DB) ClearHistory() {
	d.sql.Exec("DELETE FROM tradeup_outcomes")
	d.sql.Exec("DELETE FROM tradeup_history")
}
