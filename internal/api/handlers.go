package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cs2-tradeup/internal/catalog"
	"cs2-tradeup/internal/db"
	"cs2-tradeup/internal/engine"
	"cs2-tradeup/internal/logger"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cat, _, ready := s.snapshot()
	resp := map[string]interface{}{"ready": ready}
	if ready {
		resp["collections"] = cat.Len()
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := *s.cfg
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, 400, "invalid config payload")
		return
	}
	*s.cfg = cfg
	if s.db != nil {
		if err := s.db.SaveConfig(s.cfg); err != nil {
			logger.Warn("Config", "Persist failed: "+err.Error())
		}
	}
	writeJSON(w, s.cfg)
}

// rarityOption is one entry of the tier selector: an input grade plus the
// grade a trade-up at that tier produces.
type rarityOption struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	Next      string `json:"next"`
	NextLabel string `json:"next_label"`
	NextColor string `json:"next_color"`
}

func (s *Server) handleRarities(w http.ResponseWriter, r *http.Request) {
	cat, _, ready := s.snapshot()
	if !ready {
		writeError(w, 503, "catalog is still loading")
		return
	}
	opts := []rarityOption{}
	for _, rar := range cat.AvailableRarities() {
		next, _ := rar.Next()
		opts = append(opts, rarityOption{
			ID:        string(rar),
			Label:     rar.Label(),
			Color:     rar.Color(),
			Next:      string(next),
			NextLabel: next.Label(),
			NextColor: next.Color(),
		})
	}
	writeJSON(w, opts)
}

// collectionSummary omits the item list for the collection picker.
type collectionSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	cat, _, ready := s.snapshot()
	if !ready {
		writeError(w, 503, "catalog is still loading")
		return
	}
	cols := cat.Collections()
	if q := r.URL.Query().Get("rarity"); q != "" {
		cols = cat.CollectionsWithRarity(catalog.Rarity(q))
	}
	out := []collectionSummary{}
	for _, c := range cols {
		out = append(out, collectionSummary{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, out)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	cat, _, ready := s.snapshot()
	if !ready {
		writeError(w, 503, "catalog is still loading")
		return
	}
	col := cat.Collection(r.PathValue("id"))
	if col == nil {
		writeError(w, 404, "collection not found")
		return
	}
	writeJSON(w, map[string]interface{}{
		"id":            col.ID,
		"name":          col.Name,
		"items":         col.Items,
		"rarities":      col.Rarities(),
		"tradeup_pairs": col.TradeUpPairs(),
	})
}

type resolveRequest struct {
	Rarity string            `json:"rarity"`
	Inputs []engine.InputRow `json:"inputs"`
}

type resolveResponse struct {
	ID          string             `json:"id"`
	Calculation engine.Calculation `json:"calculation"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	_, calc, ready := s.snapshot()
	if !ready {
		writeError(w, 503, "catalog is still loading")
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid trade-up payload")
		return
	}
	rarity := catalog.Rarity(req.Rarity)
	if !rarity.Known() {
		writeError(w, 400, "unknown rarity tier: "+req.Rarity)
		return
	}

	result, err := calc.Resolve(rarity, req.Inputs)
	switch {
	case errors.Is(err, engine.ErrIncompleteInput):
		writeError(w, 400, err.Error())
		return
	case errors.Is(err, engine.ErrNoOutcomes):
		writeError(w, 422, err.Error())
		return
	case err != nil:
		writeError(w, 500, err.Error())
		return
	}

	id := s.putSession(result)
	writeJSON(w, resolveResponse{ID: id, Calculation: result.Snapshot()})
}

func (s *Server) handleGetTradeUp(w http.ResponseWriter, r *http.Request) {
	snap, ok, _ := s.withSession(r.PathValue("id"), nil)
	if !ok {
		writeError(w, 404, "trade-up session not found")
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleDeleteTradeUp(w http.ResponseWriter, r *http.Request) {
	s.deleteSession(r.PathValue("id"))
	writeJSON(w, map[string]bool{"ok": true})
}

type setPriceRequest struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid price payload")
		return
	}
	snap, ok, err := s.withSession(r.PathValue("id"), func(calc *engine.Calculation) error {
		return calc.SetPrice(req.Index, req.Price)
	})
	if !ok {
		writeError(w, 404, "trade-up session not found")
		return
	}
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSaveTradeUp(w http.ResponseWriter, r *http.Request) {
	snap, ok, _ := s.withSession(r.PathValue("id"), nil)
	if !ok {
		writeError(w, 404, "trade-up session not found")
		return
	}
	if s.db == nil {
		writeError(w, 503, "history storage unavailable")
		return
	}
	id := s.db.InsertTradeUp(&snap)
	if id == 0 {
		writeError(w, 500, "failed to save trade-up")
		return
	}
	writeJSON(w, map[string]int64{"id": id})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, 503, "history storage unavailable")
		return
	}
	limit := s.cfg.HistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			limit = n
		}
	}
	records := s.db.GetHistory(limit)
	if records == nil {
		records = []db.TradeUpRecord{}
	}
	writeJSON(w, records)
}

func (s *Server) handleGetHistoryByID(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, 503, "history storage unavailable")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, 400, "invalid history id")
		return
	}
	record := s.db.GetTradeUp(id)
	if record == nil {
		writeError(w, 404, "trade-up not found")
		return
	}
	writeJSON(w, map[string]interface{}{
		"record":   record,
		"outcomes": s.db.GetTradeUpOutcomes(id),
	})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, 503, "history storage unavailable")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, 400, "invalid history id")
		return
	}
	s.db.DeleteTradeUp(id)
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, 503, "history storage unavailable")
		return
	}
	s.db.ClearHistory()
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, 503, "catalog refresh unavailable")
		return
	}
	cat, err := s.fetcher.Fetch()
	if err != nil {
		logger.Error("Catalog", "Refresh failed: "+err.Error())
		writeError(w, 502, "catalog refresh failed: "+err.Error())
		return
	}
	s.SetCatalog(cat)
	logger.Success("Catalog", "Refreshed")
	writeJSON(w, map[string]interface{}{"ok": true, "collections": cat.Len()})
}
