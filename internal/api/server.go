package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"cs2-tradeup/internal/catalog"
	"cs2-tradeup/internal/config"
	"cs2-tradeup/internal/db"
	"cs2-tradeup/internal/engine"

	"github.com/google/uuid"
)

// Server is the HTTP API that connects the catalog, the trade-up engine,
// and the database.
type Server struct {
	cfg     *config.Config
	db      *db.DB
	fetcher *catalog.Fetcher

	mu    sync.RWMutex
	cat   *catalog.Catalog
	calc  *engine.Calculator
	ready bool

	// Active calculations keyed by session ID. A calculation stays editable
	// (outcome price updates) until deleted or replaced by the client.
	sessMu   sync.Mutex
	sessions map[string]*engine.Calculation
}

// NewServer creates a Server with the given config, database, and fetcher.
func NewServer(cfg *config.Config, database *db.DB, fetcher *catalog.Fetcher) *Server {
	return &Server{
		cfg:      cfg,
		db:       database,
		fetcher:  fetcher,
		sessions: make(map[string]*engine.Calculation),
	}
}

// SetCatalog is called when catalog data finishes loading.
func (s *Server) SetCatalog(cat *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = cat
	s.calc = engine.NewCalculator(cat)
	s.ready = true
}

func (s *Server) snapshot() (*catalog.Catalog, *engine.Calculator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat, s.calc, s.ready
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/rarities", s.handleRarities)
	mux.HandleFunc("GET /api/collections", s.handleCollections)
	mux.HandleFunc("GET /api/collections/{id}", s.handleCollection)
	mux.HandleFunc("POST /api/tradeup", s.handleResolve)
	mux.HandleFunc("GET /api/tradeup/{id}", s.handleGetTradeUp)
	mux.HandleFunc("DELETE /api/tradeup/{id}", s.handleDeleteTradeUp)
	mux.HandleFunc("POST /api/tradeup/{id}/price", s.handleSetPrice)
	mux.HandleFunc("POST /api/tradeup/{id}/save", s.handleSaveTradeUp)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistoryByID)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteHistory)
	mux.HandleFunc("POST /api/history/clear", s.handleClearHistory)
	mux.HandleFunc("POST /api/catalog/refresh", s.handleCatalogRefresh)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func newSessionID() string {
	return uuid.NewString()
}

func (s *Server) putSession(calc *engine.Calculation) string {
	id := newSessionID()
	s.sessMu.Lock()
	s.sessions[id] = calc
	s.sessMu.Unlock()
	return id
}

// withSession runs fn on a stored calculation while holding sessMu, so
// price edits and reads of the same session never interleave. The returned
// snapshot is detached and safe to serialize after the lock is released.
// ok is false if the session does not exist.
func (s *Server) withSession(id string, fn func(*engine.Calculation) error) (snap engine.Calculation, ok bool, err error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	calc := s.sessions[id]
	if calc == nil {
		return engine.Calculation{}, false, nil
	}
	if fn != nil {
		if err := fn(calc); err != nil {
			return engine.Calculation{}, true, err
		}
	}
	return calc.Snapshot(), true, nil
}

func (s *Server) deleteSession(id string) {
	s.sessMu.Lock()
	delete(s.sessions, id)
	s.sessMu.Unlock()
}
