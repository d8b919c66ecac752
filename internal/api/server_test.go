package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cs2-tradeup/internal/catalog"
	"cs2-tradeup/internal/config"
	"cs2-tradeup/internal/db"
	"cs2-tradeup/internal/engine"
)

func testServer() *Server {
	cat := catalog.New([]*catalog.Collection{
		{
			ID:   "dust2",
			Name: "The Dust 2 Collection",
			Items: []catalog.Item{
				{Name: "P250 | Sand Dune", Rarity: catalog.RarityMilspec},
				{Name: "M4A1-S | VariCamo", Rarity: catalog.RarityRestricted},
				{Name: "P2000 | Amber Fade", Rarity: catalog.RarityRestricted},
			},
		},
		{
			ID:   "office",
			Name: "The Office Collection",
			Items: []catalog.Item{
				{Name: "MP7 | Whiteout", Rarity: catalog.RarityMilspec},
			},
		},
	})
	srv := NewServer(config.Default(), nil, nil)
	srv.SetCatalog(cat)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	out := map[string]interface{}{}
	json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func resolveBody(collectionID string, price float64) string {
	inputs := make([]string, 0, engine.GroupSize)
	for i := 0; i < engine.GroupSize; i++ {
		inputs = append(inputs, fmt.Sprintf(`{"collection_id":%q,"price":%v}`, collectionID, price))
	}
	return fmt.Sprintf(`{"rarity":"milspec","inputs":[%s]}`, strings.Join(inputs, ","))
}

func TestHandleStatus(t *testing.T) {
	srv := testServer()
	rec, out := doJSON(t, srv, http.MethodGet, "/api/status", "")
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["ready"] != true {
		t.Errorf("ready = %v, want true", out["ready"])
	}
	if out["collections"] != float64(2) {
		t.Errorf("collections = %v, want 2", out["collections"])
	}
}

func TestHandlersNotReady(t *testing.T) {
	srv := NewServer(config.Default(), nil, nil)
	for _, path := range []string{"/api/rarities", "/api/collections", "/api/collections/dust2"} {
		rec, _ := doJSON(t, srv, http.MethodGet, path, "")
		if rec.Code != 503 {
			t.Errorf("GET %s before catalog load = %d, want 503", path, rec.Code)
		}
	}
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/tradeup", resolveBody("dust2", 1))
	if rec.Code != 503 {
		t.Errorf("POST /api/tradeup before catalog load = %d, want 503", rec.Code)
	}
}

func TestHandleRarities(t *testing.T) {
	srv := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/rarities", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var opts []rarityOption
	if err := json.NewDecoder(rec.Body).Decode(&opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Only milspec has successor outcomes in the fixture.
	if len(opts) != 1 {
		t.Fatalf("rarities = %+v, want 1 entry", opts)
	}
	if opts[0].ID != "milspec" || opts[0].Next != "restricted" {
		t.Errorf("option = %+v", opts[0])
	}
	if opts[0].Label != "Mil-Spec" || opts[0].NextLabel != "Restricted" {
		t.Errorf("labels = %q → %q", opts[0].Label, opts[0].NextLabel)
	}
}

func TestHandleCollectionsFilteredByRarity(t *testing.T) {
	srv := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/collections?rarity=restricted", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var cols []collectionSummary
	if err := json.NewDecoder(rec.Body).Decode(&cols); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cols) != 1 || cols[0].ID != "dust2" {
		t.Errorf("collections = %+v, want only dust2", cols)
	}
}

func TestTradeUpFlow_ResolveThenPrice(t *testing.T) {
	srv := testServer()

	rec, out := doJSON(t, srv, http.MethodPost, "/api/tradeup", resolveBody("dust2", 5))
	if rec.Code != 200 {
		t.Fatalf("resolve status = %d, body %s", rec.Code, rec.Body.String())
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatal("resolve returned no session id")
	}
	calcOut := out["calculation"].(map[string]interface{})
	summary := calcOut["summary"].(map[string]interface{})
	if summary["total_cost"] != float64(50) {
		t.Errorf("total_cost = %v, want 50", summary["total_cost"])
	}
	if summary["roi_percent"] != float64(-100) {
		t.Errorf("initial roi = %v, want -100", summary["roi_percent"])
	}

	// Hypothetical sale price on the first candidate.
	rec, out = doJSON(t, srv, http.MethodPost, "/api/tradeup/"+id+"/price", `{"index":0,"price":80}`)
	if rec.Code != 200 {
		t.Fatalf("price status = %d, body %s", rec.Code, rec.Body.String())
	}
	summary = out["summary"].(map[string]interface{})
	if summary["total_ev"] != float64(40) { // p=0.5 × $80
		t.Errorf("total_ev = %v, want 40", summary["total_ev"])
	}

	// Session is retrievable and deletable.
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/tradeup/"+id, "")
	if rec.Code != 200 {
		t.Errorf("get session = %d, want 200", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/tradeup/"+id, "")
	if rec.Code != 200 {
		t.Errorf("delete session = %d, want 200", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/tradeup/"+id, "")
	if rec.Code != 404 {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestTradeUpValidationErrors(t *testing.T) {
	srv := testServer()

	// Incomplete input: a zero price.
	body := strings.Replace(resolveBody("dust2", 5), `"price":5}]`, `"price":0}]`, 1)
	rec, out := doJSON(t, srv, http.MethodPost, "/api/tradeup", body)
	if rec.Code != 400 {
		t.Errorf("zero price status = %d, want 400", rec.Code)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "price") {
		t.Errorf("error = %q, want a price message", msg)
	}

	// No outcomes: collection with nothing at the next tier.
	rec, out = doJSON(t, srv, http.MethodPost, "/api/tradeup", resolveBody("office", 5))
	if rec.Code != 422 {
		t.Errorf("no outcomes status = %d, want 422", rec.Code)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "outcome") {
		t.Errorf("error = %q, want a no-outcomes message", msg)
	}

	// Unknown rarity string.
	rec, _ = doJSON(t, srv, http.MethodPost, "/api/tradeup", `{"rarity":"gold","inputs":[]}`)
	if rec.Code != 400 {
		t.Errorf("unknown rarity status = %d, want 400", rec.Code)
	}
}

func TestConcurrentPriceEditsStayConsistent(t *testing.T) {
	srv := testServer()

	_, out := doJSON(t, srv, http.MethodPost, "/api/tradeup", resolveBody("dust2", 5))
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatal("resolve returned no session id")
	}

	// Hammer both candidates from many goroutines; edits are serialized
	// per session, so the final summary must match a clean recompute of
	// whatever prices won.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"index":%d,"price":%d}`, n%2, 10+n)
			rec, _ := doJSON(t, srv, http.MethodPost, "/api/tradeup/"+id+"/price", body)
			if rec.Code != 200 {
				t.Errorf("price edit status = %d", rec.Code)
			}
		}(i)
	}
	wg.Wait()

	rec, out := doJSON(t, srv, http.MethodGet, "/api/tradeup/"+id, "")
	if rec.Code != 200 {
		t.Fatalf("get session = %d, want 200", rec.Code)
	}
	candidates := out["candidates"].([]interface{})
	wantEV := 0.0
	for _, raw := range candidates {
		c := raw.(map[string]interface{})
		p := c["probability"].(float64)
		price := c["price"].(float64)
		if ev := c["ev"].(float64); ev != p*price {
			t.Errorf("candidate ev = %v, want %v", ev, p*price)
		}
		wantEV += p * price
	}
	summary := out["summary"].(map[string]interface{})
	if got := summary["total_ev"].(float64); got != wantEV {
		t.Errorf("total_ev = %v, want %v", got, wantEV)
	}
}

func TestHandleSetConfig_PersistsToDB(t *testing.T) {
	t.Chdir(t.TempDir())
	database, err := db.Open()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()

	srv := NewServer(database.LoadConfig(), database, nil)
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/config", `{"default_rarity":"restricted","history_limit":10}`)
	if rec.Code != 200 {
		t.Fatalf("POST /api/config status = %d", rec.Code)
	}

	got := database.LoadConfig()
	if got.DefaultRarity != "restricted" || got.HistoryLimit != 10 {
		t.Errorf("persisted config = %+v", got)
	}
}

func TestHandleGetConfig_ReturnsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultRarity = "restricted"
	srv := NewServer(cfg, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/config status = %d, want 200", rec.Code)
	}
	var out config.Config
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if out.DefaultRarity != "restricted" {
		t.Errorf("config = %+v", out)
	}
}

func TestHistoryEndpointsWithoutDB(t *testing.T) {
	srv := testServer()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/history"},
		{http.MethodGet, "/api/history/1"},
		{http.MethodDelete, "/api/history/1"},
		{http.MethodPost, "/api/history/clear"},
	} {
		rec, _ := doJSON(t, srv, tc.method, tc.path, "")
		if rec.Code != 503 {
			t.Errorf("%s %s without db = %d, want 503", tc.method, tc.path, rec.Code)
		}
	}
}
