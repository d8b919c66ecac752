package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"cs2-tradeup/internal/api"
	"cs2-tradeup/internal/catalog"
	"cs2-tradeup/internal/db"
	"cs2-tradeup/internal/logger"
)

var version = "dev"

func main() {
	port := flag.Int("port", 8484, "HTTP server port")
	dataDir := flag.String("data", "", "data directory (default: ./data)")
	flag.Parse()

	logger.Banner(version)

	dir := *dataDir
	if dir == "" {
		wd, _ := os.Getwd()
		dir = filepath.Join(wd, "data")
	}
	os.MkdirAll(dir, 0755)

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := database.LoadConfig()
	fetcher := catalog.NewFetcher(cfg.CatalogURL)

	srv := api.NewServer(cfg, database, fetcher)

	// Load the collections catalog in the background; the API reports
	// not-ready until it lands.
	go func() {
		cat, err := catalog.Load(dir, cfg.CatalogURL)
		if err != nil {
			logger.Error("Catalog", fmt.Sprintf("Load failed: %v", err))
			return
		}
		fetcher.Seed(cat)
		srv.SetCatalog(cat)
		logger.Success("Catalog", "Calculator ready")
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
