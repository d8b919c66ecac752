package catalog

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// fallbackTTL is used when the catalog host sends no Expires header. The
// collections data changes at most a few times per year.
const fallbackTTL = time.Hour

// Fetcher downloads the collections catalog over HTTP with ETag/Expires
// support. A singleflight.Group coalesces concurrent refresh requests so a
// burst of refresh clicks triggers a single download.
type Fetcher struct {
	URL  string
	HTTP *http.Client

	mu      sync.RWMutex
	cached  *Catalog
	etag    string
	expires time.Time
	group   singleflight.Group
}

// NewFetcher creates a fetcher for the given catalog URL.
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		URL:  url,
		HTTP: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the current catalog:
//  1. Cached and not expired → instant return
//  2. Expired with a known ETag → conditional request (If-None-Match);
//     304 refreshes the expiry without a body transfer
//  3. Otherwise → full download and re-parse
func (f *Fetcher) Fetch() (*Catalog, error) {
	f.mu.RLock()
	if f.cached != nil && time.Now().Before(f.expires) {
		cat := f.cached
		f.mu.RUnlock()
		return cat, nil
	}
	f.mu.RUnlock()

	result, err, _ := f.group.Do("catalog", func() (interface{}, error) {
		return f.fetch()
	})
	if err != nil {
		return nil, err
	}
	return result.(*Catalog), nil
}

func (f *Fetcher) fetch() (*Catalog, error) {
	f.mu.RLock()
	cached, etag := f.cached, f.etag
	f.mu.RUnlock()

	req, err := http.NewRequest("GET", f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cached != nil && etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	expires := parseExpires(resp)

	if resp.StatusCode == 304 && cached != nil {
		f.mu.Lock()
		f.expires = expires
		f.mu.Unlock()
		return cached, nil
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("catalog fetch: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	cat, err := Parse(body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cached = cat
	f.etag = resp.Header.Get("ETag")
	f.expires = expires
	f.mu.Unlock()
	return cat, nil
}

// Seed primes the cache with an already-loaded catalog (e.g. from disk) so
// the first refresh can use a conditional request path once an ETag is known.
func (f *Fetcher) Seed(cat *Catalog) {
	f.mu.Lock()
	f.cached = cat
	f.mu.Unlock()
}

func parseExpires(resp *http.Response) time.Time {
	if exp := resp.Header.Get("Expires"); exp != "" {
		if t, err := time.Parse(time.RFC1123, exp); err == nil {
			return t
		}
	}
	return time.Now().Add(fallbackTTL)
}
