package imageio

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yyyoichi/httpcache-go"
)

const DefaultCacheDir = "/tmp/lsbsteg_http_cache/"

// IsURL reports whether src should be fetched rather than opened.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// rateLimitedClient wraps an HTTP client with a minimum interval between requests.
// Thread-safe for concurrent requests.
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elapsed := time.Since(r.lastCall); elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}
	resp, err := r.client.Do(req)
	r.lastCall = time.Now()
	return resp, err
}

// Fetcher downloads carrier images, caching responses on disk.
type Fetcher struct {
	client httpcache.Client
}

// NewFetcher returns a Fetcher caching into dir and waiting at least
// interval between requests that miss the cache.
func NewFetcher(dir string, interval time.Duration) *Fetcher {
	if dir == "" {
		dir = DefaultCacheDir
	}
	return &Fetcher{
		client: httpcache.Client{
			Client:  &rateLimitedClient{client: http.DefaultClient, interval: interval},
			Cache:   httpcache.NewStorageCache(dir),
			Handler: httpcache.NewDefaultHandler(),
		},
	}
}

// Fetch downloads and decodes the image at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	img, _, err := Decode(resp.Body)
	return img, err
}
