package location

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/wakewatch/wakewatch/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	cityCacheTTL       = 24 * time.Hour
	cityLocatorTimeout = 10 * time.Second
)

// defaultCities is the fallback reference list when the store locator is
// unreachable.
var defaultCities = []string{
	"Raleigh",
	"Cary",
	"Apex",
	"Wake Forest",
	"Garner",
	"Holly Springs",
	"Morrisville",
	"Fuquay Varina",
	"Knightdale",
	"Wendell",
	"Zebulon",
	"Rolesville",
}

type storeRecord struct {
	City string `json:"city"`
}

// CityCache caches the store-locator city list for a fixed TTL so the
// classifier doesn't hammer the locator endpoint on every location string.
type CityCache struct {
	log        *zap.Logger
	transport  http.RoundTripper
	locatorURL string
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	cities    []string
	fetchedAt time.Time
}

func NewCityCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, transport http.RoundTripper) *CityCache {
	return &CityCache{
		log:        log,
		transport:  transport,
		locatorURL: cfg.StoreLocatorURL,
		ttl:        cityCacheTTL,
		now:        time.Now,
	}
}

// Cities returns the cached city list, refreshing it when the cache is
// older than the TTL. A failed refresh falls back to the default list
// without poisoning the cache, so the next call retries.
func (c *CityCache) Cities(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cities != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cities
	}

	cities, err := c.refresh(ctx)
	if err != nil {
		c.log.Sugar().Warnf("Failed to fetch store locations: %v", err)
		return defaultCities
	}

	c.cities = cities
	c.fetchedAt = c.now()
	return c.cities
}

func (c *CityCache) refresh(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, cityLocatorTimeout)
	defer cancel()

	var stores []storeRecord
	err := requests.URL(c.locatorURL).
		Transport(c.transport).
		ToJSON(&stores).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	cities := make([]string, 0, len(stores))
	for _, store := range stores {
		city := strings.TrimSpace(store.City)
		switch city {
		case "", "North Carolina", "NC", "United States":
			continue
		}
		if !seen[city] {
			seen[city] = true
			cities = append(cities, city)
		}
	}
	sort.Strings(cities)

	c.log.Sugar().Debugf("Fetched %d store cities", len(cities))
	return cities, nil
}
