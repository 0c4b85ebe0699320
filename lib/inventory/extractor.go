package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/carlmjohnson/requests"
	"github.com/wakewatch/wakewatch/config"
	"github.com/wakewatch/wakewatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	// ErrFetch is a network/transport failure talking to the retailer.
	// Callers treat it as "no data this cycle", never as "item disappeared".
	ErrFetch = errors.New("inventory fetch failed")

	// ErrPageShape means the expected results container is missing, which
	// is distinct from a genuinely empty result set.
	ErrPageShape = errors.New("unrecognised search results page")
)

const (
	noResultsMarker   = "Sorry, your search did not return any results"
	DefaultMaxResults = 10
)

// Extractor turns one retailer search response into structured records.
// It has no knowledge of subscribers.
type Extractor struct {
	log       *zap.Logger
	searchURL string
	timeout   time.Duration
	transport http.RoundTripper
}

func NewExtractor(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, transport http.RoundTripper) *Extractor {
	return &Extractor{
		log:       log,
		searchURL: cfg.SearchURL,
		timeout:   cfg.FetchTimeout(),
		transport: transport,
	}
}

// Search queries the retailer and extracts up to maxResults records in
// document order. An empty or whitespace-only query short-circuits with
// no network call.
func (e *Extractor) Search(ctx context.Context, query string, maxResults int) (models.InventoryRecords, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		e.log.Sugar().Warn("Empty search query provided")
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var page string
	err := requests.URL(e.searchURL).
		Transport(e.transport).
		BodyForm(url.Values{"productSearch": {query}}).
		ToString(&page).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	doc, err := htmlquery.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageShape, err)
	}

	records, err := e.extractRecords(doc, query, maxResults)
	if err != nil {
		return nil, err
	}
	e.log.Sugar().Infof("Found %d items for query '%s'", len(records), query)
	return records, nil
}

func (e *Extractor) extractRecords(doc *html.Node, query string, maxResults int) (models.InventoryRecords, error) {
	container := htmlquery.FindOne(doc, `//div[@id="productSearchResults"]`)
	if container == nil {
		return nil, fmt.Errorf("%w: missing productSearchResults container", ErrPageShape)
	}

	if strings.Contains(collectText(container), noResultsMarker) {
		e.log.Sugar().Infof("No results found for query '%s'", query)
		return nil, nil
	}

	blocks := htmlquery.Find(container, `//div[contains(@class, "wake-product")]`)
	if len(blocks) == 0 {
		e.log.Sugar().Warn("No product blocks found in search results")
		return nil, nil
	}
	if len(blocks) > maxResults {
		blocks = blocks[:maxResults]
	}

	records := make(models.InventoryRecords, 0, len(blocks))
	for _, block := range blocks {
		records = append(records, e.extractRecord(block))
	}
	return records, nil
}

func (e *Extractor) extractRecord(block *html.Node) models.InventoryRecord {
	name := selectText(block, `//h4`)
	if name == "" {
		name = "Unknown Product"
	}

	code := ""
	if annotation := selectText(block, `//small`); strings.Contains(annotation, "PLU:") {
		code = strings.TrimSpace(strings.ReplaceAll(annotation, "PLU:", ""))
	}

	price := selectText(block, `//span[contains(@class, "price")]`)
	if price == "" {
		price = "Price N/A"
	}
	size := selectText(block, `//span[contains(@class, "size")]`)
	if size == "" {
		size = "Size N/A"
	}

	availability, locations := e.extractLocations(block)

	return models.InventoryRecord{
		Name:         name,
		Code:         code,
		Size:         size,
		Price:        price,
		Availability: availability,
		Locations:    locations,
	}
}

func (e *Extractor) extractLocations(block *html.Node) (string, []string) {
	if htmlquery.FindOne(block, `//p[contains(@class, "out-of-stock")]`) != nil {
		return "Out of Stock", nil
	}

	var locations []string
	if inv := htmlquery.FindOne(block, `//div[contains(@class, "inventory-collapse")]`); inv != nil {
		for _, item := range htmlquery.Find(inv, `//li`) {
			address := selectText(item, `//span[contains(@class, "address")]`)
			quantity := selectText(item, `//span[contains(@class, "quantity")]`)
			if address != "" && quantity != "" {
				locations = append(locations, fmt.Sprintf("%s - %s", address, quantity))
			}
		}
	}

	if len(locations) > 0 {
		return "In Stock", locations
	}
	return "Unknown Stock", nil
}
