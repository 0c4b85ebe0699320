package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const searchResultsPage = `<html><body>
<div id="productSearchResults">
  <div class="wake-product">
    <h4>Blanton's Single Barrel</h4>
    <small>PLU: 12345</small>
    <span class="price">$74.99</span>
    <span class="size">750ml</span>
    <div class="inventory-collapse">
      <ul>
        <li>
          <span class="address">123 Main St.<br />Raleigh, NC 27601</span>
          <span class="quantity">5 in stock</span>
        </li>
        <li>
          <span class="address">456 Oak Ave<br />Cary, NC 27511</span>
          <span class="quantity">2 in stock</span>
        </li>
      </ul>
    </div>
  </div>
  <div class="wake-product">
    <h4>Eagle Rare 10 Year</h4>
    <small>PLU: 67890</small>
    <span class="price">$39.99</span>
    <span class="size">750ml</span>
    <p class="out-of-stock">Out of stock at all locations</p>
  </div>
  <div class="wake-product">
    <small>No PLU here</small>
  </div>
</div>
</body></html>`

const noResultsPage = `<html><body>
<div id="productSearchResults">
  <p>Sorry, your search did not return any results.</p>
</div>
</body></html>`

func newTestExtractor(searchURL string) *Extractor {
	return &Extractor{
		log:       zap.NewNop(),
		searchURL: searchURL,
		timeout:   5 * time.Second,
		transport: http.DefaultTransport,
	}
}

func TestSearch_ExtractsRecords(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.FormValue("productSearch")
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	records, err := newTestExtractor(srv.URL).Search(context.Background(), "blanton's", 10)
	require.NoError(t, err)
	assert.Equal(t, "blanton's", gotQuery)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "Blanton's Single Barrel", first.Name)
	assert.Equal(t, "12345", first.Code)
	assert.Equal(t, "$74.99", first.Price)
	assert.Equal(t, "750ml", first.Size)
	assert.Equal(t, "In Stock", first.Availability)
	assert.Equal(t, []string{
		"123 Main St.Raleigh, NC 27601 - 5 in stock",
		"456 Oak AveCary, NC 27511 - 2 in stock",
	}, first.Locations)

	second := records[1]
	assert.Equal(t, "Eagle Rare 10 Year", second.Name)
	assert.Equal(t, "Out of Stock", second.Availability)
	assert.Empty(t, second.Locations)

	third := records[2]
	assert.Equal(t, "Unknown Product", third.Name)
	assert.Equal(t, "", third.Code)
	assert.Equal(t, "Price N/A", third.Price)
	assert.Equal(t, "Size N/A", third.Size)
	assert.Equal(t, "Unknown Stock", third.Availability)
	assert.Empty(t, third.Locations)
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	records, err := newTestExtractor(srv.URL).Search(context.Background(), "blanton's", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(noResultsPage))
	}))
	defer srv.Close()

	records, err := newTestExtractor(srv.URL).Search(context.Background(), "unobtainium", 10)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_MissingContainerIsPageShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Down for maintenance</h1></body></html>`))
	}))
	defer srv.Close()

	records, err := newTestExtractor(srv.URL).Search(context.Background(), "blanton's", 10)
	assert.ErrorIs(t, err, ErrPageShape)
	assert.Empty(t, records)
}

func TestSearch_NetworkFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	records, err := newTestExtractor(srv.URL).Search(context.Background(), "blanton's", 10)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Empty(t, records)
}

func TestSearch_EmptyQuerySkipsFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	records, err := newTestExtractor(srv.URL).Search(context.Background(), "   ", 10)
	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(0), calls.Load())
}
