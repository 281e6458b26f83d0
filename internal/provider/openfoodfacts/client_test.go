package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBarcodePrefersServingValues(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/12345678.json", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "fitlog")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": "Yogurt Cup",
    "brands": "Brand Co, Parent Co",
    "serving_size": "170 g",
    "nutriments": {
      "energy-kcal_serving": 120,
      "energy-kcal_100g": 70.5,
      "proteins_serving": "10",
      "carbohydrates_serving": 15,
      "fat_serving": 2
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, err := c.LookupBarcode(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, FoodLookup{
		Barcode:     "12345678",
		Name:        "Yogurt Cup",
		Brand:       "Brand Co",
		ServingSize: "170 g",
		Calories:    120,
		ProteinG:    10,
		CarbsG:      15,
		FatsG:       2,
	}, item)
	assert.Equal(t, "Yogurt Cup (Brand Co)", item.DisplayName())
}

func TestLookupBarcodeFallsBackTo100g(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"code":"999","product_name":"Rolled Oats","nutriments":{"energy-kcal_100g":379,"proteins_100g":13.2,"carbohydrates_100g":67.7,"fat_100g":6.5}}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, err := c.LookupBarcode(context.Background(), "999")
	require.NoError(t, err)
	assert.Equal(t, "100 g", item.ServingSize)
	assert.InDelta(t, 379, item.Calories, 0.001)
	assert.InDelta(t, 6.5, item.FatsG, 0.001)
	assert.Equal(t, "Rolled Oats", item.DisplayName())
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.LookupBarcode(context.Background(), "000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSearchFoodsSkipsUnnamedProducts(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		assert.Equal(t, "greek yogurt", r.URL.Query().Get("search_terms"))
		assert.Equal(t, "5", r.URL.Query().Get("page_size"))
		_, _ = w.Write([]byte(`{"products":[
  {"code":"1","product_name":"Greek Yogurt","nutriments":{"energy-kcal_100g":97}},
  {"code":"2","product_name":""},
  {"code":"3","product_name":"Greek Yogurt Honey","serving_size":"150 g","nutriments":{"energy-kcal_serving":160}}
]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.SearchFoods(context.Background(), " greek yogurt ", 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].Barcode)
	assert.Equal(t, "100 g", items[0].ServingSize)
	assert.Equal(t, "150 g", items[1].ServingSize)
	assert.InDelta(t, 160, items[1].Calories, 0.001)
}

func TestSearchFoodsHTTPError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.SearchFoods(context.Background(), "oats", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
