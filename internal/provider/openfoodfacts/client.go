// Package openfoodfacts looks up packaged foods in the Open Food Facts
// database so they can be added to the local food catalog.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://world.openfoodfacts.org"

const userAgent = "fitlog/1.0 (+https://github.com/RaPidRare/Fitness-and-Nutrition-Tracker)"

var ErrNotFound = errors.New("no openfoodfacts product found")

// FoodLookup holds per-serving nutrients. When a product has no serving
// data the values are per 100 g and ServingSize says so.
type FoodLookup struct {
	Barcode     string
	Name        string
	Brand       string
	ServingSize string
	Calories    float64
	ProteinG    float64
	CarbsG      float64
	FatsG       float64
}

// DisplayName is the catalog name for the product: "Name (Brand)" when the
// brand is known.
func (f FoodLookup) DisplayName() string {
	if f.Brand == "" {
		return f.Name
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Brand)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (FoodLookup, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return FoodLookup{}, fmt.Errorf("barcode is required")
	}
	var parsed offResponse
	if err := c.getJSON(ctx, "/api/v2/product/"+url.PathEscape(barcode)+".json", &parsed); err != nil {
		return FoodLookup{}, err
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return FoodLookup{}, fmt.Errorf("%w for barcode %q", ErrNotFound, barcode)
	}
	item := parsed.Product.lookup()
	if item.Barcode == "" {
		item.Barcode = barcode
	}
	return item, nil
}

func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]FoodLookup, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("search_terms", strings.TrimSpace(query))
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(limit))

	var parsed offSearchResponse
	if err := c.getJSON(ctx, "/cgi/search.pl?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}
	out := make([]FoodLookup, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, p.lookup())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for query %q", ErrNotFound, query)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	return nil
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}

type offProduct struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	ServingSize string         `json:"serving_size"`
	Nutriments  map[string]any `json:"nutriments"`
}

func (p offProduct) lookup() FoodLookup {
	item := FoodLookup{
		Barcode: strings.TrimSpace(p.Code),
		Name:    strings.TrimSpace(p.ProductName),
		Brand:   firstBrand(p.Brands),
	}
	suffix := "_serving"
	if _, ok := parseFloatAny(p.Nutriments["energy-kcal"+suffix]); ok {
		item.ServingSize = strings.TrimSpace(p.ServingSize)
		if item.ServingSize == "" {
			item.ServingSize = "1 serving"
		}
	} else {
		suffix = "_100g"
		item.ServingSize = "100 g"
	}
	item.Calories = nutrient(p.Nutriments, "energy-kcal"+suffix)
	item.ProteinG = nutrient(p.Nutriments, "proteins"+suffix)
	item.CarbsG = nutrient(p.Nutriments, "carbohydrates"+suffix)
	item.FatsG = nutrient(p.Nutriments, "fat"+suffix)
	return item
}

// firstBrand keeps the first of a comma-separated brand list.
func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func nutrient(n map[string]any, key string) float64 {
	v, ok := parseFloatAny(n[key])
	if !ok || v < 0 {
		return 0
	}
	return v
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
