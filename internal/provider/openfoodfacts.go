// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mealworks/lookup-engine/internal/httputil"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// Base endpoints for the Open Food Facts API. Declared as vars so tests can
// substitute an httptest server.
var (
	offSearchBase  = "https://world.openfoodfacts.org/cgi/search.pl"
	offProductBase = "https://world.openfoodfacts.org/api/v2/product"
)

// KeyOpenFoodFacts is the provider id of the Open Food Facts client.
const KeyOpenFoodFacts = "open_food_facts"

// OpenFoodFacts queries the Open Food Facts catalog. The API needs no
// credentials.
type OpenFoodFacts struct {
	Client    *http.Client
	UserAgent string
	// PageSize limits search results per request (default 25).
	PageSize int
}

// Key returns the provider identifier.
func (p *OpenFoodFacts) Key() string { return KeyOpenFoodFacts }

// Search queries the legacy search endpoint and translates products into
// candidates.
func (p *OpenFoodFacts) Search(ctx context.Context, query string, _ types.ActionToken) ([]types.RemoteFoodCandidate, error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	params := url.Values{
		"search_terms":  {query},
		"search_simple": {"1"},
		"action":        {"process"},
		"json":          {"1"},
		"page_size":     {fmt.Sprintf("%d", pageSize)},
	}
	reqURL := offSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Open Food Facts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: Open Food Facts", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "Open Food Facts", Code: resp.StatusCode}
	}

	var sr offSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &DecodeError{Provider: "Open Food Facts", Err: err}
	}

	var results []types.RemoteFoodCandidate
	for _, prod := range sr.Products {
		c, ok := prod.candidate()
		if !ok {
			continue
		}
		results = append(results, c)
	}
	return results, nil
}

// LookupBarcode fetches a single product by barcode. An unknown code is not
// an error; it returns nil.
func (p *OpenFoodFacts) LookupBarcode(ctx context.Context, code string, _ types.ActionToken) (*types.RemoteFoodCandidate, error) {
	reqURL := offProductBase + "/" + url.PathEscape(strings.TrimSpace(code)) + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Open Food Facts request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: Open Food Facts", ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Provider: "Open Food Facts", Code: resp.StatusCode}
	}

	var pr offProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, &DecodeError{Provider: "Open Food Facts", Err: err}
	}
	// status 0 means the barcode is not in the catalog.
	if pr.Status == 0 {
		return nil, nil
	}
	c, ok := pr.Product.candidate()
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Open Food Facts API JSON structures.
type offSearchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

type offProductResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code        string        `json:"code"`
	ProductName string        `json:"product_name"`
	Brands      string        `json:"brands"`
	ServingSize string        `json:"serving_size"`
	Nutriments  offNutriments `json:"nutriments"`
}

type offNutriments struct {
	EnergyKcal100g *float64 `json:"energy-kcal_100g"`
	Proteins100g   *float64 `json:"proteins_100g"`
	Carbs100g      *float64 `json:"carbohydrates_100g"`
	Fat100g        *float64 `json:"fat_100g"`
}

// candidate translates a product record. Products with neither a name nor a
// code carry no usable identity and are dropped.
func (prod offProduct) candidate() (types.RemoteFoodCandidate, bool) {
	if strings.TrimSpace(prod.ProductName) == "" && strings.TrimSpace(prod.Code) == "" {
		return types.RemoteFoodCandidate{}, false
	}

	sourceID := prod.Code
	if sourceID == "" {
		sourceID = prod.ProductName
	}

	// Brands is a comma-separated list; keep the first.
	brand := prod.Brands
	if idx := strings.Index(brand, ","); idx >= 0 {
		brand = brand[:idx]
	}

	c := types.RemoteFoodCandidate{
		Source:              KeyOpenFoodFacts,
		SourceID:            sourceID,
		Barcode:             prod.Code,
		Name:                prod.ProductName,
		Brand:               brand,
		ServingSize:         prod.ServingSize,
		CaloriesKcalPer100g: prod.Nutriments.EnergyKcal100g,
		ProteinGPer100g:     prod.Nutriments.Proteins100g,
		CarbsGPer100g:       prod.Nutriments.Carbs100g,
		FatGPer100g:         prod.Nutriments.Fat100g,
	}
	return sanitizeCandidate(c), true
}
