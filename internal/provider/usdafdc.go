// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mealworks/lookup-engine/internal/httputil"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// fdcSearchBase is the USDA FoodData Central search endpoint. Declared as a
// var so tests can substitute an httptest server.
var fdcSearchBase = "https://api.nal.usda.gov/fdc/v1/foods/search"

// KeyUSDAFDC is the provider id of the FoodData Central client.
const KeyUSDAFDC = "usda_fdc"

// FDC nutrient numbers for the per-100g values reported by search results.
const (
	fdcNutrientEnergyKcal = 1008
	fdcNutrientProtein    = 1003
	fdcNutrientFat        = 1004
	fdcNutrientCarbs      = 1005
)

// USDAFoodData queries the USDA FoodData Central catalog. An API key is
// required.
type USDAFoodData struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	// PageSize limits search results per request (default 25).
	PageSize int
}

// Key returns the provider identifier.
func (p *USDAFoodData) Key() string { return KeyUSDAFDC }

// Search queries the foods/search endpoint.
func (p *USDAFoodData) Search(ctx context.Context, query string, _ types.ActionToken) ([]types.RemoteFoodCandidate, error) {
	foods, err := p.search(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []types.RemoteFoodCandidate
	for _, f := range foods {
		results = append(results, f.candidate())
	}
	return results, nil
}

// LookupBarcode searches by GTIN/UPC and returns the first food whose
// barcode matches the requested code digit-for-digit, or nil.
func (p *USDAFoodData) LookupBarcode(ctx context.Context, code string, _ types.ActionToken) (*types.RemoteFoodCandidate, error) {
	foods, err := p.search(ctx, code)
	if err != nil {
		return nil, err
	}

	want := digitsOnly(code)
	for _, f := range foods {
		if f.GtinUpc != "" && digitsOnly(f.GtinUpc) == want {
			c := f.candidate()
			return &c, nil
		}
	}
	return nil, nil
}

func (p *USDAFoodData) search(ctx context.Context, query string) ([]fdcFood, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("%w: missing FoodData Central API key", ErrMisconfigured)
	}

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	params := url.Values{
		"api_key":  {p.APIKey},
		"query":    {query},
		"pageSize": {strconv.Itoa(pageSize)},
	}
	reqURL := fdcSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("FoodData Central request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: FoodData Central", ErrRateLimited)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: FoodData Central rejected the API key", ErrMisconfigured)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Provider: "FoodData Central", Code: resp.StatusCode}
	}

	var sr fdcSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &DecodeError{Provider: "FoodData Central", Err: err}
	}
	return sr.Foods, nil
}

// FoodData Central API JSON structures.
type fdcSearchResponse struct {
	TotalHits int       `json:"totalHits"`
	Foods     []fdcFood `json:"foods"`
}

type fdcFood struct {
	FdcID           int           `json:"fdcId"`
	Description     string        `json:"description"`
	BrandOwner      string        `json:"brandOwner"`
	BrandName       string        `json:"brandName"`
	GtinUpc         string        `json:"gtinUpc"`
	ServingSize     *float64      `json:"servingSize"`
	ServingSizeUnit string        `json:"servingSizeUnit"`
	FoodNutrients   []fdcNutrient `json:"foodNutrients"`
}

type fdcNutrient struct {
	NutrientID int      `json:"nutrientId"`
	Value      *float64 `json:"value"`
}

func (f fdcFood) candidate() types.RemoteFoodCandidate {
	brand := f.BrandName
	if brand == "" {
		brand = f.BrandOwner
	}

	serving := ""
	if f.ServingSize != nil && f.ServingSizeUnit != "" {
		serving = fmt.Sprintf("%g %s", *f.ServingSize, f.ServingSizeUnit)
	}

	c := types.RemoteFoodCandidate{
		Source:      KeyUSDAFDC,
		SourceID:    strconv.Itoa(f.FdcID),
		Barcode:     f.GtinUpc,
		Name:        f.Description,
		Brand:       brand,
		ServingSize: serving,
	}

	for _, n := range f.FoodNutrients {
		switch n.NutrientID {
		case fdcNutrientEnergyKcal:
			c.CaloriesKcalPer100g = n.Value
		case fdcNutrientProtein:
			c.ProteinGPer100g = n.Value
		case fdcNutrientCarbs:
			c.CarbsGPer100g = n.Value
		case fdcNutrientFat:
			c.FatGPer100g = n.Value
		}
	}
	return sanitizeCandidate(c)
}
