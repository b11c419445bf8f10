// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mealworks/lookup-engine/internal/httputil"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// Base endpoints for the Nutritionix track API. Declared as vars so tests
// can substitute an httptest server.
var (
	nixInstantBase = "https://trackapi.nutritionix.com/v2/search/instant"
	nixItemBase    = "https://trackapi.nutritionix.com/v2/search/item"
)

// KeyNutritionix is the provider id of the Nutritionix client.
const KeyNutritionix = "nutritionix"

// Nutritionix queries the Nutritionix track API. Both an application id and
// an application key are required.
type Nutritionix struct {
	Client    *http.Client
	AppID     string
	AppKey    string
	UserAgent string
}

// Key returns the provider identifier.
func (p *Nutritionix) Key() string { return KeyNutritionix }

// Search queries the instant-search endpoint. Branded results carry
// calories and a barcode; common results carry only name and serving text.
func (p *Nutritionix) Search(ctx context.Context, query string, _ types.ActionToken) ([]types.RemoteFoodCandidate, error) {
	params := url.Values{"query": {query}}
	body, err := p.get(ctx, nixInstantBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sr nixInstantResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, &DecodeError{Provider: "Nutritionix", Err: err}
	}

	var results []types.RemoteFoodCandidate
	for _, b := range sr.Branded {
		results = append(results, sanitizeCandidate(types.RemoteFoodCandidate{
			Source:              KeyNutritionix,
			SourceID:            b.NixItemID,
			Barcode:             b.UPC,
			Name:                b.FoodName,
			Brand:               b.BrandName,
			ServingSize:         servingText(b.ServingQty, b.ServingUnit),
			CaloriesKcalPer100g: b.NfCalories,
		}))
	}
	for _, c := range sr.Common {
		if c.TagID == "" {
			continue
		}
		results = append(results, sanitizeCandidate(types.RemoteFoodCandidate{
			Source:      KeyNutritionix,
			SourceID:    "common:" + c.TagID,
			Name:        c.FoodName,
			ServingSize: servingText(c.ServingQty, c.ServingUnit),
		}))
	}
	return results, nil
}

// LookupBarcode fetches a single branded item by UPC. Nutritionix answers
// 404 for unknown codes, which is not an error.
func (p *Nutritionix) LookupBarcode(ctx context.Context, code string, _ types.ActionToken) (*types.RemoteFoodCandidate, error) {
	params := url.Values{"upc": {digitsOnly(code)}}
	body, err := p.get(ctx, nixItemBase+"?"+params.Encode())
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	defer body.Close()

	var ir nixItemResponse
	if err := json.NewDecoder(body).Decode(&ir); err != nil {
		return nil, &DecodeError{Provider: "Nutritionix", Err: err}
	}
	if len(ir.Foods) == 0 {
		return nil, nil
	}

	f := ir.Foods[0]
	c := sanitizeCandidate(types.RemoteFoodCandidate{
		Source:              KeyNutritionix,
		SourceID:            f.NixItemID,
		Barcode:             f.UPC,
		Name:                f.FoodName,
		Brand:               f.BrandName,
		ServingSize:         servingText(f.ServingQty, f.ServingUnit),
		CaloriesKcalPer100g: f.NfCalories,
		ProteinGPer100g:     f.NfProtein,
		CarbsGPer100g:       f.NfTotalCarbohydrate,
		FatGPer100g:         f.NfTotalFat,
	})
	return &c, nil
}

func (p *Nutritionix) get(ctx context.Context, reqURL string) (io.ReadCloser, error) {
	if p.AppID == "" || p.AppKey == "" {
		return nil, fmt.Errorf("%w: missing Nutritionix app id or key", ErrMisconfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("x-app-id", p.AppID)
	req.Header.Set("x-app-key", p.AppKey)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Nutritionix request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: Nutritionix", ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: Nutritionix rejected the credentials", ErrMisconfigured)
	case resp.StatusCode != http.StatusOK:
		code := resp.StatusCode
		resp.Body.Close()
		return nil, &StatusError{Provider: "Nutritionix", Code: code}
	}
	return resp.Body, nil
}

func servingText(qty *float64, unit string) string {
	if qty == nil || unit == "" {
		return ""
	}
	return fmt.Sprintf("%g %s", *qty, unit)
}

// Nutritionix API JSON structures.
type nixInstantResponse struct {
	Branded []nixFood   `json:"branded"`
	Common  []nixCommon `json:"common"`
}

type nixItemResponse struct {
	Foods []nixFood `json:"foods"`
}

type nixFood struct {
	NixItemID           string   `json:"nix_item_id"`
	FoodName            string   `json:"food_name"`
	BrandName           string   `json:"brand_name"`
	UPC                 string   `json:"upc"`
	ServingQty          *float64 `json:"serving_qty"`
	ServingUnit         string   `json:"serving_unit"`
	NfCalories          *float64 `json:"nf_calories"`
	NfProtein           *float64 `json:"nf_protein"`
	NfTotalCarbohydrate *float64 `json:"nf_total_carbohydrate"`
	NfTotalFat          *float64 `json:"nf_total_fat"`
}

type nixCommon struct {
	FoodName    string   `json:"food_name"`
	TagID       string   `json:"tag_id"`
	ServingQty  *float64 `json:"serving_qty"`
	ServingUnit string   `json:"serving_unit"`
}
