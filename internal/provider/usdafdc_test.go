// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealworks/lookup-engine/pkg/types"
)

const sampleFDCSearchJSON = `{
  "totalHits": 2,
  "foods": [
    {
      "fdcId": 173904,
      "description": "Oats, raw",
      "brandOwner": "",
      "brandName": "",
      "gtinUpc": "",
      "servingSize": null,
      "servingSizeUnit": "",
      "foodNutrients": [
        {"nutrientId": 1008, "value": 379},
        {"nutrientId": 1003, "value": 13.2},
        {"nutrientId": 1005, "value": 67.7},
        {"nutrientId": 1004, "value": 6.5},
        {"nutrientId": 9999, "value": 42}
      ]
    },
    {
      "fdcId": 2112233,
      "description": "GRANOLA BAR",
      "brandOwner": "Acme Foods Inc.",
      "brandName": "Acme",
      "gtinUpc": "00021908501093",
      "servingSize": 40,
      "servingSizeUnit": "g",
      "foodNutrients": [
        {"nutrientId": 1008, "value": 450}
      ]
    }
  ]
}`

func fdcTestServer(t *testing.T, statusCode int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			t.Error("request is missing api_key")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write([]byte(body))
	}))
}

func TestUSDAFoodDataSearch(t *testing.T) {
	ts := fdcTestServer(t, http.StatusOK, sampleFDCSearchJSON)
	defer ts.Close()

	old := fdcSearchBase
	fdcSearchBase = ts.URL
	defer func() { fdcSearchBase = old }()

	p := &USDAFoodData{Client: ts.Client(), APIKey: "demo"}
	results, err := p.Search(context.Background(), "oats", types.ActionToken{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	r0 := results[0]
	if r0.Source != KeyUSDAFDC || r0.SourceID != "173904" {
		t.Errorf("Source/SourceID = %q/%q", r0.Source, r0.SourceID)
	}
	if r0.CaloriesKcalPer100g == nil || *r0.CaloriesKcalPer100g != 379 {
		t.Errorf("CaloriesKcalPer100g = %v, want 379", r0.CaloriesKcalPer100g)
	}
	if r0.ProteinGPer100g == nil || *r0.ProteinGPer100g != 13.2 {
		t.Errorf("ProteinGPer100g = %v, want 13.2", r0.ProteinGPer100g)
	}
	// No serving size fields → empty serving text.
	if r0.ServingSize != "" {
		t.Errorf("ServingSize = %q, want empty", r0.ServingSize)
	}

	r1 := results[1]
	// BrandName preferred over BrandOwner.
	if r1.Brand != "Acme" {
		t.Errorf("Brand = %q, want %q", r1.Brand, "Acme")
	}
	if r1.ServingSize != "40 g" {
		t.Errorf("ServingSize = %q, want %q", r1.ServingSize, "40 g")
	}
	if r1.Barcode != "00021908501093" {
		t.Errorf("Barcode = %q", r1.Barcode)
	}
}

func TestUSDAFoodDataSearchMissingKey(t *testing.T) {
	p := &USDAFoodData{Client: http.DefaultClient}
	_, err := p.Search(context.Background(), "oats", types.ActionToken{})
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("err = %v, want ErrMisconfigured", err)
	}
}

func TestUSDAFoodDataSearchRejectedKey(t *testing.T) {
	ts := fdcTestServer(t, http.StatusForbidden, `{}`)
	defer ts.Close()

	old := fdcSearchBase
	fdcSearchBase = ts.URL
	defer func() { fdcSearchBase = old }()

	p := &USDAFoodData{Client: ts.Client(), APIKey: "bogus"}
	_, err := p.Search(context.Background(), "oats", types.ActionToken{})
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("err = %v, want ErrMisconfigured on 403", err)
	}
}

func TestUSDAFoodDataLookupBarcode(t *testing.T) {
	ts := fdcTestServer(t, http.StatusOK, sampleFDCSearchJSON)
	defer ts.Close()

	old := fdcSearchBase
	fdcSearchBase = ts.URL
	defer func() { fdcSearchBase = old }()

	p := &USDAFoodData{Client: ts.Client(), APIKey: "demo"}

	// Punctuated input still matches the stored GTIN digit-for-digit.
	c, err := p.LookupBarcode(context.Background(), "00021-90850-1093", types.ActionToken{})
	if err != nil {
		t.Fatalf("LookupBarcode: %v", err)
	}
	if c == nil {
		t.Fatal("candidate = nil, want the granola bar")
	}
	if c.SourceID != "2112233" {
		t.Errorf("SourceID = %q, want 2112233", c.SourceID)
	}

	// A code matching nothing returns nil without error.
	c, err = p.LookupBarcode(context.Background(), "99999999", types.ActionToken{})
	if err != nil {
		t.Fatalf("LookupBarcode: %v", err)
	}
	if c != nil {
		t.Fatalf("candidate = %+v, want nil", c)
	}
}
