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

const sampleNixInstantJSON = `{
  "branded": [
    {
      "nix_item_id": "51db37b7176fe9790a8989b4",
      "food_name": "Greek Yogurt, Plain",
      "brand_name": "Fage",
      "upc": "689544081323",
      "serving_qty": 170,
      "serving_unit": "g",
      "nf_calories": 97
    }
  ],
  "common": [
    {
      "food_name": "greek yogurt",
      "tag_id": "3714",
      "serving_qty": 1,
      "serving_unit": "cup"
    },
    {
      "food_name": "untagged thing",
      "tag_id": ""
    }
  ]
}`

const sampleNixItemJSON = `{
  "foods": [
    {
      "nix_item_id": "51db37b7176fe9790a8989b4",
      "food_name": "Greek Yogurt, Plain",
      "brand_name": "Fage",
      "upc": "689544081323",
      "serving_qty": 170,
      "serving_unit": "g",
      "nf_calories": 97,
      "nf_protein": 18,
      "nf_total_carbohydrate": 6,
      "nf_total_fat": 0.7
    }
  ]
}`

func nixTestServer(t *testing.T, statusCode int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-app-id") == "" || r.Header.Get("x-app-key") == "" {
			t.Error("request is missing credential headers")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write([]byte(body))
	}))
}

func TestNutritionixSearch(t *testing.T) {
	ts := nixTestServer(t, http.StatusOK, sampleNixInstantJSON)
	defer ts.Close()

	old := nixInstantBase
	nixInstantBase = ts.URL
	defer func() { nixInstantBase = old }()

	p := &Nutritionix{Client: ts.Client(), AppID: "id", AppKey: "key"}
	results, err := p.Search(context.Background(), "greek yogurt", types.ActionToken{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// One branded plus one tagged common; the untagged common is dropped.
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	branded := results[0]
	if branded.SourceID != "51db37b7176fe9790a8989b4" {
		t.Errorf("SourceID = %q", branded.SourceID)
	}
	if branded.Barcode != "689544081323" {
		t.Errorf("Barcode = %q", branded.Barcode)
	}
	if branded.ServingSize != "170 g" {
		t.Errorf("ServingSize = %q, want %q", branded.ServingSize, "170 g")
	}
	if branded.CaloriesKcalPer100g == nil || *branded.CaloriesKcalPer100g != 97 {
		t.Errorf("CaloriesKcalPer100g = %v, want 97", branded.CaloriesKcalPer100g)
	}

	common := results[1]
	if common.SourceID != "common:3714" {
		t.Errorf("common SourceID = %q, want tag-derived id", common.SourceID)
	}
	if common.ServingSize != "1 cup" {
		t.Errorf("common ServingSize = %q", common.ServingSize)
	}
	if common.CaloriesKcalPer100g != nil {
		t.Errorf("common candidates carry no nutrients, got %v", *common.CaloriesKcalPer100g)
	}
}

func TestNutritionixSearchMissingCredentials(t *testing.T) {
	p := &Nutritionix{Client: http.DefaultClient}
	_, err := p.Search(context.Background(), "yogurt", types.ActionToken{})
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("err = %v, want ErrMisconfigured", err)
	}
}

func TestNutritionixSearchRejectedCredentials(t *testing.T) {
	ts := nixTestServer(t, http.StatusUnauthorized, `{}`)
	defer ts.Close()

	old := nixInstantBase
	nixInstantBase = ts.URL
	defer func() { nixInstantBase = old }()

	p := &Nutritionix{Client: ts.Client(), AppID: "id", AppKey: "bogus"}
	_, err := p.Search(context.Background(), "yogurt", types.ActionToken{})
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("err = %v, want ErrMisconfigured on 401", err)
	}
}

func TestNutritionixLookupBarcode(t *testing.T) {
	ts := nixTestServer(t, http.StatusOK, sampleNixItemJSON)
	defer ts.Close()

	old := nixItemBase
	nixItemBase = ts.URL
	defer func() { nixItemBase = old }()

	p := &Nutritionix{Client: ts.Client(), AppID: "id", AppKey: "key"}
	c, err := p.LookupBarcode(context.Background(), "689544081323", types.ActionToken{})
	if err != nil {
		t.Fatalf("LookupBarcode: %v", err)
	}
	if c == nil {
		t.Fatal("candidate = nil, want the yogurt")
	}
	if c.ProteinGPer100g == nil || *c.ProteinGPer100g != 18 {
		t.Errorf("ProteinGPer100g = %v, want 18", c.ProteinGPer100g)
	}
	if c.FatGPer100g == nil || *c.FatGPer100g != 0.7 {
		t.Errorf("FatGPer100g = %v, want 0.7", c.FatGPer100g)
	}
}

func TestNutritionixLookupBarcodeNotFound(t *testing.T) {
	ts := nixTestServer(t, http.StatusNotFound, `{"message": "resource not found"}`)
	defer ts.Close()

	old := nixItemBase
	nixItemBase = ts.URL
	defer func() { nixItemBase = old }()

	p := &Nutritionix{Client: ts.Client(), AppID: "id", AppKey: "key"}
	c, err := p.LookupBarcode(context.Background(), "000000000000", types.ActionToken{})
	if err != nil {
		t.Fatalf("LookupBarcode: %v", err)
	}
	if c != nil {
		t.Fatalf("candidate = %+v, want nil for unknown UPC", c)
	}
}
