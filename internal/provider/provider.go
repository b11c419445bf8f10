// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider implements the remote food-catalog clients. Each client
// owns its own request/response schema translation into RemoteFoodCandidate
// per the Strategy pattern; the executor classifies the errors defined here
// into provider statuses.
// Implements: prd001-providers (R1-R4);
//
//	docs/ARCHITECTURE § Providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mealworks/lookup-engine/pkg/types"
)

// Client queries a single food catalog. Search returns zero or more
// candidates; LookupBarcode returns nil when the code is unknown to the
// catalog. Both may fail with transport or taxonomy errors which the
// executor converts to status codes; clients never panic.
type Client interface {
	Key() string
	Search(ctx context.Context, query string, tok types.ActionToken) ([]types.RemoteFoodCandidate, error)
	LookupBarcode(ctx context.Context, code string, tok types.ActionToken) (*types.RemoteFoodCandidate, error)
}

// ErrRateLimited marks a call rejected by the catalog's rate limiter after
// retries were exhausted.
var ErrRateLimited = errors.New("rate limited")

// ErrMisconfigured marks a provider that cannot be called for lack of
// credentials or configuration.
var ErrMisconfigured = errors.New("provider misconfigured")

// StatusError reports a non-200 HTTP response from a catalog.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.Code)
}

// DecodeError reports an unparseable catalog response.
type DecodeError struct {
	Provider string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Provider, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// sanitizeNutrient drops values a candidate must never carry: nil stays
// nil, and non-finite or negative values become absent.
func sanitizeNutrient(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return nil
	}
	return v
}

// sanitizeCandidate applies nutrient sanitization and trims identity text.
func sanitizeCandidate(c types.RemoteFoodCandidate) types.RemoteFoodCandidate {
	c.Name = strings.TrimSpace(c.Name)
	c.Brand = strings.TrimSpace(c.Brand)
	c.ServingSize = strings.TrimSpace(c.ServingSize)
	c.Barcode = strings.TrimSpace(c.Barcode)
	c.CaloriesKcalPer100g = sanitizeNutrient(c.CaloriesKcalPer100g)
	c.ProteinGPer100g = sanitizeNutrient(c.ProteinGPer100g)
	c.CarbsGPer100g = sanitizeNutrient(c.CarbsGPer100g)
	c.FatGPer100g = sanitizeNutrient(c.FatGPer100g)
	return c
}

// digitsOnly strips everything but ASCII digits from a barcode string.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
