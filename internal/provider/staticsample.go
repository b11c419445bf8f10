// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/mealworks/lookup-engine/pkg/types"
)

//go:embed sample_foods.yaml
var sampleFoodsYAML []byte

// KeyStaticSample is the provider id of the static sample client.
const KeyStaticSample = "static_sample"

// StaticSample serves a fixed, embedded dataset for debug builds. It makes
// no network calls, so pipeline behavior can be exercised offline.
type StaticSample struct {
	items []types.RemoteFoodCandidate
}

// NewStaticSample loads the embedded dataset.
func NewStaticSample() (*StaticSample, error) {
	var raw []types.RemoteFoodCandidate
	if err := yaml.Unmarshal(sampleFoodsYAML, &raw); err != nil {
		return nil, fmt.Errorf("parsing sample dataset: %w", err)
	}

	items := make([]types.RemoteFoodCandidate, 0, len(raw))
	for _, c := range raw {
		c.Source = KeyStaticSample
		items = append(items, sanitizeCandidate(c))
	}
	return &StaticSample{items: items}, nil
}

// Key returns the provider identifier.
func (p *StaticSample) Key() string { return KeyStaticSample }

// Search matches the query as a case-insensitive substring of name or brand.
func (p *StaticSample) Search(ctx context.Context, query string, _ types.ActionToken) ([]types.RemoteFoodCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var results []types.RemoteFoodCandidate
	for _, c := range p.items {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Brand), q) {
			results = append(results, c)
		}
	}
	return results, nil
}

// LookupBarcode matches the code digit-for-digit against the dataset.
func (p *StaticSample) LookupBarcode(ctx context.Context, code string, _ types.ActionToken) (*types.RemoteFoodCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want := digitsOnly(code)
	if want == "" {
		return nil, nil
	}
	for _, c := range p.items {
		if digitsOnly(c.Barcode) == want {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}
