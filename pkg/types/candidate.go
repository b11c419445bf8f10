// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the lookup-engine pipeline.
// Implements: prd001-providers (RemoteFoodCandidate, ProviderDescriptor);
//
//	prd002-execution (ExecutionRequest, ProviderResult, ExecutionReport);
//	prd004-trust (CandidateDecision).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

// RemoteFoodCandidate represents a single food record returned by one
// provider for one query. Nutrient fields are per 100 g and optional: a nil
// pointer means the provider did not report the value. Providers sanitize
// values at decode time, so a present value is always finite and
// non-negative.
type RemoteFoodCandidate struct {
	// Source identifies the originating catalog (e.g. "open_food_facts").
	Source string `json:"source" yaml:"source"`

	// SourceID is the record identifier within the source catalog.
	SourceID string `json:"source_id" yaml:"source_id"`

	// ProviderKey is the id of the provider whose record won the merge.
	// It is stamped by the merger, never by the originating provider.
	ProviderKey string `json:"provider_key,omitempty" yaml:"provider_key,omitempty"`

	// Barcode is the product barcode (EAN/UPC) as reported by the source.
	Barcode string `json:"barcode,omitempty" yaml:"barcode,omitempty"`

	// Name is the food or product name.
	Name string `json:"name" yaml:"name"`

	// Brand is the brand or manufacturer name.
	Brand string `json:"brand,omitempty" yaml:"brand,omitempty"`

	CaloriesKcalPer100g *float64 `json:"calories_kcal_per_100g,omitempty" yaml:"calories_kcal_per_100g,omitempty"`
	ProteinGPer100g     *float64 `json:"protein_g_per_100g,omitempty" yaml:"protein_g_per_100g,omitempty"`
	CarbsGPer100g       *float64 `json:"carbs_g_per_100g,omitempty" yaml:"carbs_g_per_100g,omitempty"`
	FatGPer100g         *float64 `json:"fat_g_per_100g,omitempty" yaml:"fat_g_per_100g,omitempty"`

	// ServingSize is free text describing one serving (e.g. "30 g").
	ServingSize string `json:"serving_size,omitempty" yaml:"serving_size,omitempty"`
}

// DecisionKey returns the "source:sourceId" string identifying this
// candidate's provenance origin. Merged candidate lists contain at most one
// entry per decision key.
func (c RemoteFoodCandidate) DecisionKey() string {
	return c.Source + ":" + c.SourceID
}

// CandidateDecision explains why a merged candidate was chosen: which
// provider's record won and which providers contributed records to the same
// identity bucket.
type CandidateDecision struct {
	SelectedProviderID      string   `json:"selected_provider_id" yaml:"selected_provider_id"`
	ContributingProviderIDs []string `json:"contributing_provider_ids" yaml:"contributing_provider_ids"`
	Reason                  string   `json:"reason" yaml:"reason"`
}
