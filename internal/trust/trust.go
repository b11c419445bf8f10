// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trust classifies merged candidates for display: where a record
// came from, how complete its nutrition data is, and whether its serving
// size needs user review. The whole package is pure.
// Implements: prd004-trust (R1-R3).
package trust

import (
	"strings"
	"unicode"

	"github.com/mealworks/lookup-engine/pkg/types"
)

// Completeness grades how many of the four core nutrients a candidate
// reports.
type Completeness string

const (
	CompletenessComplete Completeness = "complete"
	CompletenessPartial  Completeness = "partial"
	CompletenessLimited  Completeness = "limited"
)

// ServingReview flags serving-size text the user should verify before
// logging against it.
type ServingReview string

const (
	ServingOK          ServingReview = "ok"
	ServingNeedsReview ServingReview = "needs_review"
)

// Signals annotates one merged candidate, keyed by its decision key.
type Signals struct {
	DecisionKey     string        `json:"decision_key" yaml:"decision_key"`
	ProvenanceLabel string        `json:"provenance_label" yaml:"provenance_label"`
	Completeness    Completeness  `json:"completeness" yaml:"completeness"`
	ServingReview   ServingReview `json:"serving_review" yaml:"serving_review"`
}

// provenanceLabels maps known provider keys and sources to the short
// labels shown to end users.
var provenanceLabels = map[string]string{
	"open_food_facts": "OFF",
	"usda_fdc":        "USDA",
	"nutritionix":     "Nutritionix",
	"static_sample":   "Sample",
}

// servingUnits is the fixed vocabulary of recognized serving-size unit
// tokens.
var servingUnits = map[string]bool{
	"g": true, "kg": true, "mg": true, "ml": true, "l": true,
	"oz": true, "lb": true,
	"cup": true, "cups": true, "tbsp": true, "tsp": true,
	"serving": true, "servings": true,
	"piece": true, "pieces": true,
	"can": true, "cans": true,
	"bottle": true, "bottles": true,
	"bar": true, "bars": true,
	"biscuit": true, "biscuits": true,
	"packet": true, "packets": true,
}

// Derive computes the trust signals for one candidate.
func Derive(c types.RemoteFoodCandidate) Signals {
	return Signals{
		DecisionKey:     c.DecisionKey(),
		ProvenanceLabel: provenanceLabel(c),
		Completeness:    completeness(c),
		ServingReview:   servingReview(c.ServingSize),
	}
}

// DeriveAll computes signals for a merged candidate list, in list order.
func DeriveAll(candidates []types.RemoteFoodCandidate) []Signals {
	out := make([]Signals, len(candidates))
	for i, c := range candidates {
		out[i] = Derive(c)
	}
	return out
}

// provenanceLabel resolves the display label: known provider key first,
// then known source, then the raw source string, then "Online".
func provenanceLabel(c types.RemoteFoodCandidate) string {
	if label, ok := provenanceLabels[c.ProviderKey]; ok {
		return label
	}
	if label, ok := provenanceLabels[c.Source]; ok {
		return label
	}
	if c.Source != "" {
		return c.Source
	}
	return "Online"
}

func completeness(c types.RemoteFoodCandidate) Completeness {
	count := 0
	for _, v := range []*float64{c.CaloriesKcalPer100g, c.ProteinGPer100g, c.CarbsGPer100g, c.FatGPer100g} {
		if v != nil {
			count++
		}
	}
	switch {
	case count == 4:
		return CompletenessComplete
	case count >= 2:
		return CompletenessPartial
	default:
		return CompletenessLimited
	}
}

// servingReview flags serving text that is blank, uncertain ("?" or the
// word "unknown"), lacks a quantity digit, or lacks a recognized unit.
func servingReview(serving string) ServingReview {
	s := strings.ToLower(strings.TrimSpace(serving))
	if s == "" || strings.Contains(s, "?") || strings.Contains(s, "unknown") {
		return ServingNeedsReview
	}

	hasDigit := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return ServingNeedsReview
	}

	for _, token := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if servingUnits[token] {
			return ServingOK
		}
	}
	return ServingNeedsReview
}
