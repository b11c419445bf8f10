// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"github.com/mealworks/lookup-engine/pkg/types"
)

// Identity ranks, lowest wins when grouping. A candidate is keyed by the
// highest-precedence rule its fields satisfy; two candidates group only
// when their keys are equal.
const (
	rankBarcode        = 0
	rankNameBrandServe = 1
	rankNamePartial    = 2
	rankNameOnly       = 3
	rankFuzzy          = 4
)

// IdentityKey computes the dedupe grouping key for a candidate and the rank
// of the rule that produced it. Barcode identity outranks any name-based
// identity; the fuzzy fallback only applies when the name is blank.
func IdentityKey(c types.RemoteFoodCandidate) (int, string) {
	if barcode := NormalizeBarcode(c.Barcode); barcode != "" {
		return rankBarcode, "barcode:" + barcode
	}

	name := normalizeText(c.Name)
	brand := normalizeText(c.Brand)
	serving := normalizeText(c.ServingSize)

	switch {
	case name != "" && brand != "" && serving != "":
		return rankNameBrandServe, "nbs:" + name + "|" + brand + "|" + serving
	case name != "" && (brand != "" || serving != ""):
		return rankNamePartial, "mix:" + name + "|" + brand + "|" + serving
	case name != "":
		return rankNameOnly, "name:" + name
	}
	return rankFuzzy, "fuzzy:" + fuzzyKey(c)
}

// fuzzyKey buckets nameless candidates by a hash over every available
// field. The exact value is an implementation detail, not a stable
// contract; only equality within one merge matters.
func fuzzyKey(c types.RemoteFoodCandidate) string {
	h := fnv.New32a()
	for _, part := range []string{
		normalizeText(c.Source),
		normalizeText(c.SourceID),
		NormalizeBarcode(c.Barcode),
		normalizeText(c.Brand),
		normalizeText(c.ServingSize),
		nutrientFingerprint(c),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%08x", h.Sum32())
}

func nutrientFingerprint(c types.RemoteFoodCandidate) string {
	var b strings.Builder
	for _, v := range []*float64{c.CaloriesKcalPer100g, c.ProteinGPer100g, c.CarbsGPer100g, c.FatGPer100g} {
		if v == nil {
			b.WriteString("-;")
			continue
		}
		fmt.Fprintf(&b, "%g;", *v)
	}
	return b.String()
}

// normalizeText returns a lowercased, punctuation-stripped version of a
// free-text field with whitespace collapsed.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeBarcode reduces a barcode to its digits and strips leading
// zeros, grouping UPC-A codes with their zero-padded EAN-13 renderings.
// Returns "" when the input carries no digits.
func NormalizeBarcode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" && b.Len() > 0 {
		// All-zero codes still group together.
		return "0"
	}
	return digits
}

// SortItems orders a provider's own result list by (identity key, decision
// key) so repeated calls with identical inputs produce byte-identical
// ordering. The executor applies this before attaching items to a result.
func SortItems(items []types.RemoteFoodCandidate) {
	type keyed struct {
		cand     types.RemoteFoodCandidate
		rank     int
		identity string
		decision string
	}
	keys := make([]keyed, len(items))
	for i, c := range items {
		rank, identity := IdentityKey(c)
		keys[i] = keyed{cand: c, rank: rank, identity: identity, decision: c.DecisionKey()}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.identity != b.identity {
			return a.identity < b.identity
		}
		return a.decision < b.decision
	})
	for i := range keys {
		items[i] = keys[i].cand
	}
}
