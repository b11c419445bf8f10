// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge deduplicates and merges per-provider candidate lists into a
// single ranked, provider-annotated list. The whole package is pure: merging
// the same inputs with the same priority map always produces byte-identical
// output, regardless of within-list iteration order.
// Implements: prd002-execution (R3.1-R3.6);
//
//	docs/ARCHITECTURE § Merge.
package merge

import (
	"sort"

	"github.com/mealworks/lookup-engine/pkg/types"
)

// ProviderItems pairs one provider's id with its candidate list. Callers
// pass lists in priority order (lowest priority value first); the merger
// relies on that for first-insertion semantics.
type ProviderItems struct {
	ProviderID string
	Items      []types.RemoteFoodCandidate
}

// Output holds the merged candidates and one decision per merged candidate,
// keyed by decision key ("source:sourceId").
type Output struct {
	Candidates []types.RemoteFoodCandidate
	Decisions  map[string]types.CandidateDecision
}

// unknownPriority sorts providers missing from the priority map last.
const unknownPriority = 1 << 30

type bucket struct {
	cand         types.RemoteFoodCandidate
	rank         int
	identity     string
	providerID   string
	contributors []string
	reason       string
}

// Merge groups candidates by identity key, selects one winner per group,
// and returns the groups in deterministic order. Selection within a group
// proceeds through tie-break stages: richness score, then provider
// priority (lower wins), then lexical comparison of decision key and
// provider id.
func Merge(lists []ProviderItems, priority map[string]int) Output {
	index := make(map[string]*bucket)
	var order []string

	for _, list := range lists {
		for _, cand := range list.Items {
			rank, identity := IdentityKey(cand)

			b, ok := index[identity]
			if !ok {
				index[identity] = &bucket{
					cand:         cand,
					rank:         rank,
					identity:     identity,
					providerID:   list.ProviderID,
					contributors: []string{list.ProviderID},
					reason:       "only candidate",
				}
				order = append(order, identity)
				continue
			}

			b.addContributor(list.ProviderID)
			b.challenge(cand, list.ProviderID, priority)
		}
	}

	buckets := make([]*bucket, 0, len(order))
	for _, identity := range order {
		b := index[identity]
		b.cand.ProviderKey = b.providerID
		buckets = append(buckets, b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.identity != b.identity {
			return a.identity < b.identity
		}
		ap, bp := priorityOf(priority, a.providerID), priorityOf(priority, b.providerID)
		if ap != bp {
			return ap < bp
		}
		if a.providerID != b.providerID {
			return a.providerID < b.providerID
		}
		return a.cand.DecisionKey() < b.cand.DecisionKey()
	})

	out := Output{Decisions: make(map[string]types.CandidateDecision, len(buckets))}
	for _, b := range buckets {
		key := b.cand.DecisionKey()
		// Two identity buckets can collapse onto one decision key when a
		// provider reports the same record under different identities; the
		// first (best-ordered) bucket wins.
		if _, dup := out.Decisions[key]; dup {
			continue
		}
		out.Candidates = append(out.Candidates, b.cand)
		out.Decisions[key] = types.CandidateDecision{
			SelectedProviderID:      b.providerID,
			ContributingProviderIDs: append([]string(nil), b.contributors...),
			Reason:                  b.reason,
		}
	}
	return out
}

// challenge compares the incoming candidate against the bucket's current
// winner and replaces it when the challenger wins a tie-break stage. Each
// stage applies only when every prior stage is an exact tie.
func (b *bucket) challenge(cand types.RemoteFoodCandidate, providerID string, priority map[string]int) {
	curRich, newRich := Richness(b.cand), Richness(cand)
	switch {
	case newRich > curRich:
		b.replace(cand, providerID, "richer nutrition data")
		return
	case newRich < curRich:
		return
	}

	curPrio, newPrio := priorityOf(priority, b.providerID), priorityOf(priority, providerID)
	switch {
	case newPrio < curPrio:
		b.replace(cand, providerID, "higher provider priority")
		return
	case newPrio > curPrio:
		return
	}

	curKey, newKey := b.cand.DecisionKey(), cand.DecisionKey()
	if newKey < curKey || (newKey == curKey && providerID < b.providerID) {
		b.replace(cand, providerID, "deterministic tie-break")
	}
}

func (b *bucket) replace(cand types.RemoteFoodCandidate, providerID, reason string) {
	b.cand = cand
	b.providerID = providerID
	b.reason = reason
}

func (b *bucket) addContributor(providerID string) {
	for _, id := range b.contributors {
		if id == providerID {
			return
		}
	}
	b.contributors = append(b.contributors, providerID)
}

func priorityOf(priority map[string]int, providerID string) int {
	if p, ok := priority[providerID]; ok {
		return p
	}
	return unknownPriority
}

// Richness scores how many nutrition and identity fields a candidate
// populates: calories count double, protein/carbs/fat/brand/serving/barcode
// one each. Higher is richer.
func Richness(c types.RemoteFoodCandidate) int {
	score := 0
	if c.CaloriesKcalPer100g != nil {
		score += 2
	}
	if c.ProteinGPer100g != nil {
		score++
	}
	if c.CarbsGPer100g != nil {
		score++
	}
	if c.FatGPer100g != nil {
		score++
	}
	if normalizeText(c.Brand) != "" {
		score++
	}
	if normalizeText(c.ServingSize) != "" {
		score++
	}
	if NormalizeBarcode(c.Barcode) != "" {
		score++
	}
	return score
}
