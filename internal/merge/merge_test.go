// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"reflect"
	"testing"

	"github.com/mealworks/lookup-engine/pkg/types"
)

func f(v float64) *float64 { return &v }

func fullNutrients(c types.RemoteFoodCandidate) types.RemoteFoodCandidate {
	c.CaloriesKcalPer100g = f(100)
	c.ProteinGPer100g = f(5)
	c.CarbsGPer100g = f(10)
	c.FatGPer100g = f(3)
	return c
}

// --- Identity keys ---

func TestIdentityKeyRanks(t *testing.T) {
	tests := []struct {
		name     string
		cand     types.RemoteFoodCandidate
		wantRank int
		wantKey  string
	}{
		{
			"barcode outranks everything",
			types.RemoteFoodCandidate{Barcode: "00111", Name: "Oats", Brand: "Acme", ServingSize: "40 g"},
			0, "barcode:111",
		},
		{
			"name brand serving",
			types.RemoteFoodCandidate{Name: "Rolled Oats!", Brand: "Acme Co.", ServingSize: "40 G"},
			1, "nbs:rolled oats|acme co|40 g",
		},
		{
			"name plus brand only",
			types.RemoteFoodCandidate{Name: "Oats", Brand: "Acme"},
			2, "mix:oats|acme|",
		},
		{
			"name plus serving only",
			types.RemoteFoodCandidate{Name: "Oats", ServingSize: "40 g"},
			2, "mix:oats||40 g",
		},
		{
			"name alone",
			types.RemoteFoodCandidate{Name: "  Oats  "},
			3, "name:oats",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, key := IdentityKey(tt.cand)
			if rank != tt.wantRank || key != tt.wantKey {
				t.Errorf("IdentityKey() = (%d, %q), want (%d, %q)", rank, key, tt.wantRank, tt.wantKey)
			}
		})
	}
}

func TestIdentityKeyFuzzyForBlankName(t *testing.T) {
	c := types.RemoteFoodCandidate{Source: "usda_fdc", SourceID: "99", Brand: "Acme"}
	rank, key := IdentityKey(c)
	if rank != 4 {
		t.Fatalf("rank = %d, want 4", rank)
	}
	// Same fields map to the same bucket; a changed field maps elsewhere.
	_, again := IdentityKey(c)
	if key != again {
		t.Errorf("fuzzy key not stable: %q vs %q", key, again)
	}
	c.Brand = "Other"
	if _, other := IdentityKey(c); other == key {
		t.Errorf("distinct fields should bucket separately, both %q", key)
	}
}

func TestNormalizeBarcode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0021908501093", "21908501093"},
		{"21908501093", "21908501093"},
		{"4-002971-000009", "4002971000009"},
		{" 111 ", "111"},
		{"0000", "0"},
		{"no digits", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeBarcode(tt.in); got != tt.want {
			t.Errorf("NormalizeBarcode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Richness ---

func TestRichness(t *testing.T) {
	empty := types.RemoteFoodCandidate{Name: "x"}
	if got := Richness(empty); got != 0 {
		t.Errorf("empty richness = %d, want 0", got)
	}

	full := fullNutrients(types.RemoteFoodCandidate{
		Name: "x", Brand: "b", ServingSize: "30 g", Barcode: "111",
	})
	// 2 (calories) + 3 (macros) + brand + serving + barcode = 8.
	if got := Richness(full); got != 8 {
		t.Errorf("full richness = %d, want 8", got)
	}
}

// --- Merge ---

func TestMergeBarcodePrecedence(t *testing.T) {
	// Same barcode, wildly different names: must still collapse to one.
	a := types.RemoteFoodCandidate{Source: "open_food_facts", SourceID: "x1", Barcode: "111", Name: "Choco Bar"}
	b := types.RemoteFoodCandidate{Source: "usda_fdc", SourceID: "y2", Barcode: "0111", Name: "Chocolate Candy Bar", Brand: "Acme"}

	out := Merge([]ProviderItems{
		{ProviderID: "open_food_facts", Items: []types.RemoteFoodCandidate{a}},
		{ProviderID: "usda_fdc", Items: []types.RemoteFoodCandidate{b}},
	}, map[string]int{"open_food_facts": 10, "usda_fdc": 20})

	if len(out.Candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(out.Candidates))
	}
	// b is richer (brand present), so it wins despite lower priority.
	if out.Candidates[0].ProviderKey != "usda_fdc" {
		t.Errorf("ProviderKey = %q, want usda_fdc", out.Candidates[0].ProviderKey)
	}
	dec := out.Decisions[out.Candidates[0].DecisionKey()]
	if !reflect.DeepEqual(dec.ContributingProviderIDs, []string{"open_food_facts", "usda_fdc"}) {
		t.Errorf("contributors = %v", dec.ContributingProviderIDs)
	}
}

func TestMergeRichnessBeatsPriority(t *testing.T) {
	// Worked example: A (priority 10, richness 6) vs B (priority 20,
	// richness higher). The richer candidate wins even from the
	// lower-priority provider.
	poor := types.RemoteFoodCandidate{Source: "a", SourceID: "1", Barcode: "111", Name: "Bar"}
	rich := fullNutrients(types.RemoteFoodCandidate{Source: "b", SourceID: "2", Barcode: "111", Name: "Bar", Brand: "Acme"})

	out := Merge([]ProviderItems{
		{ProviderID: "A", Items: []types.RemoteFoodCandidate{poor}},
		{ProviderID: "B", Items: []types.RemoteFoodCandidate{rich}},
	}, map[string]int{"A": 10, "B": 20})

	if len(out.Candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(out.Candidates))
	}
	if out.Candidates[0].ProviderKey != "B" {
		t.Errorf("ProviderKey = %q, want B", out.Candidates[0].ProviderKey)
	}
	if out.Decisions["b:2"].Reason != "richer nutrition data" {
		t.Errorf("reason = %q", out.Decisions["b:2"].Reason)
	}
}

func TestMergePriorityBreaksRichnessTie(t *testing.T) {
	a := fullNutrients(types.RemoteFoodCandidate{Source: "s1", SourceID: "1", Barcode: "111", Name: "Bar"})
	b := fullNutrients(types.RemoteFoodCandidate{Source: "s2", SourceID: "2", Barcode: "111", Name: "Bar"})

	out := Merge([]ProviderItems{
		{ProviderID: "A", Items: []types.RemoteFoodCandidate{a}},
		{ProviderID: "B", Items: []types.RemoteFoodCandidate{b}},
	}, map[string]int{"A": 10, "B": 20})

	if len(out.Candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(out.Candidates))
	}
	if out.Candidates[0].ProviderKey != "A" {
		t.Errorf("ProviderKey = %q, want A (priority 10 beats 20)", out.Candidates[0].ProviderKey)
	}
}

func TestMergeHigherPriorityChallengerWins(t *testing.T) {
	// Incumbent inserted first from the lower-priority provider; the
	// higher-priority challenger must take over on an exact richness tie.
	a := fullNutrients(types.RemoteFoodCandidate{Source: "s1", SourceID: "1", Barcode: "111", Name: "Bar"})
	b := fullNutrients(types.RemoteFoodCandidate{Source: "s2", SourceID: "2", Barcode: "111", Name: "Bar"})

	out := Merge([]ProviderItems{
		{ProviderID: "B", Items: []types.RemoteFoodCandidate{b}},
		{ProviderID: "A", Items: []types.RemoteFoodCandidate{a}},
	}, map[string]int{"A": 10, "B": 20})

	if out.Candidates[0].ProviderKey != "A" {
		t.Errorf("ProviderKey = %q, want A", out.Candidates[0].ProviderKey)
	}
	if out.Decisions["s1:1"].Reason != "higher provider priority" {
		t.Errorf("reason = %q", out.Decisions["s1:1"].Reason)
	}
}

func TestMergeLexicalTieBreak(t *testing.T) {
	a := types.RemoteFoodCandidate{Source: "s", SourceID: "2", Barcode: "111", Name: "Bar"}
	b := types.RemoteFoodCandidate{Source: "s", SourceID: "1", Barcode: "111", Name: "Bar"}

	out := Merge([]ProviderItems{
		{ProviderID: "A", Items: []types.RemoteFoodCandidate{a, b}},
	}, map[string]int{"A": 10})

	if len(out.Candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(out.Candidates))
	}
	// "s:1" < "s:2", so the lexically lower decision key wins.
	if got := out.Candidates[0].SourceID; got != "1" {
		t.Errorf("winner SourceID = %q, want 1", got)
	}
}

func TestMergeDeterministic(t *testing.T) {
	lists := []ProviderItems{
		{ProviderID: "open_food_facts", Items: []types.RemoteFoodCandidate{
			{Source: "open_food_facts", SourceID: "a", Barcode: "123", Name: "Muesli", Brand: "Alpen"},
			{Source: "open_food_facts", SourceID: "b", Name: "Banana"},
		}},
		{ProviderID: "usda_fdc", Items: []types.RemoteFoodCandidate{
			fullNutrients(types.RemoteFoodCandidate{Source: "usda_fdc", SourceID: "c", Barcode: "123", Name: "Muesli Cereal"}),
			{Source: "usda_fdc", SourceID: "d", Name: "Banana", ServingSize: "1 piece"},
		}},
	}
	prio := map[string]int{"open_food_facts": 10, "usda_fdc": 20}

	first := Merge(lists, prio)
	second := Merge(lists, prio)

	if !reflect.DeepEqual(first, second) {
		t.Error("merging identical inputs twice must produce identical output")
	}
}

func TestMergeOrderIndependentWithinList(t *testing.T) {
	a := fullNutrients(types.RemoteFoodCandidate{Source: "s", SourceID: "1", Name: "Apple"})
	b := types.RemoteFoodCandidate{Source: "s", SourceID: "2", Name: "Banana"}
	c := types.RemoteFoodCandidate{Source: "s", SourceID: "3", Name: "Cherry", Brand: "Farm"}
	prio := map[string]int{"A": 10}

	forward := Merge([]ProviderItems{{ProviderID: "A", Items: []types.RemoteFoodCandidate{a, b, c}}}, prio)
	reversed := Merge([]ProviderItems{{ProviderID: "A", Items: []types.RemoteFoodCandidate{c, b, a}}}, prio)

	if !reflect.DeepEqual(forward.Candidates, reversed.Candidates) {
		t.Errorf("final ordering must not depend on input iteration order:\n%v\nvs\n%v",
			forward.Candidates, reversed.Candidates)
	}
}

func TestMergeFinalOrdering(t *testing.T) {
	barcode := types.RemoteFoodCandidate{Source: "s", SourceID: "z", Barcode: "999", Name: "Zed"}
	named := types.RemoteFoodCandidate{Source: "s", SourceID: "a", Name: "Apple"}

	out := Merge([]ProviderItems{
		{ProviderID: "A", Items: []types.RemoteFoodCandidate{named, barcode}},
	}, map[string]int{"A": 10})

	if len(out.Candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(out.Candidates))
	}
	// Rank 0 (barcode) sorts before rank 3 (name) regardless of insertion.
	if out.Candidates[0].SourceID != "z" || out.Candidates[1].SourceID != "a" {
		t.Errorf("order = [%s %s], want [z a]", out.Candidates[0].SourceID, out.Candidates[1].SourceID)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	out := Merge(nil, nil)
	if len(out.Candidates) != 0 || len(out.Decisions) != 0 {
		t.Errorf("merge of nothing = %+v, want empty", out)
	}
}

func TestSortItemsDeterministic(t *testing.T) {
	items := []types.RemoteFoodCandidate{
		{Source: "s", SourceID: "2", Name: "Banana"},
		{Source: "s", SourceID: "1", Barcode: "5", Name: "Apple"},
		{Source: "s", SourceID: "3", Name: "Apple"},
	}
	SortItems(items)

	// Barcode rank first, then name buckets sorted by identity then
	// decision key.
	if items[0].SourceID != "1" {
		t.Errorf("first item = %s, want barcode-keyed candidate", items[0].SourceID)
	}
	if items[1].Name != "Apple" || items[2].Name != "Banana" {
		t.Errorf("name order = [%s %s], want [Apple Banana]", items[1].Name, items[2].Name)
	}
}
