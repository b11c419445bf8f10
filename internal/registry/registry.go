// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry assembles the configured provider set into descriptors
// plus clients and answers "which providers serve this request" queries.
// Implements: prd001-providers (R1-R4); docs/ARCHITECTURE § Provider
// Registry.
package registry

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/mealworks/lookup-engine/internal/provider"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// Credential names looked up in the secrets directory.
const (
	CredUSDAAPIKey       = "usda-fdc-api-key"
	CredNutritionixAppID = "nutritionix-app-id"
	CredNutritionixKey   = "nutritionix-api-key"
)

// Default merge priorities, used when configuration leaves them at zero.
// Lower wins.
const (
	defaultPriorityOpenFoodFacts = 10
	defaultPriorityUSDAFDC       = 20
	defaultPriorityNutritionix   = 30
	defaultPriorityStaticSample  = 90
)

// Entry pairs a provider descriptor with its client.
type Entry struct {
	Descriptor types.ProviderDescriptor
	Client     provider.Client
}

// Registry holds the assembled provider set for one engine instance.
type Registry struct {
	entries []Entry
}

// New builds the registry from configuration and the loaded credentials.
// Providers whose credentials are absent stay listed with MissingConfig set
// so the executor can report them rather than silently dropping them. The
// static sample provider is always listed but only enabled in debug mode;
// outside debug it stays visible with a reason.
func New(cfg types.LookupConfig, creds map[string]string, httpClient *http.Client) (*Registry, error) {
	var entries []Entry

	entries = append(entries, Entry{
		Descriptor: types.ProviderDescriptor{
			Key:                provider.KeyOpenFoodFacts,
			DisplayName:        "Open Food Facts",
			Priority:           priorityOr(cfg.Providers.OpenFoodFacts.Priority, defaultPriorityOpenFoodFacts),
			SupportsTextSearch: true,
			SupportsBarcode:    true,
			Enabled:            cfg.Providers.OpenFoodFacts.Enabled,
			StatusReason:       disabledReason(cfg.Providers.OpenFoodFacts.Enabled),
		},
		Client: &provider.OpenFoodFacts{Client: httpClient, UserAgent: cfg.UserAgent},
	})

	usdaKey := creds[CredUSDAAPIKey]
	usda := types.ProviderDescriptor{
		Key:                provider.KeyUSDAFDC,
		DisplayName:        "USDA FoodData Central",
		Priority:           priorityOr(cfg.Providers.USDAFDC.Priority, defaultPriorityUSDAFDC),
		SupportsTextSearch: true,
		SupportsBarcode:    true,
		Enabled:            cfg.Providers.USDAFDC.Enabled,
		StatusReason:       disabledReason(cfg.Providers.USDAFDC.Enabled),
	}
	if usda.Enabled && usdaKey == "" {
		usda.MissingConfig = true
		usda.StatusReason = fmt.Sprintf("missing credential %s", CredUSDAAPIKey)
	}
	entries = append(entries, Entry{
		Descriptor: usda,
		Client:     &provider.USDAFoodData{Client: httpClient, APIKey: usdaKey, UserAgent: cfg.UserAgent},
	})

	nixID, nixKey := creds[CredNutritionixAppID], creds[CredNutritionixKey]
	nix := types.ProviderDescriptor{
		Key:                provider.KeyNutritionix,
		DisplayName:        "Nutritionix",
		Priority:           priorityOr(cfg.Providers.Nutritionix.Priority, defaultPriorityNutritionix),
		SupportsTextSearch: true,
		SupportsBarcode:    true,
		Enabled:            cfg.Providers.Nutritionix.Enabled,
		StatusReason:       disabledReason(cfg.Providers.Nutritionix.Enabled),
	}
	if nix.Enabled && (nixID == "" || nixKey == "") {
		nix.MissingConfig = true
		nix.StatusReason = fmt.Sprintf("missing credential %s or %s", CredNutritionixAppID, CredNutritionixKey)
	}
	entries = append(entries, Entry{
		Descriptor: nix,
		Client:     &provider.Nutritionix{Client: httpClient, AppID: nixID, AppKey: nixKey, UserAgent: cfg.UserAgent},
	})

	sample, err := provider.NewStaticSample()
	if err != nil {
		return nil, fmt.Errorf("loading static sample provider: %w", err)
	}
	st := types.ProviderDescriptor{
		Key:                provider.KeyStaticSample,
		DisplayName:        "Static Sample",
		Priority:           priorityOr(cfg.Providers.StaticSample.Priority, defaultPriorityStaticSample),
		SupportsTextSearch: true,
		SupportsBarcode:    true,
		Enabled:            cfg.Providers.StaticSample.Enabled,
		StatusReason:       disabledReason(cfg.Providers.StaticSample.Enabled),
	}
	if !cfg.Debug {
		st.Enabled = false
		st.StatusReason = "debug builds only"
	}
	entries = append(entries, Entry{Descriptor: st, Client: sample})

	sortEntries(entries)
	return &Registry{entries: entries}, nil
}

// NewStatic builds a registry directly from entries. For tests and embedders
// that assemble their own provider set.
func NewStatic(entries ...Entry) *Registry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)
	return &Registry{entries: sorted}
}

// ProvidersFor returns the entries that can serve the given request type,
// ordered by (priority, key). Providers lacking the capability are omitted
// entirely. When onlineEnabled is false every entry comes back disabled
// with a reason, so callers can still report the full provider set.
func (r *Registry) ProvidersFor(rt types.RequestType, onlineEnabled bool) []Entry {
	var out []Entry
	for _, e := range r.entries {
		if !e.Descriptor.Supports(rt) {
			continue
		}
		if !onlineEnabled {
			d := e.Descriptor
			d.Enabled = false
			d.MissingConfig = false
			d.StatusReason = "online lookup disabled in settings"
			e.Descriptor = d
		}
		out = append(out, e)
	}
	return out
}

// Descriptors returns every registered descriptor in (priority, key) order.
func (r *Registry) Descriptors() []types.ProviderDescriptor {
	out := make([]types.ProviderDescriptor, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Descriptor
	}
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Descriptor, entries[j].Descriptor
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Key < b.Key
	})
}

func priorityOr(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

func disabledReason(enabled bool) string {
	if enabled {
		return ""
	}
	return "disabled in settings"
}
