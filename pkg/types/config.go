// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by provider clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lookup-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderSettings holds the configuration for a single provider.
type ProviderSettings struct {
	// Enabled controls whether the provider participates at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Priority orders providers; lower values are preferred during merge.
	Priority int `json:"priority" yaml:"priority"`
}

// ProvidersConfig groups per-provider settings.
type ProvidersConfig struct {
	OpenFoodFacts ProviderSettings `json:"open_food_facts" yaml:"open_food_facts"`
	USDAFDC       ProviderSettings `json:"usda_fdc" yaml:"usda_fdc"`
	Nutritionix   ProviderSettings `json:"nutritionix" yaml:"nutritionix"`
	StaticSample  ProviderSettings `json:"static_sample" yaml:"static_sample"`
}

// ExecutorConfig holds the fan-out timeout settings.
type ExecutorConfig struct {
	// ProviderTimeout bounds each individual provider call (default 6s).
	ProviderTimeout time.Duration `json:"provider_timeout" yaml:"provider_timeout"`

	// GlobalTimeout is the hard ceiling on the whole fan-out (default 10s).
	GlobalTimeout time.Duration `json:"global_timeout" yaml:"global_timeout"`
}

// CacheConfig holds settings for the result cache.
type CacheConfig struct {
	// Path is the SQLite database file for cached results.
	Path string `json:"path" yaml:"path"`

	// TTL is how long a cached provider result stays valid (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// GuardConfig holds settings for the network action guard.
type GuardConfig struct {
	// Validity is the action-token freshness window (default 60s).
	Validity time.Duration `json:"validity" yaml:"validity"`
}

// LookupConfig groups all engine configuration.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// OnlineLookupEnabled mirrors the user's settings toggle; when false
	// every provider is returned disabled rather than omitted.
	OnlineLookupEnabled bool `json:"online_lookup_enabled" yaml:"online_lookup_enabled"`

	// Debug enables debug-only providers and verbose logging.
	Debug bool `json:"debug" yaml:"debug"`

	Providers ProvidersConfig `json:"providers" yaml:"providers"`
	Executor  ExecutorConfig  `json:"executor" yaml:"executor"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Guard     GuardConfig     `json:"guard" yaml:"guard"`
}
