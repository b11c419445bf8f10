// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProviderDescriptor is the static metadata for one provider within a
// registry snapshot. Descriptors are configuration-derived and immutable;
// the registry is rebuilt, never mutated, when configuration changes.
type ProviderDescriptor struct {
	// Key is the stable provider id (e.g. "usda_fdc").
	Key string `json:"key" yaml:"key"`

	// DisplayName is the human-readable provider name.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Priority orders providers; lower values are preferred.
	Priority int `json:"priority" yaml:"priority"`

	SupportsTextSearch bool `json:"supports_text_search" yaml:"supports_text_search"`
	SupportsBarcode    bool `json:"supports_barcode" yaml:"supports_barcode"`

	// Enabled reports whether the provider may be called. Disabled
	// providers stay visible in diagnostics with StatusReason explaining
	// why; callers short-circuit them instead of the registry hiding them.
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	StatusReason string `json:"status_reason,omitempty" yaml:"status_reason,omitempty"`

	// MissingConfig marks a provider disabled for lack of credentials, so
	// the executor reports it as misconfigured rather than merely disabled.
	MissingConfig bool `json:"missing_config,omitempty" yaml:"missing_config,omitempty"`
}

// Supports reports whether the descriptor declares the capability the
// request type needs.
func (d ProviderDescriptor) Supports(rt RequestType) bool {
	switch rt {
	case RequestTextSearch:
		return d.SupportsTextSearch
	case RequestBarcodeLookup:
		return d.SupportsBarcode
	default:
		return false
	}
}
