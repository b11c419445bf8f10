// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RequestType selects the provider capability a request exercises.
type RequestType string

const (
	RequestTextSearch    RequestType = "text_search"
	RequestBarcodeLookup RequestType = "barcode_lookup"
)

// SourceFilter restricts which data sources a request may touch.
type SourceFilter string

const (
	SourceFilterAll        SourceFilter = "all"
	SourceFilterLocalOnly  SourceFilter = "local_only"
	SourceFilterOnlineOnly SourceFilter = "online_only"
)

// RefreshPolicy controls whether cached provider results may satisfy a
// request.
type RefreshPolicy string

const (
	// RefreshCacheFirst serves unexpired cached results before going to the
	// network. The zero value of RefreshPolicy behaves the same.
	RefreshCacheFirst RefreshPolicy = "cache_first"

	// RefreshBypassCache always calls the provider; the fresh result still
	// replaces the cached entry.
	RefreshBypassCache RefreshPolicy = "bypass_cache"
)

// ActionToken is short-lived proof that a network call followed an explicit
// user action. Tokens are issued and validated by the guard; providers
// receive them but never inspect them.
type ActionToken struct {
	// Action names the user action that triggered the request.
	Action string `json:"action"`

	// ID is a unique nonce for the token.
	ID string `json:"id"`

	// IssuedAt is the issue timestamp used for freshness checks.
	IssuedAt time.Time `json:"issued_at"`
}

// ExecutionRequest describes one logical lookup fanned out to every
// applicable provider. Exactly one of Query or Barcode is meaningful,
// matching RequestType.
type ExecutionRequest struct {
	RequestType  RequestType
	SourceFilter SourceFilter

	// Query is the free-text search term for RequestTextSearch.
	Query string

	// Barcode is the decoded barcode string for RequestBarcodeLookup.
	Barcode string

	// ActionToken gates network access; a nil or stale token rejects every
	// provider call.
	ActionToken *ActionToken

	// OnlineEnabled mirrors the live onlineLookupEnabled setting.
	OnlineEnabled bool

	RefreshPolicy RefreshPolicy
}

// Input returns the request's logical input string: the query for text
// search, the barcode for barcode lookup.
func (r ExecutionRequest) Input() string {
	if r.RequestType == RequestBarcodeLookup {
		return r.Barcode
	}
	return r.Query
}
