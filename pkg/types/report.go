// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProviderStatus is the terminal outcome of one provider within one
// execution. The set is closed; every provider run maps to exactly one
// status and no provider failure ever surfaces as an error.
type ProviderStatus string

const (
	StatusAvailable              ProviderStatus = "available"
	StatusEmpty                  ProviderStatus = "empty"
	StatusDisabledBySettings     ProviderStatus = "disabled_by_settings"
	StatusDisabledBySourceFilter ProviderStatus = "disabled_by_source_filter"
	StatusUnsupportedCapability  ProviderStatus = "unsupported_capability"
	StatusMisconfigured          ProviderStatus = "misconfigured"
	StatusGuardRejected          ProviderStatus = "guard_rejected"
	StatusTimeout                ProviderStatus = "timeout"
	StatusNetworkUnavailable     ProviderStatus = "network_unavailable"
	StatusHTTPError              ProviderStatus = "http_error"
	StatusParsingError           ProviderStatus = "parsing_error"
	StatusRateLimited            ProviderStatus = "rate_limited"
	StatusError                  ProviderStatus = "error"
)

// Usable reports whether the status contributes candidates to the merge.
func (s ProviderStatus) Usable() bool {
	return s == StatusAvailable || s == StatusEmpty
}

// ProviderResult is the outcome of one provider for one request. One result
// is always produced per applicable provider, even on failure.
type ProviderResult struct {
	ProviderID  string                `json:"provider_id" yaml:"provider_id"`
	Capability  RequestType           `json:"capability" yaml:"capability"`
	Status      ProviderStatus        `json:"status" yaml:"status"`
	Items       []RemoteFoodCandidate `json:"items,omitempty" yaml:"items,omitempty"`
	ElapsedMs   int64                 `json:"elapsed_ms" yaml:"elapsed_ms"`
	Diagnostics string                `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// ExecutionReport is the executor's complete output for one request.
// ProviderResults is ordered by (priority, key), independent of completion
// order. MergedCandidates contains no two entries with the same decision
// key.
type ExecutionReport struct {
	RequestType      RequestType                  `json:"request_type" yaml:"request_type"`
	SourceFilter     SourceFilter                 `json:"source_filter" yaml:"source_filter"`
	MergedCandidates []RemoteFoodCandidate        `json:"merged_candidates" yaml:"merged_candidates"`
	Decisions        map[string]CandidateDecision `json:"decisions" yaml:"decisions"`
	ProviderResults  []ProviderResult             `json:"provider_results" yaml:"provider_results"`
	OverallElapsedMs int64                        `json:"overall_elapsed_ms" yaml:"overall_elapsed_ms"`
}

// FirstCandidate returns the top merged candidate, or nil if the report has
// none. Barcode-lookup callers consume exactly this.
func (r ExecutionReport) FirstCandidate() *RemoteFoodCandidate {
	if len(r.MergedCandidates) == 0 {
		return nil
	}
	return &r.MergedCandidates[0]
}
