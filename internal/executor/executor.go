// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package executor fans a lookup request out to every applicable provider
// concurrently, bounds the whole operation with per-provider and global
// timeouts, and folds the usable results through the merger.
// Implements: prd002-execution (R1-R6); docs/ARCHITECTURE § Provider
// Executor.
package executor

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mealworks/lookup-engine/internal/cache"
	"github.com/mealworks/lookup-engine/internal/guard"
	"github.com/mealworks/lookup-engine/internal/merge"
	"github.com/mealworks/lookup-engine/internal/provider"
	"github.com/mealworks/lookup-engine/internal/registry"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// Default timeouts, used when configuration leaves them unset.
const (
	DefaultProviderTimeout = 6 * time.Second
	DefaultGlobalTimeout   = 10 * time.Second
)

// Executor runs lookup requests against a provider registry. The cache is
// optional; with a nil cache every request goes to the network.
type Executor struct {
	registry        *registry.Registry
	guard           *guard.Guard
	cache           *cache.Cache
	providerTimeout time.Duration
	globalTimeout   time.Duration
	log             *zap.SugaredLogger
}

// New builds an executor. Non-positive timeouts fall back to the defaults.
func New(reg *registry.Registry, g *guard.Guard, c *cache.Cache, cfg types.ExecutorConfig, log *zap.SugaredLogger) *Executor {
	pt := cfg.ProviderTimeout
	if pt <= 0 {
		pt = DefaultProviderTimeout
	}
	gt := cfg.GlobalTimeout
	if gt <= 0 {
		gt = DefaultGlobalTimeout
	}
	return &Executor{
		registry:        reg,
		guard:           g,
		cache:           c,
		providerTimeout: pt,
		globalTimeout:   gt,
		log:             log,
	}
}

type slot struct {
	idx int
	res types.ProviderResult
}

// Execute fans the request out to every provider the registry lists for its
// type. The returned report always carries one result per listed provider,
// in (priority, key) order, even for providers that never ran. Execute never
// returns an error for provider failures; those are encoded in the per-
// provider statuses.
func (e *Executor) Execute(ctx context.Context, req types.ExecutionRequest) types.ExecutionReport {
	start := time.Now()
	report := types.ExecutionReport{
		RequestType:  req.RequestType,
		SourceFilter: req.SourceFilter,
		Decisions:    map[string]types.CandidateDecision{},
	}

	entries := e.registry.ProvidersFor(req.RequestType, req.OnlineEnabled)
	results := make([]types.ProviderResult, len(entries))

	if req.SourceFilter == types.SourceFilterLocalOnly {
		for i, entry := range entries {
			results[i] = types.ProviderResult{
				ProviderID:  entry.Descriptor.Key,
				Capability:  req.RequestType,
				Status:      types.StatusDisabledBySourceFilter,
				Diagnostics: "source filter excludes online providers",
			}
		}
		report.ProviderResults = results
		report.OverallElapsedMs = time.Since(start).Milliseconds()
		return report
	}

	gctx, cancel := context.WithTimeout(ctx, e.globalTimeout)
	defer cancel()

	// Buffered to len(entries) so goroutines abandoned at the global
	// deadline can still complete their single send and exit.
	slots := make(chan slot, len(entries))
	for i, entry := range entries {
		go func(i int, entry registry.Entry) {
			slots <- slot{idx: i, res: e.runProvider(gctx, entry, req)}
		}(i, entry)
	}

	filled := make([]bool, len(entries))
	collectSlots(gctx.Done(), slots, results, filled)
	for i, entry := range entries {
		if filled[i] {
			continue
		}
		results[i] = types.ProviderResult{
			ProviderID:  entry.Descriptor.Key,
			Capability:  req.RequestType,
			Status:      types.StatusTimeout,
			ElapsedMs:   time.Since(start).Milliseconds(),
			Diagnostics: "global deadline reached before provider finished",
		}
	}

	var lists []merge.ProviderItems
	for _, res := range results {
		if res.Status.Usable() {
			lists = append(lists, merge.ProviderItems{ProviderID: res.ProviderID, Items: res.Items})
		}
	}
	priorities := map[string]int{}
	for _, entry := range entries {
		priorities[entry.Descriptor.Key] = entry.Descriptor.Priority
	}
	merged := merge.Merge(lists, priorities)

	report.MergedCandidates = merged.Candidates
	report.Decisions = merged.Decisions
	report.ProviderResults = results
	report.OverallElapsedMs = time.Since(start).Milliseconds()
	return report
}

// collectSlots gathers provider results until every slot is filled or done
// closes. When the deadline fires, results already sitting in the buffer
// are still recorded; that work finished in time, only the report was
// pending.
func collectSlots(done <-chan struct{}, slots <-chan slot, results []types.ProviderResult, filled []bool) {
	remaining := len(results)
	for remaining > 0 {
		select {
		case s := <-slots:
			results[s.idx] = s.res
			filled[s.idx] = true
			remaining--
		case <-done:
			for {
				select {
				case s := <-slots:
					results[s.idx] = s.res
					filled[s.idx] = true
				default:
					return
				}
			}
		}
	}
}

// runProvider produces the result for one provider: enablement and
// capability checks, guard validation, cache lookup, then the network call
// under the per-provider timeout.
func (e *Executor) runProvider(ctx context.Context, entry registry.Entry, req types.ExecutionRequest) types.ProviderResult {
	start := time.Now()
	d := entry.Descriptor
	res := types.ProviderResult{ProviderID: d.Key, Capability: req.RequestType}

	finish := func(status types.ProviderStatus, diagnostics string) types.ProviderResult {
		res.Status = status
		res.Diagnostics = diagnostics
		res.ElapsedMs = time.Since(start).Milliseconds()
		return res
	}

	switch {
	case d.MissingConfig:
		return finish(types.StatusMisconfigured, d.StatusReason)
	case !d.Enabled:
		return finish(types.StatusDisabledBySettings, d.StatusReason)
	case !d.Supports(req.RequestType):
		return finish(types.StatusUnsupportedCapability, "provider does not support "+string(req.RequestType))
	}

	if req.ActionToken == nil {
		return finish(types.StatusGuardRejected, "no action token attached to request")
	}
	if err := e.guard.Validate(*req.ActionToken); err != nil {
		return finish(types.StatusGuardRejected, err.Error())
	}

	key := cache.Key(d.Key, req.RequestType, req.Input())
	if e.cache != nil && req.RefreshPolicy != types.RefreshBypassCache {
		if items, ok := e.cache.Get(key); ok {
			res.Items = items
			if len(items) == 0 {
				return finish(types.StatusEmpty, "cached")
			}
			return finish(types.StatusAvailable, "cached")
		}
	}

	pctx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	items, err := e.callProvider(pctx, entry.Client, req)
	if err != nil {
		status, diag := statusForError(err)
		e.log.Debugw("provider call failed",
			"provider", d.Key, "status", status, "error", err)
		return finish(status, diag)
	}

	merge.SortItems(items)
	res.Items = items
	if e.cache != nil {
		e.cache.Put(key, d.Key, req.RequestType, req.Input(), items)
	}
	if len(items) == 0 {
		return finish(types.StatusEmpty, "")
	}
	return finish(types.StatusAvailable, "")
}

func (e *Executor) callProvider(ctx context.Context, client provider.Client, req types.ExecutionRequest) ([]types.RemoteFoodCandidate, error) {
	tok := *req.ActionToken
	if req.RequestType == types.RequestBarcodeLookup {
		item, err := client.LookupBarcode(ctx, req.Barcode, tok)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, nil
		}
		return []types.RemoteFoodCandidate{*item}, nil
	}
	return client.Search(ctx, req.Query, tok)
}

// statusForError maps a provider error onto the closed status taxonomy.
func statusForError(err error) (types.ProviderStatus, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return types.StatusTimeout, "provider call exceeded its deadline"
	case errors.Is(err, provider.ErrRateLimited):
		return types.StatusRateLimited, err.Error()
	case errors.Is(err, provider.ErrMisconfigured):
		return types.StatusMisconfigured, err.Error()
	}

	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		return types.StatusHTTPError, statusErr.Error()
	}
	var decodeErr *provider.DecodeError
	if errors.As(err, &decodeErr) {
		return types.StatusParsingError, decodeErr.Error()
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return types.StatusNetworkUnavailable, urlErr.Error()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return types.StatusNetworkUnavailable, netErr.Error()
	}

	return types.StatusError, err.Error()
}
