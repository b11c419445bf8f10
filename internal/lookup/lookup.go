// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup is the top-level orchestrator: it issues guard tokens,
// drives the executor, folds trust signals onto the merged candidates, and
// summarizes per-provider runs for display.
// Implements: prd006-orchestrator (R1-R5); docs/ARCHITECTURE § Search
// Orchestrator.
package lookup

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mealworks/lookup-engine/internal/executor"
	"github.com/mealworks/lookup-engine/internal/guard"
	"github.com/mealworks/lookup-engine/internal/registry"
	"github.com/mealworks/lookup-engine/internal/trust"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// ErrEmptyInput rejects requests with no query or barcode before anything
// runs.
var ErrEmptyInput = errors.New("lookup: empty query or barcode")

// RunStatus condenses the executor's provider statuses into the handful of
// outcomes the UI distinguishes.
type RunStatus string

const (
	RunOK                   RunStatus = "ok"
	RunEmpty                RunStatus = "empty"
	RunFailed               RunStatus = "failed"
	RunSkippedDisabled      RunStatus = "skipped_disabled"
	RunSkippedMissingConfig RunStatus = "skipped_missing_config"
	RunSkippedFiltered      RunStatus = "skipped_filtered"
)

// ProviderRun summarizes one provider's part in a lookup.
type ProviderRun struct {
	ProviderID     string    `json:"provider_id" yaml:"provider_id"`
	Status         RunStatus `json:"status" yaml:"status"`
	Message        string    `json:"message,omitempty" yaml:"message,omitempty"`
	DurationMs     int64     `json:"duration_ms" yaml:"duration_ms"`
	CandidateCount int       `json:"candidate_count" yaml:"candidate_count"`
}

// Summary counts run outcomes across all providers.
type Summary struct {
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
	Skipped   int `json:"skipped" yaml:"skipped"`
}

// Candidate is one merged result annotated for display.
type Candidate struct {
	Food     types.RemoteFoodCandidate `json:"food" yaml:"food"`
	Trust    trust.Signals             `json:"trust" yaml:"trust"`
	Decision types.CandidateDecision   `json:"decision" yaml:"decision"`
}

// OnlineSearchResult is the orchestrator's complete answer to one search.
type OnlineSearchResult struct {
	Candidates   []Candidate   `json:"candidates" yaml:"candidates"`
	ProviderRuns []ProviderRun `json:"provider_runs" yaml:"provider_runs"`
	Summary      Summary       `json:"summary" yaml:"summary"`
	ElapsedMs    int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Orchestrator wires the guard, registry and executor into the engine's
// public operations.
type Orchestrator struct {
	registry *registry.Registry
	executor *executor.Executor
	guard    *guard.Guard
	log      *zap.SugaredLogger
}

// New assembles an orchestrator from already-built components.
func New(reg *registry.Registry, exec *executor.Executor, g *guard.Guard, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{registry: reg, executor: exec, guard: g, log: log}
}

// Token issues a fresh guard token for the named user action. Callers attach
// it to the request they are about to run.
func (o *Orchestrator) Token(action string) types.ActionToken {
	return o.guard.Issue(action)
}

// Search runs a text search across every applicable provider. It returns a
// usable result even when every provider failed; the only error is an empty
// query.
func (o *Orchestrator) Search(ctx context.Context, req types.ExecutionRequest) (OnlineSearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return OnlineSearchResult{}, ErrEmptyInput
	}
	req.RequestType = types.RequestTextSearch

	report := o.executor.Execute(ctx, req)
	result := o.assemble(report)
	o.log.Infow("search finished",
		"query", req.Query,
		"candidates", len(result.Candidates),
		"succeeded", result.Summary.Succeeded,
		"failed", result.Summary.Failed,
		"skipped", result.Summary.Skipped,
		"elapsed_ms", result.ElapsedMs)
	return result, nil
}

// LookupBarcode runs a barcode lookup and returns the full execution
// report; callers usually consume just the first merged candidate.
func (o *Orchestrator) LookupBarcode(ctx context.Context, req types.ExecutionRequest) (types.ExecutionReport, error) {
	if strings.TrimSpace(req.Barcode) == "" {
		return types.ExecutionReport{}, ErrEmptyInput
	}
	req.RequestType = types.RequestBarcodeLookup

	report := o.executor.Execute(ctx, req)
	o.log.Infow("barcode lookup finished",
		"barcode", req.Barcode,
		"candidates", len(report.MergedCandidates),
		"elapsed_ms", report.OverallElapsedMs)
	return report, nil
}

// ProviderDiagnostics reports every registered provider's descriptor for
// the settings screen.
func (o *Orchestrator) ProviderDiagnostics() []types.ProviderDescriptor {
	return o.registry.Descriptors()
}

// assemble converts an execution report into the display-oriented result.
func (o *Orchestrator) assemble(report types.ExecutionReport) OnlineSearchResult {
	result := OnlineSearchResult{ElapsedMs: report.OverallElapsedMs}

	for _, c := range report.MergedCandidates {
		result.Candidates = append(result.Candidates, Candidate{
			Food:     c,
			Trust:    trust.Derive(c),
			Decision: report.Decisions[c.DecisionKey()],
		})
	}

	for _, pr := range report.ProviderResults {
		run := ProviderRun{
			ProviderID:     pr.ProviderID,
			Status:         runStatus(pr),
			Message:        pr.Diagnostics,
			DurationMs:     pr.ElapsedMs,
			CandidateCount: len(pr.Items),
		}
		result.ProviderRuns = append(result.ProviderRuns, run)
		switch run.Status {
		case RunOK, RunEmpty:
			result.Summary.Succeeded++
		case RunFailed:
			result.Summary.Failed++
		default:
			result.Summary.Skipped++
		}
	}
	return result
}

// runStatus maps the executor's closed status taxonomy onto run outcomes.
// A provider disabled because its credentials are missing counts as
// skipped_missing_config, not skipped_disabled.
func runStatus(pr types.ProviderResult) RunStatus {
	switch pr.Status {
	case types.StatusAvailable:
		return RunOK
	case types.StatusEmpty:
		return RunEmpty
	case types.StatusDisabledBySourceFilter:
		return RunSkippedFiltered
	case types.StatusMisconfigured:
		return RunSkippedMissingConfig
	case types.StatusDisabledBySettings:
		if strings.Contains(strings.ToLower(pr.Diagnostics), "missing") {
			return RunSkippedMissingConfig
		}
		return RunSkippedDisabled
	default:
		return RunFailed
	}
}
