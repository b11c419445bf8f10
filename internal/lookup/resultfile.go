// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mealworks/lookup-engine/pkg/types"
)

// ResultFile is the on-disk representation of a search and its outcome. A
// saved run can be re-rendered later without touching the network.
type ResultFile struct {
	Request      RequestParams `yaml:"request"`
	Candidates   []Candidate   `yaml:"candidates"`
	ProviderRuns []ProviderRun `yaml:"provider_runs"`
	Summary      Summary       `yaml:"summary"`
	Timestamp    time.Time     `yaml:"timestamp"`
}

// RequestParams stores the request in a serializable form.
type RequestParams struct {
	RequestType  string `yaml:"request_type"`
	Query        string `yaml:"query,omitempty"`
	Barcode      string `yaml:"barcode,omitempty"`
	SourceFilter string `yaml:"source_filter,omitempty"`
}

// WriteResultFile saves a search request and its result to a YAML file.
func WriteResultFile(path string, req types.ExecutionRequest, result OnlineSearchResult) error {
	rf := ResultFile{
		Request: RequestParams{
			RequestType:  string(req.RequestType),
			Query:        req.Query,
			Barcode:      req.Barcode,
			SourceFilter: string(req.SourceFilter),
		},
		Candidates:   result.Candidates,
		ProviderRuns: result.ProviderRuns,
		Summary:      result.Summary,
		Timestamp:    time.Now(),
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
