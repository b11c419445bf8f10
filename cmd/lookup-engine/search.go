// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealworks/lookup-engine/internal/lookup"
	"github.com/mealworks/lookup-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search online nutrition catalogs for foods",
	Long: `Search queries every enabled provider for foods matching a free-text
query. Results are merged into one deduplicated list annotated with
provenance, nutrition completeness, and serving-size review flags.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.close()

	req, err := requestFromFlags(cmd, eng)
	if err != nil {
		return err
	}
	req.Query = query

	result, err := eng.orchestrator.Search(context.Background(), req)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := lookup.WriteResultFile(save, req, result); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved results to", save)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(result, jsonOutput)
}

// requestFromFlags builds the execution request shared by search and
// barcode: source filter, refresh policy, and a fresh guard token for this
// invocation.
func requestFromFlags(cmd *cobra.Command, eng *engine) (types.ExecutionRequest, error) {
	localOnly, _ := cmd.Flags().GetBool("local-only")
	onlineOnly, _ := cmd.Flags().GetBool("online-only")
	if localOnly && onlineOnly {
		return types.ExecutionRequest{}, fmt.Errorf("--local-only and --online-only are mutually exclusive")
	}

	filter := types.SourceFilterAll
	if localOnly {
		filter = types.SourceFilterLocalOnly
	}
	if onlineOnly {
		filter = types.SourceFilterOnlineOnly
	}

	policy := types.RefreshCacheFirst
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		policy = types.RefreshBypassCache
	}

	tok := eng.orchestrator.Token(cmd.Name())
	return types.ExecutionRequest{
		SourceFilter:  filter,
		ActionToken:   &tok,
		OnlineEnabled: eng.cfg.OnlineLookupEnabled,
		RefreshPolicy: policy,
	}, nil
}

func formatSearchOutput(result lookup.OnlineSearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Candidates) == 0 {
		fmt.Println("No results found.")
	} else {
		fmt.Fprintf(os.Stdout, "%-40s  %-20s  %-8s  %-12s  %-10s  %s\n",
			"Name", "Brand", "Kcal", "Source", "Data", "Serving")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

		for _, c := range result.Candidates {
			name := c.Food.Name
			if len(name) > 40 {
				name = name[:37] + "..."
			}
			brand := c.Food.Brand
			if len(brand) > 20 {
				brand = brand[:17] + "..."
			}
			kcal := "-"
			if c.Food.CaloriesKcalPer100g != nil {
				kcal = fmt.Sprintf("%.0f", *c.Food.CaloriesKcalPer100g)
			}
			serving := c.Food.ServingSize
			if c.Trust.ServingReview == "needs_review" {
				serving = strings.TrimSpace(serving + " (review)")
			}
			fmt.Fprintf(os.Stdout, "%-40s  %-20s  %-8s  %-12s  %-10s  %s\n",
				name, brand, kcal, c.Trust.ProvenanceLabel, c.Trust.Completeness, serving)
		}
	}

	fmt.Fprintf(os.Stdout, "\n%d candidates; providers: %d ok, %d failed, %d skipped (%d ms)\n",
		len(result.Candidates),
		result.Summary.Succeeded, result.Summary.Failed, result.Summary.Skipped,
		result.ElapsedMs)

	for _, run := range result.ProviderRuns {
		if run.Status == lookup.RunOK || run.Status == lookup.RunEmpty {
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s: %s", run.ProviderID, run.Status)
		if run.Message != "" {
			fmt.Fprintf(os.Stdout, " (%s)", run.Message)
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

func init() {
	searchCmd.Flags().String("query", "", "free-text food query")
	searchCmd.Flags().Bool("local-only", false, "skip all online providers")
	searchCmd.Flags().Bool("online-only", false, "query online providers only")
	searchCmd.Flags().Bool("refresh", false, "bypass the result cache")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}
